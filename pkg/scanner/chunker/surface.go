package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kittclouds/poschunk/pkg/scanner/bracket"
)

// RE2 has no balancing groups, so a chunk reference cannot be matched against
// raw bracket text. Instead every top-level chunk is projected onto a single
// private-use rune naming it. A rune is atomic for the regexp engine: a match
// either covers a whole chunk or none of it, and chunks nested inside another
// chunk are not visible at all.

const (
	symbolFirst = 0xE000 // Private Use Area
	symbolLast  = 0xF8FF

	// symbolUnknown stands for chunks no rule of the cascade mentions.
	symbolUnknown = symbolFirst
)

// symbolTable binds chunk names to placeholder runes. It is built once per
// cascade and only read afterwards.
//
// Every known name gets an exact rune. Each case-folded key gets one more
// rune, used for text chunks whose name matches a known name only up to
// case; only case-insensitive references match those.
type symbolTable struct {
	exact  map[string]rune
	folded map[string]rune
	byKey  map[string][]rune
}

func newSymbolTable(names []string) (*symbolTable, error) {
	t := &symbolTable{
		exact:  make(map[string]rune, len(names)),
		folded: make(map[string]rune),
		byKey:  make(map[string][]rune),
	}

	next := rune(symbolUnknown + 1)
	alloc := func() (rune, error) {
		if next > symbolLast {
			return 0, fmt.Errorf("%w: too many distinct chunk names (%d)", ErrInvalidArgument, len(names))
		}
		r := next
		next++
		return r, nil
	}

	var keys []string
	for _, name := range names {
		if _, ok := t.exact[name]; ok {
			continue
		}
		r, err := alloc()
		if err != nil {
			return nil, err
		}
		t.exact[name] = r

		key := foldKey(name)
		if _, ok := t.byKey[key]; !ok {
			keys = append(keys, key)
		}
		t.byKey[key] = append(t.byKey[key], r)
	}
	for _, key := range keys {
		r, err := alloc()
		if err != nil {
			return nil, err
		}
		t.folded[key] = r
	}
	return t, nil
}

func foldKey(name string) string {
	return strings.ToLower(name)
}

// lookup returns the rune a chunk named name projects to.
func (t *symbolTable) lookup(name string) rune {
	if r, ok := t.exact[name]; ok {
		return r
	}
	if r, ok := t.folded[foldKey(name)]; ok {
		return r
	}
	return symbolUnknown
}

// symbol returns the exact rune of a reference.
func (t *symbolTable) symbol(name string) rune {
	if r, ok := t.exact[name]; ok {
		return r
	}
	return symbolUnknown
}

// foldSymbols returns every rune a case-insensitive reference to name matches.
func (t *symbolTable) foldSymbols(name string) []rune {
	key := foldKey(name)
	runes := append([]rune(nil), t.byKey[key]...)
	if r, ok := t.folded[key]; ok {
		runes = append(runes, r)
	}
	if len(runes) == 0 {
		runes = append(runes, symbolUnknown)
	}
	return runes
}

func isSymbol(r rune) bool {
	return r > symbolUnknown && r <= symbolLast
}

// surface is text with its top-level chunks projected onto symbols.
type surface struct {
	text string
	// origAt maps a byte offset of the surface to the original text.
	// nil when the surface is the text itself.
	origAt []int
}

// project builds the surface of text. A chunk glued to a token ("a/DT[NP")
// is separated by a virtual space that maps onto the chunk's edge, so token
// matchers still see the end of the token.
func project(text string, syms *symbolTable) surface {
	var chunks []bracket.Element
	for _, el := range bracket.Scan(text) {
		if el.Kind == bracket.ChunkElement {
			chunks = append(chunks, el)
		}
	}
	if len(chunks) == 0 {
		return surface{text: text}
	}

	var sb strings.Builder
	sb.Grow(len(text) + 2*len(chunks))
	origAt := make([]int, 0, len(text)+2*len(chunks)+1)

	prev := 0
	for _, ch := range chunks {
		for i := prev; i < ch.Span.Start; i++ {
			origAt = append(origAt, i)
		}
		sb.WriteString(text[prev:ch.Span.Start])

		if ch.Span.Start > prev {
			if before, _ := utf8.DecodeLastRuneInString(text[:ch.Span.Start]); bracket.IsTokenRune(before) {
				sb.WriteByte(' ')
				origAt = append(origAt, ch.Span.Start)
			}
		}

		sym := syms.lookup(ch.Name.Slice(text))
		sb.WriteRune(sym)
		origAt = append(origAt, ch.Span.Start)
		for i := 1; i < utf8.RuneLen(sym); i++ {
			// Interior bytes of a rune are never match boundaries.
			origAt = append(origAt, ch.Span.End)
		}

		if ch.Span.End < len(text) {
			if after, _ := utf8.DecodeRuneInString(text[ch.Span.End:]); bracket.IsTokenRune(after) {
				sb.WriteByte(' ')
				origAt = append(origAt, ch.Span.End)
			}
		}
		prev = ch.Span.End
	}
	for i := prev; i < len(text); i++ {
		origAt = append(origAt, i)
	}
	sb.WriteString(text[prev:])
	origAt = append(origAt, len(text))

	return surface{text: sb.String(), origAt: origAt}
}

func (s surface) original(off int) int {
	if s.origAt == nil {
		return off
	}
	return s.origAt[off]
}
