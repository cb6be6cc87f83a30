// Package bracket scans chunk-annotated text ("[NP the/DT dog/NN] ran/VBD")
// with explicit depth tracking, so nested chunks are always skipped as a whole.
// It is shared by the chunk applicator and the tree parser.
package bracket

import (
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// Range
// ============================================================================

// Range is a byte span [Start, End) in the scanned text.
type Range struct {
	Start int
	End   int
}

// Len returns the length of the range
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range is empty
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Slice extracts the text covered by this range
func (r Range) Slice(text string) string {
	if r.Start < 0 || r.End > len(text) || r.Start > r.End {
		return ""
	}
	return text[r.Start:r.End]
}

// ============================================================================
// Elements
// ============================================================================

// Kind distinguishes the two element shapes found at one nesting level.
type Kind int

const (
	ChunkElement Kind = iota
	TokenElement
)

// String returns a readable name
func (k Kind) String() string {
	switch k {
	case ChunkElement:
		return "chunk"
	case TokenElement:
		return "token"
	default:
		return "unknown"
	}
}

// Element is one top-level item: a whole chunk or a bare word/tag token.
type Element struct {
	Kind Kind
	Span Range // full element text

	// Chunk fields
	Name  Range
	Inner Range // content between the name and the closing bracket

	// Token fields
	Word Range
	Tag  Range
}

// ============================================================================
// Scanning
// ============================================================================

// Scan returns the elements of text at the outermost level, left to right.
// Nested chunks are consumed as part of their parent; characters that form
// neither a chunk nor a token (stray brackets, slashes) are skipped.
func Scan(text string) []Element {
	var elements []Element
	n := len(text)
	i := 0

	for i < n {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		if r == '[' {
			if el, ok := MatchChunk(text, i); ok {
				elements = append(elements, el)
				i = el.Span.End
				continue
			}
			i++
			continue
		}

		if el, ok := matchToken(text, i); ok {
			elements = append(elements, el)
			i = el.Span.End
			continue
		}

		// Skip the rest of this run
		i = skipRun(text, i)
	}

	return elements
}

// MatchChunk reads a complete "[NAME ...]" span starting at pos. The name is a
// run of word characters followed by whitespace or the closing bracket; the
// content is scanned with a depth counter so inner chunks never end the span.
func MatchChunk(text string, pos int) (Element, bool) {
	n := len(text)
	if pos < 0 || pos >= n || text[pos] != '[' {
		return Element{}, false
	}

	// Chunk name
	k := pos + 1
	for k < n {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !IsNameRune(r) {
			break
		}
		k += size
	}
	if k == pos+1 || k >= n {
		return Element{}, false
	}
	name := Range{Start: pos + 1, End: k}

	// Separator: at least one space, or an immediately closed chunk
	innerStart := k
	for innerStart < n {
		r, size := utf8.DecodeRuneInString(text[innerStart:])
		if !unicode.IsSpace(r) {
			break
		}
		innerStart += size
	}
	if innerStart == k && text[k] != ']' {
		return Element{}, false
	}

	depth := 1
	for j := innerStart; j < n; j++ {
		switch text[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return Element{
					Kind:  ChunkElement,
					Span:  Range{Start: pos, End: j + 1},
					Name:  name,
					Inner: Range{Start: innerStart, End: j},
				}, true
			}
		}
	}

	// Unbalanced
	return Element{}, false
}

// matchToken reads "word/tag" at pos. Both halves must be non-empty runs of
// token characters.
func matchToken(text string, pos int) (Element, bool) {
	wordEnd := scanTokenRun(text, pos)
	if wordEnd == pos || wordEnd >= len(text) || text[wordEnd] != '/' {
		return Element{}, false
	}

	tagStart := wordEnd + 1
	tagEnd := scanTokenRun(text, tagStart)
	if tagEnd == tagStart {
		return Element{}, false
	}

	return Element{
		Kind: TokenElement,
		Span: Range{Start: pos, End: tagEnd},
		Word: Range{Start: pos, End: wordEnd},
		Tag:  Range{Start: tagStart, End: tagEnd},
	}, true
}

func scanTokenRun(text string, pos int) int {
	k := pos
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if !IsTokenRune(r) {
			break
		}
		k += size
	}
	return k
}

func skipRun(text string, pos int) int {
	k := pos
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if unicode.IsSpace(r) || r == '[' {
			break
		}
		k += size
	}
	if k == pos {
		k++
	}
	return k
}

// ============================================================================
// Character classes
// ============================================================================

// IsNameRune reports whether r may appear in a chunk name.
func IsNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsTokenRune reports whether r may appear in a word or a tag.
func IsTokenRune(r rune) bool {
	return r != '[' && r != ']' && r != '/' && r != utf8.RuneError && !unicode.IsSpace(r)
}

// IsName reports whether s is a valid chunk name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsNameRune(r) {
			return false
		}
	}
	return true
}

// Balanced reports whether every bracket in text is closed, in order.
func Balanced(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
