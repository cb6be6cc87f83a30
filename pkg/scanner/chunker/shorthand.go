package chunker

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	"github.com/kittclouds/poschunk/pkg/scanner/bracket"
)

// Shorthands, expanded in this order. Whitespace goes first so spaces in a
// rule uniformly become the optional separator; the "+" form goes before the
// single-token form so its suffix is never left stranded.
var (
	spaceShorthand    = regexp.MustCompile(`\s+`)
	multiTagShorthand = regexp.MustCompile(`\{([^{}/]+)/([^{}/]+)\}\+`)
	tagShorthand      = regexp.MustCompile(`\{([^{}/]+)/([^{}/]+)\}`)
	// Names must start with a letter so counted repetitions like {2} survive.
	chunkShorthand = regexp.MustCompile(`\{([A-Za-z_]\w*)\}(\*)?`)
)

const (
	optionalSpace = `\s?`
	anyWildcard   = "*"
	// tokenEnd closes a tagged word. It consumes the separator so a tag
	// cannot match the prefix of a longer one (NN inside NNS).
	tokenEnd = `(?:\s|$)`
)

// tokenClass matches one or more word or tag characters. Chunk placeholders
// are excluded; they are written as literal runes because an \x{...} escape
// would itself look like a chunk shorthand.
var tokenClass = `[^\s\[\]/` + string(rune(symbolFirst)) + `-` + string(rune(symbolLast)) + `]+`

// chunkRef is a {NAME} or {NAME}* reference found in a pattern.
type chunkRef struct {
	name     string
	optional bool
}

// expandTokens rewrites whitespace and tagged-word shorthands. Chunk
// references are left for expandChunks, which needs the symbol table.
func expandTokens(pattern string) string {
	pattern = spaceShorthand.ReplaceAllLiteralString(pattern, optionalSpace)
	pattern = multiTagShorthand.ReplaceAllStringFunc(pattern, func(m string) string {
		return "(?:" + tokenMatcher(multiTagShorthand.FindStringSubmatch(m)) + optionalSpace + ")+"
	})
	pattern = tagShorthand.ReplaceAllStringFunc(pattern, func(m string) string {
		return tokenMatcher(tagShorthand.FindStringSubmatch(m))
	})
	return pattern
}

func tokenMatcher(groups []string) string {
	return "(?:" + tokenPart(groups[1]) + "/" + tokenPart(groups[2]) + tokenEnd + ")"
}

func tokenPart(part string) string {
	if part == anyWildcard {
		return tokenClass
	}
	return "(?:" + part + ")"
}

// chunkRefs lists the chunk references of a token-expanded pattern.
func chunkRefs(pattern string) []chunkRef {
	var refs []chunkRef
	for _, m := range chunkShorthand.FindAllStringSubmatch(pattern, -1) {
		refs = append(refs, chunkRef{name: m[1], optional: m[2] != ""})
	}
	return refs
}

// expandChunks replaces each chunk reference with its placeholder rune. With
// fold set a reference also matches chunks whose names differ only in case.
func expandChunks(pattern string, syms *symbolTable, fold bool) string {
	return chunkShorthand.ReplaceAllStringFunc(pattern, func(m string) string {
		groups := chunkShorthand.FindStringSubmatch(m)
		var expr string
		if fold {
			runes := syms.foldSymbols(groups[1])
			alts := make([]string, len(runes))
			for i, r := range runes {
				alts[i] = regexp.QuoteMeta(string(r))
			}
			expr = "(?:" + strings.Join(alts, "|") + ")"
		} else {
			expr = regexp.QuoteMeta(string(syms.symbol(groups[1])))
		}
		if groups[2] != "" {
			expr = "(?:" + expr + ")?"
		}
		return expr
	})
}

// Expand returns the RE2 expression a rule pattern compiles to, with chunk
// references rendered as readable markers instead of placeholder runes.
// It is meant for diagnostics; the result is not executable.
func Expand(pattern string) string {
	expanded := expandTokens(pattern)
	return chunkShorthand.ReplaceAllStringFunc(expanded, func(m string) string {
		groups := chunkShorthand.FindStringSubmatch(m)
		marker := "<" + groups[1] + ">"
		if groups[2] != "" {
			marker += "?"
		}
		return marker
	})
}

// compiledRule is a rule with its executable matcher.
type compiledRule struct {
	rule     Rule
	expr     *regexp.Regexp
	required []string
}

func compileRule(rule Rule, expanded string, syms *symbolTable) (compiledRule, error) {
	source := rule.Options.flagPrefix() + expandChunks(expanded, syms, rule.Options.Has(IgnoreCase))
	expr, err := regexp.Compile(source)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w: rule %s: %v", ErrInvalidPattern, rule.ChunkName, err)
	}
	parsed, err := syntax.Parse(source, syntax.Perl)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w: rule %s: %v", ErrInvalidPattern, rule.ChunkName, err)
	}

	mandatory := mandatorySymbols(parsed)
	var required []string
	seen := make(map[string]bool)
	for _, ref := range chunkRefs(expanded) {
		if mandatory[syms.symbol(ref.name)] && !seen[ref.name] {
			seen[ref.name] = true
			required = append(required, ref.name)
		}
	}

	return compiledRule{rule: rule, expr: expr, required: required}, nil
}

// mandatorySymbols returns the chunk symbols every match of re must contain:
// literals on the concatenation spine, through captures and repeats with a
// positive minimum, and those common to all branches of an alternation.
func mandatorySymbols(re *syntax.Regexp) map[rune]bool {
	set := make(map[rune]bool)
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if isSymbol(r) {
				set[r] = true
			}
		}
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			for r := range mandatorySymbols(sub) {
				set[r] = true
			}
		}
	case syntax.OpCapture, syntax.OpPlus:
		return mandatorySymbols(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min >= 1 {
			return mandatorySymbols(re.Sub[0])
		}
	case syntax.OpAlternate:
		for i, sub := range re.Sub {
			branch := mandatorySymbols(sub)
			if i == 0 {
				set = branch
				continue
			}
			for r := range set {
				if !branch[r] {
					delete(set, r)
				}
			}
		}
	}
	return set
}

// wrap applies the rule once over text, returning the new text and the number
// of chunks created.
func (c *compiledRule) wrap(text string, syms *symbolTable) (string, int) {
	s := project(text, syms)
	locs := c.expr.FindAllStringIndex(s.text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(locs)*(len(c.rule.ChunkName)+4))

	prev := 0
	count := 0
	for _, loc := range locs {
		start, end := s.original(loc[0]), s.original(loc[1])
		lead, core, trail := splitSpace(text[start:end])
		if core == "" || !atTokenBoundary(text, start+len(lead), end-len(trail)) {
			continue
		}

		sb.WriteString(text[prev:start])
		sb.WriteString(lead)
		if out := sb.String(); len(out) > 0 && out[len(out)-1] == ']' {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		sb.WriteString(c.rule.ChunkName)
		sb.WriteByte(' ')
		sb.WriteString(core)
		sb.WriteByte(']')
		sb.WriteString(trail)
		if trail == "" && end < len(text) && text[end] == '[' {
			sb.WriteByte(' ')
		}

		prev = end
		count++
	}

	if count == 0 {
		return text, 0
	}
	sb.WriteString(text[prev:])
	return sb.String(), count
}

// splitSpace separates the whitespace a match consumed at either end; it is
// emitted outside the new brackets.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeft(s, " \t\r\n\f\v")
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRight(core, " \t\r\n\f\v")
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

// atTokenBoundary reports whether text[start:end] neither begins nor ends in
// the middle of a token.
func atTokenBoundary(text string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		first, _ := utf8.DecodeRuneInString(text[start:])
		if bracket.IsTokenRune(before) && bracket.IsTokenRune(first) {
			return false
		}
	}
	if end < len(text) {
		last, _ := utf8.DecodeLastRuneInString(text[:end])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if bracket.IsTokenRune(last) && bracket.IsTokenRune(after) {
			return false
		}
	}
	return true
}
