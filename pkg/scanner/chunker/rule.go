package chunker

import (
	"fmt"
	"strings"

	"github.com/kittclouds/poschunk/pkg/scanner/bracket"
)

// ============================================================================
// Options
// ============================================================================

// Options are the match flags applied to a rule's expanded pattern.
type Options uint8

const (
	// IgnoreCase matches letters case-insensitively.
	IgnoreCase Options = 1 << iota
	// Multiline makes ^ and $ match at line boundaries.
	Multiline
	// Singleline lets . match newlines.
	Singleline
)

// None is the default: no flags.
const None Options = 0

var optionNames = []struct {
	opt  Options
	name string
}{
	{IgnoreCase, "ignorecase"},
	{Multiline, "multiline"},
	{Singleline, "singleline"},
}

// Has reports whether every flag in o2 is set.
func (o Options) Has(o2 Options) bool {
	return o&o2 == o2
}

// Names returns the flag names in a stable order.
func (o Options) Names() []string {
	var names []string
	for _, on := range optionNames {
		if o.Has(on.opt) {
			names = append(names, on.name)
		}
	}
	return names
}

// String returns the flags joined with "|", or "none".
func (o Options) String() string {
	if o == None {
		return "none"
	}
	return strings.Join(o.Names(), "|")
}

// flagPrefix renders the flags as an RE2 inline flag group.
func (o Options) flagPrefix() string {
	var flags string
	if o.Has(IgnoreCase) {
		flags += "i"
	}
	if o.Has(Multiline) {
		flags += "m"
	}
	if o.Has(Singleline) {
		flags += "s"
	}
	if flags == "" {
		return ""
	}
	return "(?" + flags + ")"
}

// ParseOptions converts flag names ("ignorecase", "multiline", "singleline")
// into Options. Names are case-insensitive.
func ParseOptions(names []string) (Options, error) {
	var o Options
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, on := range optionNames {
			if on.name == name {
				o |= on.opt
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("%w: unknown match option %q", ErrInvalidArgument, raw)
		}
	}
	return o, nil
}

// ============================================================================
// Rule
// ============================================================================

// Rule wraps every match of Pattern in a chunk named ChunkName.
//
// Pattern is an RE2 expression with shorthands expanded before compilation:
//
//	{CHUNKNAME}     an existing top-level chunk
//	{CHUNKNAME}*    an optional existing chunk
//	{word/*}        a tagged word regardless of the tag
//	{*/TAG}         a tagged word regardless of the word
//	{*/(T1|T2)}+    consecutive tagged words
//
// Whitespace in the pattern stands for an optional single separator.
// Tagged-word shorthands match whole tokens only: {*/NN} never matches the
// NN prefix of NNS. Under IgnoreCase, chunk references ignore case too.
type Rule struct {
	ChunkName string
	Pattern   string
	Options   Options
}

// NewRule creates a rule with the given flags.
func NewRule(chunkName, pattern string, opts ...Options) Rule {
	r := Rule{ChunkName: chunkName, Pattern: pattern}
	for _, o := range opts {
		r.Options |= o
	}
	return r
}

// Validate checks the fields a rule cannot do without.
func (r Rule) Validate() error {
	if r.ChunkName == "" {
		return fmt.Errorf("%w: rule has no chunk name", ErrInvalidArgument)
	}
	if !bracket.IsName(r.ChunkName) {
		return fmt.Errorf("%w: chunk name %q must be letters, digits or underscores", ErrInvalidArgument, r.ChunkName)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("%w: rule %s has no pattern", ErrInvalidArgument, r.ChunkName)
	}
	return nil
}
