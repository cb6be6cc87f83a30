package chunker

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// prefilter finds which chunk names occur in a text with one Aho-Corasick
// pass over their "[NAME" openers. A rule whose mandatory references are not
// all present cannot match and is skipped.
type prefilter struct {
	ac    ahocorasick.AhoCorasick
	names []string
}

// newPrefilter returns nil when no rule has a mandatory chunk reference.
func newPrefilter(rules []compiledRule) *prefilter {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rules {
		for _, name := range r.required {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}

	patterns := make([]string, len(names))
	for i, name := range names {
		patterns[i] = "[" + name
	}

	// Leftmost-longest keeps "[NP" from shadowing "[NPS" at the same offset.
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})

	return &prefilter{ac: builder.Build(patterns), names: names}
}

// present returns the set of chunk names opened somewhere in text, at any depth.
func (p *prefilter) present(text string) map[string]bool {
	found := make(map[string]bool)
	for _, m := range p.ac.FindAll(text) {
		found[p.names[m.Pattern()]] = true
	}
	return found
}

// admits reports whether the rule can possibly match text.
func (p *prefilter) admits(r *compiledRule, text string) bool {
	if p == nil || len(r.required) == 0 {
		return true
	}
	found := p.present(text)
	for _, name := range r.required {
		if !found[name] {
			return false
		}
	}
	return true
}
