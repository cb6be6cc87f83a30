package store

import (
	"github.com/kittclouds/poschunk/pkg/grammar"
)

// ImportGrammar stores g as a new version unless the current version already
// has identical source. It returns the current record and whether a version
// was added.
func ImportGrammar(s Storer, g *grammar.Grammar, reason string, now int64) (*GrammarRecord, bool, error) {
	rec, err := NewGrammarRecord(g, now)
	if err != nil {
		return nil, false, err
	}

	current, err := s.GetGrammar(g.Name)
	if err != nil {
		return nil, false, err
	}
	if current != nil && current.Source == rec.Source {
		return current, false, nil
	}

	if err := s.UpdateGrammar(rec, reason); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
