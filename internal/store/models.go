// Package store provides persistence for grammars and chunked documents.
package store

import (
	"errors"
	"fmt"

	"github.com/kittclouds/poschunk/pkg/grammar"
)

// ErrExists is returned when creating a grammar whose name is taken.
var ErrExists = errors.New("already exists")

// GrammarRecord is one version of a stored grammar.
// Uses the temporal table pattern: every update adds a version and closes
// the previous one.
type GrammarRecord struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"` // YAML
	RuleCount   int    `json:"ruleCount"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`

	// Temporal fields for version tracking
	ValidFrom    int64  `json:"validFrom"`
	ValidTo      *int64 `json:"validTo,omitempty"`
	IsCurrent    bool   `json:"isCurrent"`
	ChangeReason string `json:"changeReason,omitempty"`
}

// NewGrammarRecord encodes g for storage, stamped with now (unix millis).
func NewGrammarRecord(g *grammar.Grammar, now int64) (*GrammarRecord, error) {
	source, err := grammar.Marshal(g)
	if err != nil {
		return nil, err
	}
	return &GrammarRecord{
		Name:        g.Name,
		Description: g.Description,
		Source:      string(source),
		RuleCount:   len(g.Rules),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Grammar decodes the stored source.
func (r *GrammarRecord) Grammar() (*grammar.Grammar, error) {
	g, err := grammar.Parse([]byte(r.Source))
	if err != nil {
		return nil, fmt.Errorf("stored grammar %s v%d: %w", r.Name, r.Version, err)
	}
	return g, nil
}

// Document is a chunking run: the input, the output, and the grammar version
// that produced it.
type Document struct {
	ID             string `json:"id"`
	GrammarName    string `json:"grammarName"`
	GrammarVersion int    `json:"grammarVersion"`
	TaggedText     string `json:"taggedText"`
	ChunkedText    string `json:"chunkedText"`
	CreatedAt      int64  `json:"createdAt"`
}

// Storer defines the interface for data persistence.
// This allows swapping between MemStore (testing) and SQLiteStore (production).
// Lookups of missing rows return (nil, nil).
type Storer interface {
	// Grammars - version-aware operations
	CreateGrammar(rec *GrammarRecord) error
	UpdateGrammar(rec *GrammarRecord, reason string) error
	GetGrammar(name string) (*GrammarRecord, error)
	GetGrammarVersion(name string, version int) (*GrammarRecord, error)
	ListGrammarVersions(name string) ([]*GrammarRecord, error)
	ListGrammars() ([]*GrammarRecord, error)
	DeleteGrammar(name string) error
	CountGrammars() (int, error)

	// Documents
	SaveDocument(doc *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments(grammarName string) ([]*Document, error)
	DeleteDocument(id string) error
	CountDocuments() (int, error)

	// Lifecycle
	Close() error
}
