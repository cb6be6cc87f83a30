package store

import (
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Storer for testing.
type MemStore struct {
	mu        sync.RWMutex
	grammars  map[string][]*GrammarRecord // versions, oldest first
	documents map[string]*Document
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		grammars:  make(map[string][]*GrammarRecord),
		documents: make(map[string]*Document),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// =============================================================================
// Grammar CRUD
// =============================================================================

func (s *MemStore) CreateGrammar(rec *GrammarRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createGrammar(rec)
}

func (s *MemStore) createGrammar(rec *GrammarRecord) error {
	if len(s.grammars[rec.Name]) > 0 {
		return fmt.Errorf("grammar %s: %w", rec.Name, ErrExists)
	}

	rec.Version = 1
	if rec.ValidFrom == 0 {
		rec.ValidFrom = rec.CreatedAt
	}
	rec.ValidTo = nil
	rec.IsCurrent = true

	copy := *rec
	s.grammars[rec.Name] = []*GrammarRecord{&copy}
	return nil
}

func (s *MemStore) UpdateGrammar(rec *GrammarRecord, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.grammars[rec.Name]
	if len(versions) == 0 {
		return s.createGrammar(rec)
	}

	// Close old current version
	current := versions[len(versions)-1]
	closedAt := rec.UpdatedAt
	current.ValidTo = &closedAt
	current.IsCurrent = false

	rec.Version = current.Version + 1
	rec.CreatedAt = versions[0].CreatedAt // Preserve original creation time
	rec.ValidFrom = rec.UpdatedAt
	rec.ValidTo = nil
	rec.IsCurrent = true
	rec.ChangeReason = reason

	copy := *rec
	s.grammars[rec.Name] = append(versions, &copy)
	return nil
}

func (s *MemStore) GetGrammar(name string) (*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.grammars[name]
	if len(versions) == 0 {
		return nil, nil
	}
	return cloneGrammar(versions[len(versions)-1]), nil
}

func (s *MemStore) GetGrammarVersion(name string, version int) (*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.grammars[name] {
		if rec.Version == version {
			return cloneGrammar(rec), nil
		}
	}
	return nil, nil
}

// ListGrammarVersions returns all versions, newest first.
func (s *MemStore) ListGrammarVersions(name string) ([]*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.grammars[name]
	result := make([]*GrammarRecord, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		result = append(result, cloneGrammar(versions[i]))
	}
	return result, nil
}

// ListGrammars returns the current version of every grammar, by name.
func (s *MemStore) ListGrammars() ([]*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*GrammarRecord
	for _, versions := range s.grammars {
		result = append(result, cloneGrammar(versions[len(versions)-1]))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemStore) DeleteGrammar(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grammars, name)
	return nil
}

func (s *MemStore) CountGrammars() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grammars), nil
}

func cloneGrammar(rec *GrammarRecord) *GrammarRecord {
	copy := *rec
	if rec.ValidTo != nil {
		validTo := *rec.ValidTo
		copy.ValidTo = &validTo
	}
	return &copy
}

// =============================================================================
// Document CRUD
// =============================================================================

func (s *MemStore) SaveDocument(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deep copy to avoid mutation issues
	copy := *doc
	s.documents[doc.ID] = &copy
	return nil
}

func (s *MemStore) GetDocument(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if doc, ok := s.documents[id]; ok {
		copy := *doc
		return &copy, nil
	}
	return nil, nil
}

// ListDocuments returns documents oldest first; an empty name lists all.
func (s *MemStore) ListDocuments(grammarName string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Document
	for _, doc := range s.documents {
		if grammarName == "" || doc.GrammarName == grammarName {
			copy := *doc
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemStore) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, id)
	return nil
}

func (s *MemStore) CountDocuments() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}
