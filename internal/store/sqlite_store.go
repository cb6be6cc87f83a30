package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore is the SQLite-backed data store.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines all tables with temporal versioning for grammars.
const schema = `
-- Grammars (Temporal versioning pattern)
-- Composite primary key (name, version) enables full version history
CREATE TABLE IF NOT EXISTS grammars (
    name TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    description TEXT,
    source TEXT NOT NULL,
    rule_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    valid_from INTEGER NOT NULL,
    valid_to INTEGER,
    is_current INTEGER DEFAULT 1,
    change_reason TEXT,
    PRIMARY KEY (name, version)
);

-- Partial index for current versions (fast queries)
CREATE INDEX IF NOT EXISTS idx_grammars_current ON grammars(name) WHERE is_current = 1;

-- Documents (chunking runs)
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    grammar_name TEXT,
    grammar_version INTEGER,
    tagged_text TEXT NOT NULL,
    chunked_text TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_grammar ON documents(grammar_name);
`

const grammarColumns = `name, version, description, source, rule_count, created_at, updated_at,
	valid_from, valid_to, is_current, change_reason`

// NewSQLiteStore creates an in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	// Create schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Grammar CRUD
// =============================================================================

// CreateGrammar stores version 1 of a new grammar.
func (s *SQLiteStore) CreateGrammar(rec *GrammarRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createGrammar(rec)
}

func (s *SQLiteStore) createGrammar(rec *GrammarRecord) error {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM grammars WHERE name = ? LIMIT 1`, rec.Name).Scan(&exists)
	if err == nil {
		return fmt.Errorf("grammar %s: %w", rec.Name, ErrExists)
	}
	if err != sql.ErrNoRows {
		return err
	}

	rec.Version = 1
	if rec.ValidFrom == 0 {
		rec.ValidFrom = rec.CreatedAt
	}
	rec.ValidTo = nil
	rec.IsCurrent = true

	return s.insertGrammar(rec)
}

func (s *SQLiteStore) insertGrammar(rec *GrammarRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO grammars (`+grammarColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Name, rec.Version, rec.Description, rec.Source, rec.RuleCount, rec.CreatedAt, rec.UpdatedAt,
		rec.ValidFrom, rec.ValidTo, boolToInt(rec.IsCurrent), rec.ChangeReason)
	if err != nil {
		return fmt.Errorf("failed to insert grammar %s v%d: %w", rec.Name, rec.Version, err)
	}
	return nil
}

// UpdateGrammar creates a new version of an existing grammar, or version 1
// when the grammar does not exist yet.
func (s *SQLiteStore) UpdateGrammar(rec *GrammarRecord, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Get current version info
	var currentVersion int
	var createdAt int64
	err := s.db.QueryRow(`
		SELECT version, created_at FROM grammars
		WHERE name = ? AND is_current = 1
	`, rec.Name).Scan(&currentVersion, &createdAt)
	if err == sql.ErrNoRows {
		return s.createGrammar(rec)
	}
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Close old current version
	_, err = tx.Exec(`
		UPDATE grammars SET valid_to = ?, is_current = 0
		WHERE name = ? AND is_current = 1
	`, rec.UpdatedAt, rec.Name)
	if err != nil {
		return err
	}

	rec.Version = currentVersion + 1
	rec.CreatedAt = createdAt // Preserve original creation time
	rec.ValidFrom = rec.UpdatedAt
	rec.ValidTo = nil
	rec.IsCurrent = true
	rec.ChangeReason = reason

	_, err = tx.Exec(`
		INSERT INTO grammars (`+grammarColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Name, rec.Version, rec.Description, rec.Source, rec.RuleCount, rec.CreatedAt, rec.UpdatedAt,
		rec.ValidFrom, rec.ValidTo, boolToInt(rec.IsCurrent), rec.ChangeReason)
	if err != nil {
		return fmt.Errorf("failed to insert grammar %s v%d: %w", rec.Name, rec.Version, err)
	}

	return tx.Commit()
}

// GetGrammar retrieves the current version of a grammar by name.
func (s *SQLiteStore) GetGrammar(name string) (*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+grammarColumns+` FROM grammars WHERE name = ? AND is_current = 1`, name)
	return scanGrammar(row)
}

// GetGrammarVersion retrieves a specific version of a grammar.
func (s *SQLiteStore) GetGrammarVersion(name string, version int) (*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+grammarColumns+` FROM grammars WHERE name = ? AND version = ?`, name, version)
	return scanGrammar(row)
}

// ListGrammarVersions returns all versions of a grammar, newest first.
func (s *SQLiteStore) ListGrammarVersions(name string) ([]*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT `+grammarColumns+` FROM grammars WHERE name = ? ORDER BY version DESC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrammars(rows)
}

// ListGrammars returns the current version of every grammar, by name.
func (s *SQLiteStore) ListGrammars() ([]*GrammarRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + grammarColumns + ` FROM grammars WHERE is_current = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrammars(rows)
}

// DeleteGrammar removes all versions of a grammar.
func (s *SQLiteStore) DeleteGrammar(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM grammars WHERE name = ?", name)
	return err
}

// CountGrammars returns the number of distinct grammars.
func (s *SQLiteStore) CountGrammars() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM grammars WHERE is_current = 1").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrammar(row rowScanner) (*GrammarRecord, error) {
	var rec GrammarRecord
	var description, changeReason sql.NullString
	var validTo sql.NullInt64
	var isCurrent int

	err := row.Scan(
		&rec.Name, &rec.Version, &description, &rec.Source, &rec.RuleCount, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.ValidFrom, &validTo, &isCurrent, &changeReason,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Description = description.String
	rec.ChangeReason = changeReason.String
	rec.IsCurrent = isCurrent != 0
	if validTo.Valid {
		rec.ValidTo = &validTo.Int64
	}
	return &rec, nil
}

func scanGrammars(rows *sql.Rows) ([]*GrammarRecord, error) {
	var result []*GrammarRecord
	for rows.Next() {
		rec, err := scanGrammar(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// =============================================================================
// Document CRUD
// =============================================================================

// SaveDocument inserts or replaces a document.
func (s *SQLiteStore) SaveDocument(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO documents (id, grammar_name, grammar_version, tagged_text, chunked_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			grammar_name = excluded.grammar_name,
			grammar_version = excluded.grammar_version,
			tagged_text = excluded.tagged_text,
			chunked_text = excluded.chunked_text,
			created_at = excluded.created_at
	`, doc.ID, doc.GrammarName, doc.GrammarVersion, doc.TaggedText, doc.ChunkedText, doc.CreatedAt)
	return err
}

// GetDocument retrieves a document by ID.
func (s *SQLiteStore) GetDocument(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc Document
	var grammarName sql.NullString
	var grammarVersion sql.NullInt64

	err := s.db.QueryRow(`
		SELECT id, grammar_name, grammar_version, tagged_text, chunked_text, created_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &grammarName, &grammarVersion, &doc.TaggedText, &doc.ChunkedText, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	doc.GrammarName = grammarName.String
	doc.GrammarVersion = int(grammarVersion.Int64)
	return &doc, nil
}

// ListDocuments returns documents oldest first; an empty name lists all.
func (s *SQLiteStore) ListDocuments(grammarName string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error

	if grammarName == "" {
		rows, err = s.db.Query(`
			SELECT id, grammar_name, grammar_version, tagged_text, chunked_text, created_at
			FROM documents ORDER BY created_at, id
		`)
	} else {
		rows, err = s.db.Query(`
			SELECT id, grammar_name, grammar_version, tagged_text, chunked_text, created_at
			FROM documents WHERE grammar_name = ? ORDER BY created_at, id
		`, grammarName)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var name sql.NullString
		var version sql.NullInt64
		if err := rows.Scan(&doc.ID, &name, &version, &doc.TaggedText, &doc.ChunkedText, &doc.CreatedAt); err != nil {
			return nil, err
		}
		doc.GrammarName = name.String
		doc.GrammarVersion = int(version.Int64)
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// DeleteDocument removes a document.
func (s *SQLiteStore) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id)
	return err
}

// CountDocuments returns the number of documents.
func (s *SQLiteStore) CountDocuments() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
