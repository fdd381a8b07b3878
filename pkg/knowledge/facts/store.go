// Package facts is the factual-retrieval layer: atomic field/value
// assertions about catalog entities, indexed with SQLite FTS5 so
// answers can be backed by searchable facts instead of free text.
package facts

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	_ "modernc.org/sqlite"
)

// Fact is one atomic assertion about a canonical entity.
type Fact struct {
	ID        int64
	Type      string // member, album, song
	Canonical string
	Field     string
	Value     string
	Year      int // 0 when not applicable
	Source    string
}

// Store wraps the facts database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the facts database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create facts db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open facts db: %w", err)
	}
	// Single shared connection avoids writer lock contention under
	// concurrent readers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			canonical TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			year INTEGER,
			source TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS facts_canonical_idx ON facts(canonical, type);`,
		`CREATE INDEX IF NOT EXISTS facts_type_idx ON facts(type, canonical, field);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS facts_fts USING fts5(
			type, canonical, field, value,
			content='facts', content_rowid='id'
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init facts schema: %w", err)
		}
	}
	return nil
}

// Validate checks the store holds data; called at startup so an empty
// or stale database is reported explicitly instead of silently
// producing "no facts" answers.
func (s *Store) Validate(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&count); err != nil {
		return fmt.Errorf("count facts: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("facts database %s has no facts; run `rhcp-chatbot facts build`", s.path)
	}
	return nil
}

// Rebuild derives the fact rows from the knowledge base, replacing any
// existing content. This is the startup/CLI equivalent of the offline
// FTS build step.
func (s *Store) Rebuild(ctx context.Context, base *knowledge.Base) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM facts`); err != nil {
		return fmt.Errorf("clear facts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO facts_fts(facts_fts) VALUES ('delete-all')`); err != nil {
		return fmt.Errorf("clear facts index: %w", err)
	}

	insert := func(f Fact) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO facts(type, canonical, field, value, year, source) VALUES (?, ?, ?, ?, ?, ?)`,
			f.Type, f.Canonical, f.Field, f.Value, nullYear(f.Year), f.Source)
		if err != nil {
			return fmt.Errorf("insert fact: %w", err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("fact rowid: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facts_fts(rowid, type, canonical, field, value) VALUES (?, ?, ?, ?, ?)`,
			rowid, f.Type, f.Canonical, f.Field, f.Value); err != nil {
			return fmt.Errorf("index fact: %w", err)
		}
		return nil
	}

	for _, f := range Derive(base) {
		if err := insert(f); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// SearchFacts runs a full-text query, optionally restricted to one
// fact type, returning at most k facts ranked by FTS relevance.
func (s *Store) SearchFacts(ctx context.Context, query string, k int, factType string) ([]Fact, error) {
	if query == "" {
		return nil, nil
	}
	if k <= 0 {
		k = 5
	}

	var rows *sql.Rows
	var err error
	if factType != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT f.id, f.type, f.canonical, f.field, f.value, f.year, f.source
			FROM facts_fts
			JOIN facts f ON f.id = facts_fts.rowid
			WHERE facts_fts.type = ? AND facts_fts MATCH ?
			ORDER BY rank
			LIMIT ?`, factType, ftsQuery(query), k)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT f.id, f.type, f.canonical, f.field, f.value, f.year, f.source
			FROM facts_fts
			JOIN facts f ON f.id = facts_fts.rowid
			WHERE facts_fts MATCH ?
			ORDER BY rank
			LIMIT ?`, ftsQuery(query), k)
	}
	if err != nil {
		return nil, fmt.Errorf("search facts %q: %w", query, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

// GetFactsByCanonical returns every fact for one canonical entity,
// optionally restricted to a fact type.
func (s *Store) GetFactsByCanonical(ctx context.Context, canonical, factType string) ([]Fact, error) {
	var rows *sql.Rows
	var err error
	if factType != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, canonical, field, value, year, source
			FROM facts WHERE canonical = ? AND type = ?
			ORDER BY field, value`, canonical, factType)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, canonical, field, value, year, source
			FROM facts WHERE canonical = ?
			ORDER BY field, value`, canonical)
	}
	if err != nil {
		return nil, fmt.Errorf("facts for %q: %w", canonical, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

// GetFactsByType returns up to limit facts of one type.
func (s *Store) GetFactsByType(ctx context.Context, factType string, limit int) ([]Fact, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, canonical, field, value, year, source
		FROM facts WHERE type = ?
		ORDER BY canonical, field
		LIMIT ?`, factType, limit)
	if err != nil {
		return nil, fmt.Errorf("facts of type %q: %w", factType, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

// Stats summarizes the database contents.
type Stats struct {
	TotalFacts int            `json:"total_facts"`
	TypeCounts map[string]int `json:"type_counts"`
	Path       string         `json:"path"`
}

// GetStats reports fact counts overall and per type.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	st := Stats{TypeCounts: make(map[string]int), Path: s.path}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&st.TotalFacts); err != nil {
		return st, fmt.Errorf("count facts: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM facts GROUP BY type`)
	if err != nil {
		return st, fmt.Errorf("count facts by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return st, fmt.Errorf("scan type count: %w", err)
		}
		st.TypeCounts[typ] = n
	}
	return st, rows.Err()
}

func scanFacts(rows *sql.Rows) ([]Fact, error) {
	var out []Fact
	for rows.Next() {
		var f Fact
		var year sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Type, &f.Canonical, &f.Field, &f.Value, &year, &f.Source); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		if year.Valid {
			f.Year = int(year.Int64)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullYear(year int) any {
	if year == 0 {
		return nil
	}
	return year
}

// ftsQuery quotes every term so user text cannot inject FTS5 operators.
func ftsQuery(query string) string {
	var b []byte
	for i, field := range splitFields(query) {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, '"')
		b = append(b, field...)
		b = append(b, '"')
	}
	return string(b)
}
