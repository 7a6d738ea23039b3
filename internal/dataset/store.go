package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store persists dataset entries in SQLite so that retrieval can map
// index hits back to full records without reloading the source
// spreadsheet.
type Store struct {
	db *sql.DB
}

// Open creates or opens the entry database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory entry store (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    user_prompt TEXT NOT NULL DEFAULT '',
    keywords TEXT NOT NULL DEFAULT '',
    doc_type TEXT NOT NULL DEFAULT '',
    structure TEXT NOT NULL DEFAULT '',
    content_elements TEXT NOT NULL DEFAULT '',
    latex_output TEXT NOT NULL DEFAULT ''
);
`

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Replace wipes the table and inserts the given entries in one
// transaction. Index builds always replace the full corpus.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, user_prompt, keywords, doc_type, structure, content_elements, latex_output)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.UserPrompt, strings.Join(e.Keywords, ","), e.DocType,
			e.Structure, e.ContentElements, e.LaTeXOutput,
		)
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a single entry, or nil if it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	var keywords string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_prompt, keywords, doc_type, structure, content_elements, latex_output
		 FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.UserPrompt, &keywords, &e.DocType, &e.Structure, &e.ContentElements, &e.LaTeXOutput)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry %s: %w", id, err)
	}

	e.Keywords = splitKeywords(keywords)
	return &e, nil
}

// All returns every stored entry ordered by ID.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_prompt, keywords, doc_type, structure, content_elements, latex_output
		 FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var keywords string
		if err := rows.Scan(&e.ID, &e.UserPrompt, &keywords, &e.DocType, &e.Structure, &e.ContentElements, &e.LaTeXOutput); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Keywords = splitKeywords(keywords)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}
