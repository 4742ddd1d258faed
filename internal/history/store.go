// Package history records every document lazyjson opened in a local SQLite
// database.
package history

import (
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one load of a document
type Entry struct {
	ID           int
	Source       string
	Kind         string
	OpenedAt     time.Time
	Duration     time.Duration
	Documents    int
	Success      bool
	ErrorMessage string
}

// Store manages history persistence
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Add records an entry. A zero OpenedAt means now.
func (s *Store) Add(entry Entry) error {
	if entry.OpenedAt.IsZero() {
		entry.OpenedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO open_history
		(source, kind, opened_at, duration_ms, documents, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Source,
		entry.Kind,
		entry.OpenedAt.UTC(),
		entry.Duration.Milliseconds(),
		entry.Documents,
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// GetRecent retrieves the most recent entries, newest first
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, kind, opened_at, duration_ms, documents, success, error_message
		FROM open_history
		ORDER BY opened_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search retrieves entries whose source contains query
func (s *Store) Search(query string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, kind, opened_at, duration_ms, documents, success, error_message
		FROM open_history
		WHERE source LIKE ?
		ORDER BY opened_at DESC, id DESC
		LIMIT ?`, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64

		err := rows.Scan(
			&e.ID,
			&e.Source,
			&e.Kind,
			&e.OpenedAt,
			&durationMs,
			&e.Documents,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
