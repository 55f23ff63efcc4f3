package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists entries in an embedded database. Rows are only ever
// inserted.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// migrate creates the schema if it doesn't exist
func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		mood TEXT NOT NULL,
		content TEXT NOT NULL,
		reflection TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_mood ON entries(mood);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func (s *SQLite) Append(ctx context.Context, e *Entry) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (created_at, mood, content, reflection)
		VALUES (?, ?, ?, ?)
	`,
		e.Timestamp,
		string(e.Mood),
		e.Text,
		e.Reflection,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get entry id: %w", err)
	}

	e.ID = id
	return nil
}

func (s *SQLite) All(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, mood, content, reflection
		FROM entries
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.Timestamp,
		&e.Mood,
		&e.Text,
		&e.Reflection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}
