package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists entries in a PostgreSQL table through a pgx pool
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the schema exists
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres backend requires storage.dsn")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Single-user app: a handful of connections is plenty
	config.MaxConns = 4
	config.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal_entries (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		mood TEXT NOT NULL,
		entry_text TEXT NOT NULL,
		reflection TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_journal_entries_created_at ON journal_entries(created_at);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Postgres) Append(ctx context.Context, e *Entry) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO journal_entries (created_at, mood, entry_text, reflection)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, e.Timestamp, string(e.Mood), e.Text, e.Reflection).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (s *Postgres) All(ctx context.Context) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, mood, entry_text, reflection
		FROM journal_entries
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var m string
		if err := rows.Scan(&e.ID, &e.Timestamp, &m, &e.Text, &e.Reflection); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Mood = moodOf(m)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
