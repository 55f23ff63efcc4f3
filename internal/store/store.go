package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/mood"
)

// Entry represents a saved journal entry. Entries are never modified once
// appended.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Mood       mood.Mood `json:"mood"`
	Text       string    `json:"text"`
	Reflection string    `json:"reflection,omitempty"`
}

// Store is an append-only, ordered collection of entries
type Store interface {
	// Append adds e to the end of the collection and sets e.ID. Durable
	// backends return only after the entry has been written.
	Append(ctx context.Context, e *Entry) error
	// All returns every entry in insertion order, oldest first
	All(ctx context.Context) ([]*Entry, error)
	Close() error
}

// Open returns the backend selected by cfg.Storage.Backend. The logger
// receives repair warnings and may be nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return NewMemory(), nil
	case "csv":
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return OpenCSV(path, logger)
	case "sqlite", "":
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path)
	case "postgres":
		return OpenPostgres(ctx, cfg.Storage.DSN)
	case "redis":
		return OpenRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisKey)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (must be memory, csv, sqlite, postgres, or redis)", cfg.Storage.Backend)
	}
}

func clone(e *Entry) *Entry {
	c := *e
	return &c
}
