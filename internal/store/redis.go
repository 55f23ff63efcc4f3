package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/redis/go-redis/v9"
)

// Redis stores entries as JSON documents in a single Redis list. RPUSH
// keeps insertion order and never rewrites earlier elements.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to addr and uses key as the entry list
func OpenRedis(ctx context.Context, addr, key string) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis backend requires storage.redis_addr")
	}
	if key == "" {
		key = "moodjournal:entries"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     4,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, key: key}, nil
}

func (s *Redis) Append(ctx context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	n, err := s.client.RPush(ctx, s.key, data).Result()
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	e.ID = n
	return nil
}

func (s *Redis) All(ctx context.Context) ([]*Entry, error) {
	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]*Entry, 0, len(values))
	for i, v := range values {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to parse entry %d: %w", i+1, err)
		}
		e.ID = int64(i + 1)
		e.Mood = moodOf(string(e.Mood))
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

// moodOf normalizes a stored mood value, keeping unknown values as-is so
// foreign rows still display
func moodOf(s string) mood.Mood {
	if m, err := mood.Parse(s); err == nil {
		return m
	}
	return mood.Mood(s)
}
