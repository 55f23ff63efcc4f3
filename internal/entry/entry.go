package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/reflection"
	"github.com/cldixon/moodjournal/internal/store"
)

var (
	// ErrEmptyText rejects a submission whose text is empty or whitespace
	ErrEmptyText = errors.New("entry text is empty")
	// ErrInvalidMood rejects a mood outside the fixed enumeration
	ErrInvalidMood = errors.New("mood is not one of the available moods")
	// ErrSaveFailed wraps any store failure during a submission
	ErrSaveFailed = errors.New("failed to save entry")
)

// Reflector produces the reflection stored with each entry
type Reflector interface {
	Reflect(ctx context.Context, m mood.Mood, text string) reflection.Result
}

// Result contains the saved entry and the reflection failure, if any
type Result struct {
	Entry         *store.Entry
	ReflectionErr error
}

// Journal owns the entry store and is the only path that creates entries
type Journal struct {
	store     store.Store
	reflector Reflector
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

// New creates a Journal writing to s. The newest stored timestamp is read
// so new entries never sort before existing ones.
func New(ctx context.Context, s store.Store, r Reflector) (*Journal, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	j := &Journal{
		store:     s,
		reflector: r,
		now:       time.Now,
	}
	for _, e := range entries {
		if e.Timestamp.After(j.last) {
			j.last = e.Timestamp
		}
	}
	return j, nil
}

// Submit validates the form input, asks for a reflection, and appends the
// entry. The entry is saved whether or not the reflection succeeded.
func (j *Journal) Submit(ctx context.Context, m mood.Mood, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMood, m)
	}

	reflected := j.reflector.Reflect(ctx, m, text)

	// Submissions are serialized so timestamps stay in insertion order
	j.mu.Lock()
	defer j.mu.Unlock()

	ts := j.now()
	if ts.Before(j.last) {
		ts = j.last
	}

	e := &store.Entry{
		Timestamp:  ts,
		Mood:       m,
		Text:       text,
		Reflection: reflected.Text,
	}
	// The entry outlives the request: a client disconnect or shutdown
	// during a slow reflection must not drop the write
	if err := j.store.Append(context.WithoutCancel(ctx), e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	j.last = ts

	return &Result{
		Entry:         e,
		ReflectionErr: reflected.Err,
	}, nil
}

// Entries returns every stored entry, oldest first
func (j *Journal) Entries(ctx context.Context) ([]*store.Entry, error) {
	entries, err := j.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return entries, nil
}
