package store

import (
	"context"
	"sync"
)

// Memory keeps entries for the lifetime of the process
type Memory struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, clone(e))
	return nil
}

func (m *Memory) All(_ context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = clone(e)
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
