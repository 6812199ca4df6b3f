package storage

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-process Storage. It is mostly useful for tests and for
// single-run memoisation that does not need to survive the process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Read(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := m.entries[key]; ok {
			found[key] = value
		}
	}

	return found, nil
}

func (m *Memory) Write(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[key]; ok {
		if bytes.Equal(existing, value) {
			return nil
		}

		return errors.Wrapf(ErrConflict, "key %s", key)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored

	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

var _ Storage = (*Memory)(nil)
