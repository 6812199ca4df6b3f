// Package storage provides the persistent key-value collaborators a pipeline
// can bind to memoise computed node values. Keys are fingerprints built from
// the pipeline name, version, node name and record content, so entries from
// different pipeline revisions never collide. Entries are written once and
// never overwritten.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// Storage is the key-value contract consulted by the pipeline executor.
// Any durable store satisfies it as long as keys are strings and values are
// opaque byte slices.
type Storage interface {
	// Read returns the values for the keys that exist. Missing keys are
	// simply absent from the result; they are not an error.
	Read(ctx context.Context, keys []string) (map[string][]byte, error)
	// Write stores a value under a key, exactly once. Writing the same value
	// again is a no-op. Writing a different value under an existing key
	// fails with ErrConflict.
	Write(ctx context.Context, key string, value []byte) error
	// Close releases the underlying resources.
	Close() error
}

var (
	// ErrConflict reports a duplicate write with a different value. Cached
	// entries are immutable, so a conflict means the producing computation
	// is no longer deterministic.
	ErrConflict = errors.New("conflicting write for existing cache key")
)
