package storage

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Guard serialises writes per fingerprint for pipelines sharing one storage
// instance in the same process. Concurrent duplicate writes of the same key
// collapse into a single call to the underlying store; reads pass through,
// since entries are immutable once written.
type Guard struct {
	inner Storage
	group singleflight.Group
}

// NewGuard wraps a storage with a per-key write guard.
func NewGuard(inner Storage) *Guard {
	return &Guard{inner: inner}
}

func (g *Guard) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	return g.inner.Read(ctx, keys)
}

func (g *Guard) Write(ctx context.Context, key string, value []byte) error {
	_, err, _ := g.group.Do(key, func() (any, error) {
		return nil, g.inner.Write(ctx, key, value)
	})

	return err
}

func (g *Guard) Close() error {
	return g.inner.Close()
}

var _ Storage = (*Guard)(nil)
