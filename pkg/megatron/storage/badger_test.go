package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron/storage"
)

func TestBadgerInMemory(t *testing.T) {
	t.Parallel()

	store, err := storage.OpenBadger("")
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	verifyStorage(t, store)
}

func TestBadgerSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger")

	store, err := storage.OpenBadger(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := storage.OpenBadger(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, reopened.Close()) }()

	found, err := reopened.Read(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), found["k"])
}
