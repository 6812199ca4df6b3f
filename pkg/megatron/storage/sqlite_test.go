package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron/storage"
)

func TestSQLite(t *testing.T) {
	t.Parallel()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cache", "entries.db"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	verifyStorage(t, store)
}

func TestSQLiteReadEmptyKeys(t *testing.T) {
	t.Parallel()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "entries.db"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	found, err := store.Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.db")

	store, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, reopened.Close()) }()

	found, err := reopened.Read(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), found["k"])
}
