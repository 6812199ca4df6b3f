package storage

import (
	"bytes"
	"context"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Badger is a Storage backed by an embedded BadgerDB key-value store.
type Badger struct {
	db *badger.DB
}

// NewBadger wraps an already opened BadgerDB instance. The caller keeps
// ownership of the database lifecycle when using this constructor directly;
// Close is still forwarded.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// OpenBadger opens a BadgerDB-backed storage at the given directory,
// creating it if needed. An empty path opens an in-memory database.
func OpenBadger(path string) (*Badger, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, errors.Wrapf(err, "unable to create storage directory %s", path)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open badger database")
	}

	return &Badger{db: db}, nil
}

func (b *Badger) Read(_ context.Context, keys []string) (map[string][]byte, error) {
	found := make(map[string][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return errors.Wrapf(err, "unable to read key %s", key)
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return errors.Wrapf(err, "unable to copy value for key %s", key)
			}
			found[key] = value
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (b *Badger) Write(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == nil {
			existing, err := item.ValueCopy(nil)
			if err != nil {
				return errors.Wrapf(err, "unable to copy value for key %s", key)
			}
			if bytes.Equal(existing, value) {
				return nil
			}

			return errors.Wrapf(ErrConflict, "key %s", key)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return errors.Wrapf(err, "unable to check key %s", key)
		}

		err = txn.Set([]byte(key), value)
		if err != nil {
			return errors.Wrapf(err, "unable to write key %s", key)
		}

		return nil
	})
}

func (b *Badger) Close() error {
	return errors.Wrap(b.db.Close(), "unable to close badger database")
}

var _ Storage = (*Badger)(nil)
