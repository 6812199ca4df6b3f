package storage

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLite is a Storage backed by an embedded SQLite database holding a single
// cache_entries table keyed by fingerprint.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite-backed storage at the given file path,
// creating the parent directory if needed.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "unable to create storage directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "unable to ping sqlite database")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "unable to create cache_entries table")
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Read(ctx context.Context, keys []string) (map[string][]byte, error) {
	found := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM cache_entries WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query cache entries")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrap(err, "unable to scan cache entry")
		}
		found[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to iterate cache entries")
	}

	return found, nil
}

func (s *SQLite) Write(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var existing []byte
	err = tx.QueryRowContext(ctx,
		"SELECT value FROM cache_entries WHERE key = ?", key).Scan(&existing)
	switch {
	case err == nil:
		if bytes.Equal(existing, value) {
			return nil
		}

		return errors.Wrapf(ErrConflict, "key %s", key)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return errors.Wrapf(err, "unable to check key %s", key)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO cache_entries(key, value) VALUES(?, ?)", key, value)
	if err != nil {
		return errors.Wrapf(err, "unable to write key %s", key)
	}

	return errors.Wrap(tx.Commit(), "unable to commit write")
}

func (s *SQLite) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close sqlite database")
}

var _ Storage = (*SQLite)(nil)
