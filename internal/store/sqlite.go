// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quillnote/quill-sync/internal/logger"
)

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`

	getKV = `SELECT value FROM kv WHERE key = ?;`

	putKV = `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value;`

	deleteKV = `DELETE FROM kv WHERE key = ?;`

	listKV = `SELECT key, value FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key;`
)

type sqliteStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed key-value
// store at path. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(path string, log *logger.Logger) (KeyValueStore, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}

	if _, err = db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w: %w", ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db, logger: log.WithComponent("store")}, nil
}

// Get implements [KeyValueStore].
func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, getKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", key, ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", key, ErrStoreUnavailable, err)
	}
	return value, nil
}

// Put implements [KeyValueStore].
func (s *sqliteStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, putKV, key, value); err != nil {
		return fmt.Errorf("put %s: %w: %w", key, ErrStoreUnavailable, err)
	}
	return nil
}

// Delete implements [KeyValueStore]. Deleting an absent key succeeds.
func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteKV, key); err != nil {
		return fmt.Errorf("delete %s: %w: %w", key, ErrStoreUnavailable, err)
	}
	return nil
}

// List implements [KeyValueStore].
func (s *sqliteStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, listKV, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", prefix, ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err = rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("list scan: %w: %w", ErrStoreUnavailable, err)
		}
		out[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// Close implements [KeyValueStore].
func (s *sqliteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite store: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so a prefix containing % or _
// matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
