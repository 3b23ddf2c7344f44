// Package sqlite provides the local-file key-value backend, the default
// home for the client's persisted state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/database"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const (
	selectValue = `SELECT value FROM storefront_kv WHERE key = ?`
	upsertValue = `
		INSERT INTO storefront_kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteValue = `DELETE FROM storefront_kv WHERE key = ?`
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// KV implements storage.KV on SQLite.
type KV struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating when missing) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*KV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; also keeps an in-memory database on one connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create storefront_kv: %w", err)
	}

	return &KV{sqlDB: sqlDB, now: time.Now}, nil
}

// Get retrieves the value stored under key.
func (s *KV) Get(ctx context.Context, key string) (value string, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.get", selectValue)
	defer func() { end(err) }()

	err = s.sqlDB.QueryRowContext(ctx, selectValue, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *KV) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.set", upsertValue)
	defer func() { end(err) }()

	if _, err = s.sqlDB.ExecContext(ctx, upsertValue, key, value, s.now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.delete", deleteValue)
	defer func() { end(err) }()

	if _, err = s.sqlDB.ExecContext(ctx, deleteValue, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *KV) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Stats reports the handle's connection pool.
func (s *KV) Stats() database.PoolStats {
	return database.SQLStats(s.sqlDB)()
}

// Close closes the SQLite handle.
func (s *KV) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
