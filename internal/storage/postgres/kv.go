package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/database"
)

// DBTX is the subset of *pgxpool.Pool used by KV. pgxmock pools satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const (
	selectValue = `SELECT value FROM storefront_kv WHERE key = $1`
	upsertValue = `
		INSERT INTO storefront_kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteValue = `DELETE FROM storefront_kv WHERE key = $1`
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// KV implements storage.KV on a single PostgreSQL table.
type KV struct {
	db  DBTX
	now func() time.Time
}

// Open creates a pool for dsn, verifies it and ensures the table exists.
func Open(ctx context.Context, dsn string) (*KV, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	kv := New(pool)
	if err := kv.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return kv, nil
}

// New wraps an existing pool.
func New(db DBTX) *KV {
	return &KV{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the backing table when missing.
func (s *KV) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create storefront_kv: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (s *KV) Get(ctx context.Context, key string) (value string, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.get", selectValue)
	defer func() { end(err) }()

	err = s.db.QueryRow(ctx, selectValue, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *KV) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.set", upsertValue)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, upsertValue, key, value, s.now()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.delete", deleteValue)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, deleteValue, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Stats reports the pool when the KV runs on a real pgxpool.
func (s *KV) Stats() database.PoolStats {
	if pool, ok := s.db.(*pgxpool.Pool); ok {
		return database.PgxStats(pool)()
	}
	return database.PoolStats{}
}

func (s *KV) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *KV) Close() error {
	s.db.Close()
	return nil
}
