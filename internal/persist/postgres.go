package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createCacheTable = `CREATE TABLE IF NOT EXISTS cv_cache (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgreSQL error codes reported as ErrQuotaExceeded.
const (
	pgDiskFull             = "53100"
	pgProgramLimitExceeded = "54000"
)

// PostgresStorage stores values in the cv_cache table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to databaseURL and creates the cache table when
// missing.
func NewPostgresStorage(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createCacheTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create cv_cache table: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Get implements Storage.
func (p *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM cv_cache WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Backend: "postgres", Op: "get", Key: key, Cause: err}
	}
	return value, nil
}

// Set implements Storage.
func (p *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO cv_cache (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		if isPgQuotaError(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return &StorageError{Backend: "postgres", Op: "set", Key: key, Cause: err}
	}
	return nil
}

func isPgQuotaError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgDiskFull || pgErr.Code == pgProgramLimitExceeded
}

// Remove implements Storage.
func (p *PostgresStorage) Remove(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM cv_cache WHERE key = $1`, key); err != nil {
		return &StorageError{Backend: "postgres", Op: "remove", Key: key, Cause: err}
	}
	return nil
}

// Close implements Storage.
func (p *PostgresStorage) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
