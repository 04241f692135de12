package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	loadValueSQL = `SELECT value FROM kv WHERE key = $1`
	saveValueSQL = `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

var _ cart.Storage = (*KV)(nil)

// KV stores cart snapshots in the kv table. Values must be valid JSON.
type KV struct {
	pool *pgxpool.Pool
}

// NewKV returns a KV that uses the given pool.
func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

// Load returns the value under key, or nil when the key is absent.
func (s *KV) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, loadValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading key %q: %w", key, err)
	}
	return value, nil
}

// Save upserts the value under key.
func (s *KV) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.pool.Exec(ctx, saveValueSQL, key, string(data)); err != nil {
		return fmt.Errorf("saving key %q: %w", key, err)
	}
	return nil
}
