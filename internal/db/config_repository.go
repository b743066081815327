package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigRepository backs the `config` key/value table: world settings such
// as the spawn point, persisted by the Save Manager on change and on its
// periodic tick (spec §2.16, §5 "Save cadence").
type ConfigRepository struct {
	pool *pgxpool.Pool
}

func NewConfigRepository(pool *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{pool: pool}
}

// Get returns the JSON value stored under key, or nil if absent.
func (r *ConfigRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var v json.RawMessage
	err := r.pool.QueryRow(ctx, `SELECT value FROM config WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config key %q: %w", key, err)
	}
	return v, nil
}

// Set upserts key's value.
func (r *ConfigRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing config key %q: %w", key, err)
	}
	return nil
}
