package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entity is one row of the generic `entities` table: a JSON blob owned by a
// user, tagged by kind ("character" for a playable character record).
type Entity struct {
	ID        int64
	OwnerID   int64
	Kind      string
	Data      json.RawMessage
	UpdatedAt time.Time
}

// EntityRepository backs character listing/creation and the Initialization
// / Save Manager's spawn-data loads (spec §2.16, §6 `entities` table).
type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// ListByOwnerAndKind returns every entity row owned by ownerID of the given
// kind, ordered by id (stable character-list ordering for the client).
func (r *EntityRepository) ListByOwnerAndKind(ctx context.Context, ownerID int64, kind string) ([]Entity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, kind, data, updated_at FROM entities
		 WHERE owner_id = $1 AND kind = $2 ORDER BY id`, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("listing entities for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Kind, &e.Data, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new entity row and returns its assigned id.
func (r *EntityRepository) Create(ctx context.Context, ownerID int64, kind string, data json.RawMessage) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO entities (owner_id, kind, data) VALUES ($1, $2, $3) RETURNING id`,
		ownerID, kind, data,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating entity for owner %d: %w", ownerID, err)
	}
	return id, nil
}

// Get retrieves a single entity by id, confirming it belongs to ownerID
// (prevents one socket from loading another account's character by guessing
// an id).
func (r *EntityRepository) Get(ctx context.Context, ownerID, id int64) (*Entity, error) {
	var e Entity
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, kind, data, updated_at FROM entities WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&e.ID, &e.OwnerID, &e.Kind, &e.Data, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading entity %d: %w", id, err)
	}
	return &e, nil
}

// SaveData overwrites an entity's JSON payload, stamping updated_at — used
// by the periodic settings-persistence tick and by position saves on
// disconnect.
func (r *EntityRepository) SaveData(ctx context.Context, id int64, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE entities SET data = $1, updated_at = now() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("saving entity %d: %w", id, err)
	}
	return nil
}
