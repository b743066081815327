package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BankRepository handles overflow spillover from duel settlement / trade
// when a winner's inventory is full.
type BankRepository struct {
	pool *pgxpool.Pool
}

func NewBankRepository(pool *pgxpool.Pool) *BankRepository {
	return &BankRepository{pool: pool}
}

// FindStackableSlot returns the bank tab-0 slot already holding itemID as a
// stackable item, or -1 if none.
func (r *BankRepository) FindStackableSlot(ctx context.Context, tx pgx.Tx, playerID int64, itemID int32) (int32, int64, error) {
	var slot int32
	var qty int64
	err := tx.QueryRow(ctx,
		`SELECT slot, quantity FROM bank_storage
		 WHERE player_id = $1 AND tab_index = 0 AND item_id = $2 AND stackable
		 LIMIT 1`, playerID, itemID).Scan(&slot, &qty)
	if err != nil {
		if err == pgx.ErrNoRows {
			return -1, 0, nil
		}
		return -1, 0, fmt.Errorf("finding stackable bank slot: %w", err)
	}
	return slot, qty, nil
}

// NextFreeSlot returns MAX(slot)+1 within tab 0, or -1 if tab 0 is full
// (128 slots, matching inventory's dense-slot discipline scaled for bank
// capacity).
const bankTabCapacity = 128

func (r *BankRepository) NextFreeSlot(ctx context.Context, tx pgx.Tx, playerID int64) (int32, error) {
	var maxSlot *int32
	err := tx.QueryRow(ctx,
		`SELECT MAX(slot) FROM bank_storage WHERE player_id = $1 AND tab_index = 0`, playerID,
	).Scan(&maxSlot)
	if err != nil {
		return -1, fmt.Errorf("finding next free bank slot: %w", err)
	}
	next := int32(0)
	if maxSlot != nil {
		next = *maxSlot + 1
	}
	if next >= bankTabCapacity {
		return -1, nil
	}
	return next, nil
}

// UpsertStack writes quantity at slot in tab 0.
func (r *BankRepository) UpsertStack(ctx context.Context, tx pgx.Tx, playerID int64, slot int32, itemID int32, quantity int64, stackable bool) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO bank_storage (player_id, tab_index, slot, item_id, quantity, stackable)
		 VALUES ($1, 0, $2, $3, $4, $5)
		 ON CONFLICT (player_id, tab_index, slot) DO UPDATE SET quantity = EXCLUDED.quantity`,
		playerID, slot, itemID, quantity, stackable)
	if err != nil {
		return fmt.Errorf("upserting bank slot %d for player %d: %w", slot, playerID, err)
	}
	return nil
}
