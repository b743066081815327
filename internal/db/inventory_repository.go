package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickrealm/core/internal/model"
)

// InventoryRepository performs row-level-locked reads and writes against
// the inventory table, consumed by the Atomic Economic Transactions
// component (trade swap, duel stake settlement).
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// LoadForUpdate re-selects playerID's full inventory ordered by slot with a
// row lock held for the duration of tx.
func (r *InventoryRepository) LoadForUpdate(ctx context.Context, tx pgx.Tx, playerID int64) (*model.Inventory, error) {
	rows, err := tx.Query(ctx,
		`SELECT slot_index, item_id, quantity, stackable, tradeable
		 FROM inventory WHERE player_id = $1 ORDER BY slot_index FOR UPDATE`, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading inventory for update (player %d): %w", playerID, err)
	}
	defer rows.Close()

	inv := &model.Inventory{PlayerID: playerID}
	for rows.Next() {
		var s model.ItemStack
		if err := rows.Scan(&s.SlotIndex, &s.ItemID, &s.Quantity, &s.Stackable, &s.Tradeable); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		if s.SlotIndex >= 0 && int(s.SlotIndex) < model.MaxInventorySlots {
			stack := s
			inv.Slots[s.SlotIndex] = &stack
		}
	}
	return inv, rows.Err()
}

// SetSlot upserts (or deletes, for quantity==0) one inventory slot.
func (r *InventoryRepository) SetSlot(ctx context.Context, tx pgx.Tx, playerID int64, s model.ItemStack) error {
	if s.Quantity == 0 {
		_, err := tx.Exec(ctx, `DELETE FROM inventory WHERE player_id = $1 AND slot_index = $2`, playerID, s.SlotIndex)
		if err != nil {
			return fmt.Errorf("deleting inventory slot %d for player %d: %w", s.SlotIndex, playerID, err)
		}
		return nil
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO inventory (player_id, slot_index, item_id, quantity, stackable, tradeable)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (player_id, slot_index) DO UPDATE SET
		   item_id = EXCLUDED.item_id, quantity = EXCLUDED.quantity,
		   stackable = EXCLUDED.stackable, tradeable = EXCLUDED.tradeable`,
		playerID, s.SlotIndex, s.ItemID, s.Quantity, s.Stackable, s.Tradeable)
	if err != nil {
		return fmt.Errorf("upserting inventory slot %d for player %d: %w", s.SlotIndex, playerID, err)
	}
	return nil
}

// Reload reloads a player's inventory outside any transaction, for the
// in-memory mirror refresh spec §3 requires after atomic writes.
func (r *InventoryRepository) Reload(ctx context.Context, playerID int64) (*model.Inventory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT slot_index, item_id, quantity, stackable, tradeable
		 FROM inventory WHERE player_id = $1 ORDER BY slot_index`, playerID)
	if err != nil {
		return nil, fmt.Errorf("reloading inventory for player %d: %w", playerID, err)
	}
	defer rows.Close()

	inv := &model.Inventory{PlayerID: playerID}
	for rows.Next() {
		var s model.ItemStack
		if err := rows.Scan(&s.SlotIndex, &s.ItemID, &s.Quantity, &s.Stackable, &s.Tradeable); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		if s.SlotIndex >= 0 && int(s.SlotIndex) < model.MaxInventorySlots {
			stack := s
			inv.Slots[s.SlotIndex] = &stack
		}
	}
	return inv, rows.Err()
}

// FreeSlotsAfterRemoving reports which slots would be free once the given
// outgoing slot indices are removed, sorted ascending — used to compute
// available capacity for incoming trade items before they are inserted.
func FreeSlotsAfterRemoving(inv *model.Inventory, outgoing []int32) []int32 {
	removing := make(map[int32]bool, len(outgoing))
	for _, s := range outgoing {
		removing[s] = true
	}
	var free []int32
	for i, s := range inv.Slots {
		if s == nil || removing[int32(i)] {
			free = append(free, int32(i))
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return free
}
