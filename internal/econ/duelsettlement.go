package econ

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"

	"github.com/tickrealm/core/internal/model"
)

// ExecuteDuelStakeTransfer moves loser's staked items to winner, overflowing
// into the winner's bank tab 0 when the inventory has no room. Idempotent per
// (winnerID, loserID) within the configured TTL, since a combat-death and a
// forfeit notification can race and both call Complete. Satisfies
// internal/game/duel.Settler.
func (e *Engine) ExecuteDuelStakeTransfer(winnerID, loserID int64, stakes []model.TradeSlotItem) error {
	if len(stakes) == 0 {
		return nil
	}
	if !e.idempotency.TryClaim(winnerID, loserID) {
		return nil
	}

	if !e.locks.LockBoth(winnerID, loserID) {
		return fmt.Errorf("%s", model.ReasonServerError)
	}
	defer e.locks.UnlockBoth(winnerID, loserID)

	ctx := context.Background()
	outerBackoff := retry.Backoff(newDelayTableBackoff(e.outerMs))

	return retry.Do(ctx, outerBackoff, func(ctx context.Context) error {
		innerBackoff := retry.Backoff(newDelayTableBackoff(e.deadlockMs))
		txErr := retry.Do(ctx, innerBackoff, func(ctx context.Context) error {
			err := e.duelSettlementAttempt(ctx, winnerID, loserID, stakes)
			if err != nil && isRetryablePGError(err) {
				return retry.RetryableError(err)
			}
			return err
		})
		if txErr != nil {
			return retry.RetryableError(txErr)
		}
		return nil
	})
}

func (e *Engine) duelSettlementAttempt(ctx context.Context, winnerID, loserID int64, stakes []model.TradeSlotItem) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin duel settlement transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Error("duel settlement rollback failed", "error", rbErr)
		}
	}()

	loserInv, err := e.inventory.LoadForUpdate(ctx, tx, loserID)
	if err != nil {
		return err
	}
	winnerInv, err := e.inventory.LoadForUpdate(ctx, tx, winnerID)
	if err != nil {
		return err
	}

	winnerFree := freeSlotsOf(winnerInv)

	for _, stake := range stakes {
		if stake.InventorySlot < 0 || int(stake.InventorySlot) >= model.MaxInventorySlots {
			continue
		}
		current := loserInv.Slots[stake.InventorySlot]
		if current == nil || current.ItemID != stake.ItemID {
			continue // item already gone (spent, dropped) before settlement ran
		}
		transfer := stake.Quantity
		if current.Quantity < transfer {
			transfer = current.Quantity
		}
		if transfer <= 0 {
			continue
		}

		remaining := current.Quantity - transfer
		updatedLoserSlot := *current
		updatedLoserSlot.Quantity = remaining
		if err := e.inventory.SetSlot(ctx, tx, loserID, updatedLoserSlot); err != nil {
			return err
		}
		if remaining == 0 {
			loserInv.Slots[stake.InventorySlot] = nil
		} else {
			loserInv.Slots[stake.InventorySlot] = &updatedLoserSlot
		}

		if err := e.grantToWinner(ctx, tx, winnerID, winnerInv, &winnerFree, *current, transfer); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// grantToWinner places transfer units of the staked item into the winner's
// inventory: merging onto an existing stack (capped at MaxStackQuantity),
// else the first free slot, else spilling into bank tab 0. If the bank is
// also full, the item is dropped and an error is logged; the loser's removal
// still commits, so the dropped units are gone from both players.
func (e *Engine) grantToWinner(ctx context.Context, tx pgx.Tx, winnerID int64, winnerInv *model.Inventory, free *[]int32, item model.ItemStack, transfer int64) error {
	if item.Stackable {
		if existing := winnerInv.FindStackable(item.ItemID); existing != nil {
			room := model.MaxStackQuantity - existing.Quantity
			if room > 0 {
				add := transfer
				if add > room {
					add = room
				}
				updated := *existing
				updated.Quantity += add
				if err := e.inventory.SetSlot(ctx, tx, winnerID, updated); err != nil {
					return err
				}
				winnerInv.Slots[existing.SlotIndex] = &updated
				transfer -= add
			}
		}
	}
	if transfer <= 0 {
		return nil
	}

	if len(*free) > 0 {
		slot := (*free)[0]
		*free = (*free)[1:]
		stack := model.ItemStack{SlotIndex: slot, ItemID: item.ItemID, Quantity: transfer, Stackable: item.Stackable, Tradeable: item.Tradeable}
		if err := e.inventory.SetSlot(ctx, tx, winnerID, stack); err != nil {
			return err
		}
		winnerInv.Slots[slot] = &stack
		return nil
	}

	return e.spillToBank(ctx, tx, winnerID, item, transfer)
}

func (e *Engine) spillToBank(ctx context.Context, tx pgx.Tx, winnerID int64, item model.ItemStack, transfer int64) error {
	if item.Stackable {
		slot, existingQty, err := e.bank.FindStackableSlot(ctx, tx, winnerID, item.ItemID)
		if err != nil {
			return err
		}
		if slot >= 0 {
			return e.bank.UpsertStack(ctx, tx, winnerID, slot, item.ItemID, existingQty+transfer, true)
		}
	}

	slot, err := e.bank.NextFreeSlot(ctx, tx, winnerID)
	if err != nil {
		return err
	}
	if slot < 0 {
		slog.Error("duel stake dropped: winner inventory and bank both full",
			"winner_id", winnerID, "item_id", item.ItemID, "quantity", transfer)
		return nil
	}
	return e.bank.UpsertStack(ctx, tx, winnerID, slot, item.ItemID, transfer, item.Stackable)
}

// freeSlotsOf returns inv's currently-free slots, sorted ascending.
func freeSlotsOf(inv *model.Inventory) []int32 {
	var free []int32
	for i, s := range inv.Slots {
		if s == nil {
			free = append(free, int32(i))
		}
	}
	return free
}
