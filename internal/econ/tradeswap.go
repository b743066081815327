package econ

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/tickrealm/core/internal/db"
	"github.com/tickrealm/core/internal/model"
)

const (
	pgDeadlock      = "40P01"
	pgSerialization = "40001"
)

// Engine wires the repositories, locks and retry schedules that back the
// Atomic Economic Transactions component.
type Engine struct {
	pool         *pgxpool.Pool
	inventory    *db.InventoryRepository
	bank         *db.BankRepository
	locks        *LockSet
	idempotency  *IdempotencySet
	deadlockMs   []int
	outerMs      []int
}

func NewEngine(pool *pgxpool.Pool, inventory *db.InventoryRepository, bank *db.BankRepository, deadlockRetryMs, outerRetryMs []int, idempotencyTTL time.Duration) *Engine {
	return &Engine{
		pool:        pool,
		inventory:   inventory,
		bank:        bank,
		locks:       NewLockSet(),
		idempotency: NewIdempotencySet(idempotencyTTL),
		deadlockMs:  deadlockRetryMs,
		outerMs:     outerRetryMs,
	}
}

func isRetryablePGError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDeadlock || pgErr.Code == pgSerialization
	}
	return false
}

// ExecuteTradeSwap performs the two-phase remove/insert trade swap inside a
// single row-locked DB transaction, retrying on deadlock/serialization
// failure. Returns the items each side ends up receiving. Satisfies
// internal/trade.Swapper.
func (e *Engine) ExecuteTradeSwap(session model.TradeSession) (initiatorGets, recipientGets []model.TradeSlotItem, err error) {
	if !e.locks.LockBoth(session.Initiator.PlayerID, session.Recipient.PlayerID) {
		return nil, nil, fmt.Errorf("%s", model.ReasonServerError)
	}
	defer e.locks.UnlockBoth(session.Initiator.PlayerID, session.Recipient.PlayerID)

	ctx := context.Background()
	backoff := retry.Backoff(newDelayTableBackoff(e.deadlockMs))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := e.tradeSwapAttempt(ctx, session)
		if txErr != nil && isRetryablePGError(txErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	return session.Recipient.OfferedItems, session.Initiator.OfferedItems, nil
}

func (e *Engine) tradeSwapAttempt(ctx context.Context, session model.TradeSession) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin trade swap transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Error("trade swap rollback failed", "error", rbErr)
		}
	}()

	initiatorInv, err := e.inventory.LoadForUpdate(ctx, tx, session.Initiator.PlayerID)
	if err != nil {
		return err
	}
	recipientInv, err := e.inventory.LoadForUpdate(ctx, tx, session.Recipient.PlayerID)
	if err != nil {
		return err
	}

	if err := assertOffer(initiatorInv, session.Initiator.OfferedItems); err != nil {
		return err
	}
	if err := assertOffer(recipientInv, session.Recipient.OfferedItems); err != nil {
		return err
	}

	initOut := slotsOf(initiatorInv, session.Initiator.OfferedItems)
	recpOut := slotsOf(recipientInv, session.Recipient.OfferedItems)
	initFree := db.FreeSlotsAfterRemoving(initiatorInv, initOut)
	recpFree := db.FreeSlotsAfterRemoving(recipientInv, recpOut)

	if len(session.Recipient.OfferedItems) > len(initFree) {
		return fmt.Errorf("%s", model.ReasonInvFullInitiator)
	}
	if len(session.Initiator.OfferedItems) > len(recpFree) {
		return fmt.Errorf("%s", model.ReasonInvFullRecipient)
	}

	// Phase 1: remove outgoing items from both.
	for _, item := range session.Initiator.OfferedItems {
		if err := removeQuantity(ctx, e.inventory, tx, initiatorInv, item); err != nil {
			return err
		}
	}
	for _, item := range session.Recipient.OfferedItems {
		if err := removeQuantity(ctx, e.inventory, tx, recipientInv, item); err != nil {
			return err
		}
	}

	// Phase 2: insert incoming items into the first available slot.
	for i, item := range session.Recipient.OfferedItems {
		slot := initFree[i]
		if err := e.inventory.SetSlot(ctx, tx, session.Initiator.PlayerID, model.ItemStack{
			SlotIndex: slot, ItemID: item.ItemID, Quantity: item.Quantity, Tradeable: true,
		}); err != nil {
			return err
		}
	}
	for i, item := range session.Initiator.OfferedItems {
		slot := recpFree[i]
		if err := e.inventory.SetSlot(ctx, tx, session.Recipient.PlayerID, model.ItemStack{
			SlotIndex: slot, ItemID: item.ItemID, Quantity: item.Quantity, Tradeable: true,
		}); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// slotsOf returns the offered slots whose whole stack leaves inv; a partially
// offered slot keeps its remainder and is not counted as freed.
func slotsOf(inv *model.Inventory, items []model.TradeSlotItem) []int32 {
	out := make([]int32, 0, len(items))
	for _, it := range items {
		if it.Quantity >= inv.Slots[it.InventorySlot].Quantity {
			out = append(out, it.InventorySlot)
		}
	}
	return out
}

// assertOffer checks every offered item still exists at its claimed slot
// with >= claimed quantity and is tradeable.
func assertOffer(inv *model.Inventory, items []model.TradeSlotItem) error {
	for _, item := range items {
		if !model.ValidQuantity(item.Quantity) {
			return fmt.Errorf("%s", model.ReasonItemChanged)
		}
		if item.InventorySlot < 0 || int(item.InventorySlot) >= model.MaxInventorySlots {
			return fmt.Errorf("%s", model.ReasonItemChanged)
		}
		s := inv.Slots[item.InventorySlot]
		if s == nil || s.ItemID != item.ItemID || s.Quantity < item.Quantity {
			return fmt.Errorf("%s", model.ReasonItemChanged)
		}
		if !s.Tradeable {
			return fmt.Errorf("%s", model.ReasonUntradeableItem)
		}
	}
	return nil
}

func removeQuantity(ctx context.Context, repo *db.InventoryRepository, tx pgx.Tx, inv *model.Inventory, item model.TradeSlotItem) error {
	s := inv.Slots[item.InventorySlot]
	remaining := s.Quantity - item.Quantity
	updated := *s
	updated.Quantity = remaining
	if err := repo.SetSlot(ctx, tx, inv.PlayerID, updated); err != nil {
		return err
	}
	if remaining == 0 {
		inv.Slots[item.InventorySlot] = nil
	} else {
		inv.Slots[item.InventorySlot] = &updated
	}
	return nil
}
