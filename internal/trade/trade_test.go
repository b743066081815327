package trade

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

type fakeNotifier struct {
	updated    []model.TradeSession
	confirm    []model.TradeSession
	completed  map[int64][]model.TradeSlotItem
	cancelled  map[int64]model.Reason
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{completed: map[int64][]model.TradeSlotItem{}, cancelled: map[int64]model.Reason{}}
}

func (f *fakeNotifier) TradeIncoming(toPlayerID, fromPlayerID int64) {}
func (f *fakeNotifier) TradeStarted(session model.TradeSession)      {}
func (f *fakeNotifier) TradeUpdated(session model.TradeSession)      { f.updated = append(f.updated, session) }
func (f *fakeNotifier) TradeConfirmScreen(session model.TradeSession) { f.confirm = append(f.confirm, session) }
func (f *fakeNotifier) TradeCompleted(playerID int64, received []model.TradeSlotItem) {
	f.completed[playerID] = received
}
func (f *fakeNotifier) TradeCancelled(playerID int64, reason model.Reason) { f.cancelled[playerID] = reason }

type fakeSwapper struct {
	called bool
}

func (f *fakeSwapper) ExecuteTradeSwap(s model.TradeSession) ([]model.TradeSlotItem, []model.TradeSlotItem, error) {
	f.called = true
	return s.Recipient.OfferedItems, s.Initiator.OfferedItems, nil
}

func setup() (*Manager, *fakeNotifier, *fakeSwapper) {
	n := newFakeNotifier()
	sw := &fakeSwapper{}
	busy := map[int64]bool{}
	m := New(n, sw,
		func(pid int64, kind model.SessionKind, peer int64) {},
		func(pid int64) {},
		func(pid int64) bool { return busy[pid] })
	return m, n, sw
}

func TestTrade_AcceptanceResetsOnMutation(t *testing.T) {
	m, n, _ := setup()
	m.RespondToTradeRequest(1, 2, true)
	m.SetAcceptance(1, true)
	m.SetAcceptance(2, true) // -> confirming

	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: 1})

	last := n.updated[len(n.updated)-1]
	if last.Initiator.Accepted || last.Recipient.Accepted {
		t.Fatal("acceptance flags must reset on mutation")
	}
	if last.Status != model.TradeActive {
		t.Fatalf("status = %v, want active after mutation during confirming", last.Status)
	}
}

func TestTrade_AddItemRejectsInvalidQuantity(t *testing.T) {
	m, n, _ := setup()
	m.RespondToTradeRequest(1, 2, true)

	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: -5})
	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: 0})
	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: model.MaxTradeQuantity + 1})

	if len(n.updated) != 0 {
		t.Fatalf("out-of-range quantity must never mutate or notify, got %d updates", len(n.updated))
	}
}

func TestTrade_SetQuantityRejectsInvalidQuantity(t *testing.T) {
	m, n, _ := setup()
	m.RespondToTradeRequest(1, 2, true)
	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: 5})
	n.updated = nil

	m.SetQuantity(1, 0, -1)

	if len(n.updated) != 0 {
		t.Fatalf("out-of-range quantity must never mutate or notify, got %d updates", len(n.updated))
	}
}

func TestTrade_BothAcceptTwiceCompletesSwap(t *testing.T) {
	m, n, sw := setup()
	m.RespondToTradeRequest(1, 2, true)
	m.AddItem(1, model.TradeSlotItem{InventorySlot: 0, ItemID: 10, Quantity: 10})
	m.AddItem(2, model.TradeSlotItem{InventorySlot: 0, ItemID: 20, Quantity: 1})

	m.SetAcceptance(1, true)
	m.SetAcceptance(2, true) // -> confirming
	m.SetAcceptance(1, true)
	m.SetAcceptance(2, true) // -> swap

	if !sw.called {
		t.Fatal("expected swap execution after both accept twice")
	}
	if _, ok := n.completed[1]; !ok {
		t.Fatal("expected TradeCompleted for initiator")
	}
}
