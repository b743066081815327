package duel

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

type fakeNotifier struct {
	countdownStarted bool
	fightStarted     bool
	completed        map[int64]bool
}

func newFakeNotifier() *fakeNotifier { return &fakeNotifier{completed: map[int64]bool{}} }

func (f *fakeNotifier) DuelRulesUpdated(model.DuelSession)  {}
func (f *fakeNotifier) DuelStakesUpdated(model.DuelSession) {}
func (f *fakeNotifier) DuelFinalConfirm(model.DuelSession)  {}
func (f *fakeNotifier) DuelCountdownStart(model.DuelSession) { f.countdownStarted = true }
func (f *fakeNotifier) DuelCountdownTick(string, int)        {}
func (f *fakeNotifier) DuelFightStart(model.DuelSession)     { f.fightStarted = true }
func (f *fakeNotifier) DuelCompleted(playerID int64, recv, lost []model.TradeSlotItem, won, lostVal int64, forfeit bool) {
	f.completed[playerID] = true
}
func (f *fakeNotifier) DuelCancelled(int64, model.Reason)          {}
func (f *fakeNotifier) DuelOpponentDisconnected(int64, int)        {}
func (f *fakeNotifier) DuelOpponentReconnected(int64)              {}

type fakeSettler struct{ calls int }

func (f *fakeSettler) ExecuteDuelStakeTransfer(winnerID, loserID int64, stakes []model.TradeSlotItem) error {
	f.calls++
	return nil
}

func setup() (*Manager, *fakeNotifier, *fakeSettler) {
	n := newFakeNotifier()
	s := &fakeSettler{}
	m := New(n, s, func(int64, model.SessionKind, int64) {}, func(int64) {}, func(int64, model.Location) {})
	return m, n, s
}

func TestDuel_FullFlowToCountdown(t *testing.T) {
	m, n, _ := setup()
	m.Challenge(1, 2)
	m.AcceptRules(1)
	m.AcceptRules(2)
	m.AcceptStakes(1)
	m.AcceptStakes(2)
	m.AcceptFinal(1, 0)
	m.AcceptFinal(2, 0)

	if !n.countdownStarted {
		t.Fatal("expected countdown to start after both finalConfirm")
	}

	m.OnTick(3)
	if !n.fightStarted {
		t.Fatal("expected fight to start once countdown elapses")
	}
}

func TestDuel_TickOrderingBeforeFight(t *testing.T) {
	m, n, _ := setup()
	m.Challenge(1, 2)
	m.AcceptRules(1)
	m.AcceptRules(2)
	m.AcceptStakes(1)
	m.AcceptStakes(2)
	m.AcceptFinal(1, 0)
	m.AcceptFinal(2, 0) // countdown end = tick 3

	m.OnTick(1)
	if n.fightStarted {
		t.Fatal("fight must not start before countdown end tick")
	}
	m.OnTick(2)
	if n.fightStarted {
		t.Fatal("fight must not start before countdown end tick")
	}
}

func TestDuel_IdempotentSettlement(t *testing.T) {
	m, n, settler := setup()
	m.Challenge(1, 2)
	m.AcceptRules(1)
	m.AcceptRules(2)
	m.AcceptStakes(1)
	m.AcceptStakes(2)
	m.AcceptFinal(1, 0)
	m.AcceptFinal(2, 0)
	m.OnTick(3)

	m.Complete(1, 2, false)
	m.Complete(1, 2, false)
	if settler.calls != 1 {
		t.Fatalf("settle calls = %d, want 1", settler.calls)
	}
	if !n.completed[1] || !n.completed[2] {
		t.Fatal("expected DuelCompleted for both players")
	}
}
