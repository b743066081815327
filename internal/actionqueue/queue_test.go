package actionqueue

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

func TestDrain_DispatchesMovementBeforeNonMovement(t *testing.T) {
	q := New()
	q.SetMovement(1, model.MoveRequest{})
	q.SetNonMovement(1, model.NonMoveRequest{Name: "onAttackMob"})

	var order []string
	q.Drain(
		func(playerID int64, req model.MoveRequest) { order = append(order, "move") },
		func(playerID int64, req model.NonMoveRequest) { order = append(order, "nonmove") },
	)

	if len(order) != 2 || order[0] != "move" || order[1] != "nonmove" {
		t.Fatalf("dispatch order = %v, want [move nonmove]", order)
	}
}

func TestDrain_ClearsSlots(t *testing.T) {
	q := New()
	q.SetMovement(1, model.MoveRequest{})
	calls := 0
	q.Drain(func(int64, model.MoveRequest) { calls++ }, nil)
	q.Drain(func(int64, model.MoveRequest) { calls++ }, nil)
	if calls != 1 {
		t.Errorf("move handler called %d times across two drains, want 1", calls)
	}
}

func TestSetMovement_OverwritesSameTick(t *testing.T) {
	q := New()
	q.SetMovement(1, model.MoveRequest{Running: false})
	q.SetMovement(1, model.MoveRequest{Running: true})

	var got model.MoveRequest
	q.Drain(func(playerID int64, req model.MoveRequest) { got = req }, nil)
	if !got.Running {
		t.Error("second SetMovement call did not overwrite the first")
	}
}
