package aoi

import "testing"

func TestUpdatePlayerSubscriptions_EntersExitsOnMove(t *testing.T) {
	m := New(50, 1) // 3x3 cells around the player

	d1 := m.UpdatePlayerSubscriptions(0, 0, "sock1")
	if len(d1.Entered) != 9 || len(d1.Exited) != 0 {
		t.Fatalf("first update entered=%d exited=%d, want 9/0", len(d1.Entered), len(d1.Exited))
	}

	// Move far enough to shift the 3x3 window entirely.
	d2 := m.UpdatePlayerSubscriptions(1000, 1000, "sock1")
	if len(d2.Entered) != 9 || len(d2.Exited) != 9 {
		t.Fatalf("far move entered=%d exited=%d, want 9/9", len(d2.Entered), len(d2.Exited))
	}
}

func TestCanPlayerSeeEntity_TrueWithinCell(t *testing.T) {
	m := New(50, 1)
	m.UpdatePlayerSubscriptions(0, 0, "sock1")
	m.UpdateEntityPosition(42, 10, 10)

	if !m.CanPlayerSeeEntity("sock1", 42) {
		t.Error("expected entity in subscribed cell to be visible")
	}
}

func TestUpdateEntityPosition_MovesBetweenCells(t *testing.T) {
	m := New(50, 0)
	changed := m.UpdateEntityPosition(1, 0, 0)
	if !changed {
		t.Fatal("first placement should report changed")
	}
	changed = m.UpdateEntityPosition(1, 1, 1)
	if changed {
		t.Error("move within same cell should report unchanged")
	}
	changed = m.UpdateEntityPosition(1, 500, 500)
	if !changed {
		t.Error("move to a distant cell should report changed")
	}
}

func TestRemoveSubscriber_ClearsAllCells(t *testing.T) {
	m := New(50, 1)
	m.UpdatePlayerSubscriptions(0, 0, "sock1")
	m.RemoveSubscriber("sock1")
	m.UpdateEntityPosition(1, 0, 0)
	if m.CanPlayerSeeEntity("sock1", 1) {
		t.Error("removed subscriber should no longer see entities")
	}
}
