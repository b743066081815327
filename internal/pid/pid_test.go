package pid

import "testing"

func TestAssign_LowPIDFirst(t *testing.T) {
	m := New(1, 2)
	p1, ok := m.Assign(100)
	if !ok || p1 != 0 {
		t.Fatalf("first assign = (%d,%v), want (0,true)", p1, ok)
	}
	p2, ok := m.Assign(200)
	if !ok || p2 != 1 {
		t.Fatalf("second assign = (%d,%v), want (1,true)", p2, ok)
	}
}

func TestAssign_Idempotent(t *testing.T) {
	m := New(1, 2)
	p1, _ := m.Assign(100)
	p2, _ := m.Assign(100)
	if p1 != p2 {
		t.Errorf("re-assigning same player changed PID: %d != %d", p1, p2)
	}
}

func TestReshuffle_Deterministic(t *testing.T) {
	players := []int64{1, 2, 3, 4, 5}

	build := func() *Manager {
		m := New(42, 7)
		for _, p := range players {
			m.Assign(p)
		}
		m.Reshuffle()
		return m
	}

	a := build()
	b := build()

	for _, p := range players {
		pa, _ := a.PIDOf(p)
		pb, _ := b.PIDOf(p)
		if pa != pb {
			t.Errorf("player %d: pid %d != %d across identical seeds", p, pa, pb)
		}
	}
}

func TestNextReshuffleInterval_InBounds(t *testing.T) {
	m := New(42, 7)
	for i := 0; i < 50; i++ {
		got := m.NextReshuffleInterval()
		if got < 100 || got > 150 {
			t.Fatalf("NextReshuffleInterval() = %d, want in [100,150]", got)
		}
	}
}

func TestRelease_FreesSlot(t *testing.T) {
	m := New(1, 2)
	m.Assign(100)
	m.Release(100)
	if _, ok := m.PIDOf(100); ok {
		t.Errorf("released player still has a PID")
	}
	pid, ok := m.Assign(200)
	if !ok || pid != 0 {
		t.Errorf("Assign after release = (%d,%v), want reuse of pid 0", pid, ok)
	}
}
