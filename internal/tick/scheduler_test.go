package tick

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_PhaseOrdering(t *testing.T) {
	s := New(5 * time.Millisecond)

	var order []Phase
	for _, p := range []Phase{Post, Input, Combat, Movement, Resources} {
		p := p
		s.OnTick(p, func(tick int64) { order = append(order, p) })
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = s.Start(ctx)

	want := []Phase{Input, Movement, Combat, Resources, Post}
	if len(order) < len(want) {
		t.Fatalf("not enough ticks ran: got %v", order)
	}
	for i, p := range want {
		if order[i] != p {
			t.Errorf("order[%d] = %v, want %v", i, order[i], p)
		}
	}
}

func TestScheduler_CurrentTickAdvances(t *testing.T) {
	s := New(5 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	_ = s.Start(ctx)

	if s.CurrentTick() < 2 {
		t.Errorf("CurrentTick() = %d, want >= 2 after 25ms at 5ms period", s.CurrentTick())
	}
}

func TestScheduler_CallbackPanicIsolated(t *testing.T) {
	s := New(5 * time.Millisecond)
	ran := false
	s.OnTick(Input, func(tick int64) { panic("boom") })
	s.OnTick(Post, func(tick int64) { ran = true })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = s.Start(ctx)

	if !ran {
		t.Error("POST callback did not run after INPUT callback panicked")
	}
}
