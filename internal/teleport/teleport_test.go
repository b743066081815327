package teleport

import (
	"testing"
	"time"

	"github.com/tickrealm/core/internal/model"
)

type recording struct {
	started    []int64
	failed     map[int64]model.Reason
	teleported map[int64]model.Location
}

func newRecording() *recording {
	return &recording{failed: map[int64]model.Reason{}, teleported: map[int64]model.Location{}}
}

func (r *recording) HomeTeleportStart(playerID int64)                  { r.started = append(r.started, playerID) }
func (r *recording) HomeTeleportFailed(playerID int64, reason model.Reason) { r.failed[playerID] = reason }
func (r *recording) PlayerTeleported(playerID int64, to model.Location)     { r.teleported[playerID] = to }

func TestHomeTeleport_InterruptedByMovement_NoCooldown(t *testing.T) {
	rec := newRecording()
	m := New(rec, 10, 15*time.Minute, model.Location{})

	m.RequestCast(1, 0, false, false, false)
	if len(rec.started) != 1 {
		t.Fatalf("expected cast to start, got %v", rec.started)
	}

	m.OnMoveRequest(1)
	if rec.failed[1] != model.ReasonInterruptedByMovement {
		t.Fatalf("failed reason = %q, want %q", rec.failed[1], model.ReasonInterruptedByMovement)
	}

	// Cooldown must not be set: a fresh cast should succeed immediately.
	m.RequestCast(1, 1, false, false, false)
	if len(rec.started) != 2 {
		t.Fatal("retry after movement-interrupt should succeed immediately")
	}
}

func TestHomeTeleport_CompletesAtCastEndTick(t *testing.T) {
	rec := newRecording()
	m := New(rec, 10, 15*time.Minute, model.Location{X: 1, Y: 2, Z: 3})
	m.RequestCast(1, 0, false, false, false)

	m.OnTick(9)
	if _, ok := rec.teleported[1]; ok {
		t.Fatal("teleport fired before cast-end tick")
	}
	m.OnTick(10)
	if _, ok := rec.teleported[1]; !ok {
		t.Fatal("teleport did not fire at cast-end tick")
	}
}

func TestHomeTeleport_CombatInterrupt(t *testing.T) {
	rec := newRecording()
	m := New(rec, 10, 15*time.Minute, model.Location{})
	m.RequestCast(1, 0, false, false, false)
	m.OnCombatEntered(1)

	if rec.failed[1] != model.ReasonInterruptedByCombat {
		t.Fatalf("failed reason = %q, want %q", rec.failed[1], model.ReasonInterruptedByCombat)
	}
	if m.IsCasting(1) {
		t.Error("player should not be casting after combat interrupt")
	}
}
