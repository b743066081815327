package intent

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

func TestQueueIntent_AtMostOnePerKind(t *testing.T) {
	m := New(model.IntentAttack, func(int64) (model.Tile, bool) { return model.Tile{}, true }, func(model.PendingIntent) {}, nil, false)

	m.QueueIntent(1, 100, 1, "melee", 0, nil)
	if !m.Has(1) {
		t.Fatal("expected pending intent after queue")
	}
	m.QueueIntent(1, 200, 1, "melee", 0, nil)
	if !m.Has(1) {
		t.Fatal("second queue should still leave exactly one entry")
	}
}

func TestOnTick_FiresOnArrival(t *testing.T) {
	fired := false
	m := New(model.IntentGather, func(int64) (model.Tile, bool) { return model.Tile{X: 1, Z: 0}, true },
		func(model.PendingIntent) { fired = true }, nil, false)

	m.QueueIntent(1, 100, 1, "", 0, nil)
	m.OnTick(1, func(int64) (model.Tile, bool) { return model.Tile{X: 0, Z: 0}, true })

	if !fired {
		t.Error("expected fire on cardinal arrival")
	}
	if m.Has(1) {
		t.Error("intent should be cleared after firing")
	}
}

func TestOnTick_TargetGoneCancelsSilently(t *testing.T) {
	m := New(model.IntentAttack, func(int64) (model.Tile, bool) { return model.Tile{}, false },
		func(model.PendingIntent) { t.Error("must not fire when target is gone") }, nil, false)

	m.QueueIntent(1, 100, 1, "melee", 0, nil)
	m.OnTick(5, func(int64) (model.Tile, bool) { return model.Tile{}, true })

	if m.Has(1) {
		t.Error("intent should be cancelled when target is gone")
	}
}

func TestOnTick_TimesOutAfter20Ticks(t *testing.T) {
	m := New(model.IntentCook, func(int64) (model.Tile, bool) { return model.Tile{X: 50, Z: 50}, true },
		func(model.PendingIntent) { t.Error("must not fire after timeout") }, nil, false)

	m.QueueIntent(1, 100, 1, "", 0, nil)
	m.OnTick(model.IntentTimeoutTicks, func(int64) (model.Tile, bool) { return model.Tile{}, true })

	if m.Has(1) {
		t.Error("intent should be cancelled after timing out")
	}
}

func TestOnTick_RepathsWithOriginalAttackType(t *testing.T) {
	var gotAttackType string
	pather := func(ownerID int64, target model.Tile, meleeRange int32, attackType string) {
		gotAttackType = attackType
	}
	targetTile := model.Tile{X: 5, Z: 5}
	m := New(model.IntentAttack, func(int64) (model.Tile, bool) { return targetTile, true },
		func(model.PendingIntent) { t.Error("must not fire while out of range") }, pather, false)

	m.QueueIntent(1, 100, 1, "melee", 0, nil)
	// Owner is far from the target, so this tick must re-path rather than fire.
	m.OnTick(1, func(int64) (model.Tile, bool) { return model.Tile{X: 10, Z: 10}, true })

	if gotAttackType != "melee" {
		t.Errorf("Pather attackType = %q, want %q (the attackType QueueIntent was called with)", gotAttackType, "melee")
	}
}

func TestFollow_NeverFiresWhileSticky(t *testing.T) {
	m := New(model.IntentFollow, func(int64) (model.Tile, bool) { return model.Tile{}, true },
		func(model.PendingIntent) { t.Error("follow must never fire") }, nil, true)

	m.QueueIntent(1, 100, 1, "", 0, nil)
	for tick := int64(1); tick < 100; tick++ {
		m.OnTick(tick, func(int64) (model.Tile, bool) { return model.Tile{}, true })
	}
	if !m.Has(1) {
		t.Error("follow intent should remain queued indefinitely while target is alive")
	}
}
