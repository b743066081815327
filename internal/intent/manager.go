// Package intent implements the shared "walk up to target, then act"
// state-machine shape behind all six pending-intent kinds (attack, gather,
// cook, trade, duelChallenge, follow). Each kind gets its own Manager
// instance so that "at most one pending intent per kind per player"
// (spec §3) holds independently across kinds.
package intent

import (
	"sync"

	"github.com/tickrealm/core/internal/model"
)

// TargetLocator resolves a target's current tile and liveness, so the
// manager can detect "target gone" and re-path on "target moved".
type TargetLocator func(targetID int64) (tile model.Tile, alive bool)

// Fire is invoked when a queued intent's owner reaches a valid interaction
// tile; it performs the kind-specific terminal action (emit an event, or
// invoke a stored callback for trade/duelChallenge).
type Fire func(i model.PendingIntent)

// Pather re-paths the owner toward a tile via the Tile Movement Manager.
type Pather func(ownerID int64, target model.Tile, meleeRange int32, attackType string)

// Manager owns one kind's playerId -> PendingIntent map.
type Manager struct {
	kind    model.IntentKind
	locate  TargetLocator
	fire    Fire
	path    Pather
	sticky  bool // Follow: re-paths whenever the target's tile changes, never fires a terminal action

	mu      sync.Mutex
	pending map[int64]*model.PendingIntent
}

func New(kind model.IntentKind, locate TargetLocator, fire Fire, path Pather, sticky bool) *Manager {
	return &Manager{
		kind:    kind,
		locate:  locate,
		fire:    fire,
		path:    path,
		sticky:  sticky,
		pending: make(map[int64]*model.PendingIntent),
	}
}

// QueueIntent replaces any existing intent of this kind for the player.
func (m *Manager) QueueIntent(ownerID, targetID int64, meleeRange int32, attackType string, createdTick int64, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[ownerID] = &model.PendingIntent{
		Kind:          m.kind,
		OwnerPlayerID: ownerID,
		TargetID:      targetID,
		CreatedAtTick: createdTick,
		MeleeRange:    meleeRange,
		AttackType:    attackType,
		Payload:       payload,
	}
}

// Cancel silently drops the player's pending intent of this kind.
func (m *Manager) Cancel(ownerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, ownerID)
}

// Has reports whether the player holds a pending intent of this kind.
func (m *Manager) Has(ownerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[ownerID]
	return ok
}

// OnDisconnect clears any pending intent for the departing player.
func (m *Manager) OnDisconnect(ownerID int64) {
	m.Cancel(ownerID)
}

// OnTick advances every queued intent: fires it if the owner has reached a
// valid interaction tile, drops it if the target is gone or timed out,
// otherwise re-paths toward a moved target.
func (m *Manager) OnTick(tick int64, ownerTile func(ownerID int64) (model.Tile, bool)) {
	m.mu.Lock()
	due := make([]*model.PendingIntent, 0, len(m.pending))
	for owner, pi := range m.pending {
		due = append(due, pi)
		_ = owner
	}
	m.mu.Unlock()

	for _, pi := range due {
		m.tickOne(tick, pi, ownerTile)
	}
}

func (m *Manager) tickOne(tick int64, pi *model.PendingIntent, ownerTile func(int64) (model.Tile, bool)) {
	targetTile, alive := m.locate(pi.TargetID)
	if !alive {
		m.Cancel(pi.OwnerPlayerID)
		return
	}
	if !m.sticky && tick-pi.CreatedAtTick >= model.IntentTimeoutTicks {
		m.Cancel(pi.OwnerPlayerID)
		return
	}

	oTile, ok := ownerTile(pi.OwnerPlayerID)
	if !ok {
		m.Cancel(pi.OwnerPlayerID)
		return
	}

	inRange := oTile.ChebyshevDistance(targetTile) <= pi.MeleeRange
	if pi.MeleeRange == 1 {
		inRange = oTile.ChebyshevDistance(targetTile) == 1
	}

	if inRange {
		if m.sticky {
			return // Follow: never fires, just stays queued while in range
		}
		m.fire(*pi)
		m.Cancel(pi.OwnerPlayerID)
		return
	}

	if targetTile != pi.LastPathedTile {
		pi.LastPathedTile = targetTile
		if m.path != nil {
			m.path(pi.OwnerPlayerID, targetTile, pi.MeleeRange, pi.AttackType)
		}
	}
}

// CancelAllKinds cancels a player's intent across several managers at once
// (spec: moving elsewhere cancels the other pending-intent kinds too).
func CancelAllKinds(ownerID int64, managers ...*Manager) {
	for _, mgr := range managers {
		mgr.Cancel(ownerID)
	}
}
