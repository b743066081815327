// Package teleport implements the Home-Teleport Manager: a per-player cast
// timer interruptible by combat or movement, gated by a cooldown.
package teleport

import (
	"time"

	"sync"

	"github.com/tickrealm/core/internal/model"
)

type State int

const (
	Idle State = iota
	Casting
)

type castRecord struct {
	state        State
	castEndTick  int64
	cooldownUntil time.Time
}

// Notifier pushes client-visible events.
type Notifier interface {
	HomeTeleportStart(playerID int64)
	HomeTeleportFailed(playerID int64, reason model.Reason)
	PlayerTeleported(playerID int64, to model.Location)
}

// Manager owns every player's home-teleport cast state.
type Manager struct {
	notify       Notifier
	castDuration int64 // in ticks
	cooldown     time.Duration
	spawnPoint   model.Location
	now          func() time.Time

	mu      sync.Mutex
	records map[int64]*castRecord
}

func New(notify Notifier, castDuration int64, cooldown time.Duration, spawnPoint model.Location) *Manager {
	return &Manager{
		notify:       notify,
		castDuration: castDuration,
		cooldown:     cooldown,
		spawnPoint:   spawnPoint,
		now:          time.Now,
		records:      make(map[int64]*castRecord),
	}
}

func (m *Manager) record(playerID int64) *castRecord {
	r, ok := m.records[playerID]
	if !ok {
		r = &castRecord{}
		m.records[playerID] = r
	}
	return r
}

// RequestCast starts casting if the player is eligible: cooldown expired,
// not in combat, not dueling, not dead, not already casting.
func (m *Manager) RequestCast(playerID int64, currentTick int64, inCombat, inDuel, dead bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.record(playerID)
	switch {
	case r.state == Casting:
		return
	case dead:
		m.notify.HomeTeleportFailed(playerID, model.Reason("PLAYER_DEAD"))
		return
	case inCombat:
		m.notify.HomeTeleportFailed(playerID, model.ReasonInterruptedByCombat)
		return
	case inDuel:
		m.notify.HomeTeleportFailed(playerID, model.Reason("IN_DUEL"))
		return
	case m.now().Before(r.cooldownUntil):
		m.notify.HomeTeleportFailed(playerID, model.Reason("ON_COOLDOWN"))
		return
	}

	r.state = Casting
	r.castEndTick = currentTick + m.castDuration
	m.notify.HomeTeleportStart(playerID)
}

// OnCombatEntered cancels an in-progress cast.
func (m *Manager) OnCombatEntered(playerID int64) {
	m.cancel(playerID, model.ReasonInterruptedByCombat)
}

// OnMoveRequest cancels an in-progress cast.
func (m *Manager) OnMoveRequest(playerID int64) {
	m.cancel(playerID, model.ReasonInterruptedByMovement)
}

func (m *Manager) cancel(playerID int64, reason model.Reason) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[playerID]
	if !ok || r.state != Casting {
		return
	}
	r.state = Idle
	m.notify.HomeTeleportFailed(playerID, reason)
}

// OnTick completes any cast whose end tick has arrived.
func (m *Manager) OnTick(currentTick int64) {
	m.mu.Lock()
	due := make([]int64, 0)
	for playerID, r := range m.records {
		if r.state == Casting && currentTick >= r.castEndTick {
			due = append(due, playerID)
		}
	}
	m.mu.Unlock()

	for _, playerID := range due {
		m.complete(playerID)
	}
}

func (m *Manager) complete(playerID int64) {
	m.mu.Lock()
	r := m.record(playerID)
	r.state = Idle
	r.cooldownUntil = m.now().Add(m.cooldown)
	m.mu.Unlock()

	m.notify.PlayerTeleported(playerID, m.spawnPoint)
}

func (m *Manager) IsCasting(playerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[playerID]
	return ok && r.state == Casting
}
