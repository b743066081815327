// Package actionqueue buffers each player's next movement and non-movement
// intent, draining both at the INPUT phase of the following tick. Newer
// writes within the same tick overwrite older ones (OSRS intent: only the
// last click matters).
package actionqueue

import (
	"sync"

	"github.com/tickrealm/core/internal/model"
)

// MoveHandler dispatches a drained movement slot.
type MoveHandler func(playerID int64, req model.MoveRequest)

// NonMoveHandler dispatches a drained non-movement slot.
type NonMoveHandler func(playerID int64, req model.NonMoveRequest)

// Queue owns the per-player two-slot buffer.
type Queue struct {
	mu      sync.Mutex
	entries map[int64]*model.ActionQueueEntry
}

func New() *Queue {
	return &Queue{entries: make(map[int64]*model.ActionQueueEntry)}
}

func (q *Queue) entry(playerID int64) *model.ActionQueueEntry {
	e, ok := q.entries[playerID]
	if !ok {
		e = &model.ActionQueueEntry{}
		q.entries[playerID] = e
	}
	return e
}

// SetMovement overwrites the player's movement slot.
func (q *Queue) SetMovement(playerID int64, req model.MoveRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entry(playerID).Movement = &req
}

// SetNonMovement overwrites the player's non-movement slot.
func (q *Queue) SetNonMovement(playerID int64, req model.NonMoveRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entry(playerID).NonMovement = &req
}

// Clear drops both slots — called on disconnect, teleport, respawn.
func (q *Queue) Clear(playerID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, playerID)
}

// Drain dispatches and clears every player's pending slots. Intended to run
// at INPUT phase each tick: movement dispatches before non-movement, per
// player, per spec §4.3.
func (q *Queue) Drain(onMove MoveHandler, onNonMove NonMoveHandler) {
	q.mu.Lock()
	entries := q.entries
	q.entries = make(map[int64]*model.ActionQueueEntry, len(entries))
	q.mu.Unlock()

	for playerID, e := range entries {
		if e.Movement != nil && onMove != nil {
			onMove(playerID, *e.Movement)
		}
		if e.NonMovement != nil && onNonMove != nil {
			onNonMove(playerID, *e.NonMovement)
		}
	}
}
