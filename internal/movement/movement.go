// Package movement maintains per-entity tile state: pathing toward a
// target, per-tick stepping, cancellation and resync. Grounded on
// internal/model.TileState's field shape and on
// internal/ai.TickManager's per-tick "advance all registered" loop.
package movement

import (
	"log/slog"
	"sync"

	"github.com/tickrealm/core/internal/model"
)

// Broadcaster notifies AOI subscribers when a path starts or changes.
type Broadcaster interface {
	BroadcastTileMovementStart(entityID int64, path []model.Tile, mode model.MovementMode)
}

// Manager owns the tile-state arena for every moving entity.
type Manager struct {
	broadcast Broadcaster

	mu    sync.Mutex
	state map[int64]*model.TileState
}

func New(broadcast Broadcaster) *Manager {
	return &Manager{
		broadcast: broadcast,
		state:     make(map[int64]*model.TileState),
	}
}

// SyncPlayerPosition force-replaces the cached tile position, used after
// teleport/respawn to prevent stale-start pathing.
func (m *Manager) SyncPlayerPosition(entityID int64, tile model.Tile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[entityID] = &model.TileState{Current: tile}
}

// Cleanup drops all state on disconnect or teleport.
func (m *Manager) Cleanup(entityID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, entityID)
}

// ResetAgilityProgress applies the small death penalty on agility progress.
func (m *Manager) ResetAgilityProgress(entityID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.state[entityID]; ok {
		st.AgilityProgress = 0
	}
}

func (m *Manager) IsRunning(entityID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[entityID]
	return ok && st.Mode == model.Running
}

// MovePlayerToward computes a path whose terminal tile is reachable and
// valid for the requested interaction range, then starts the entity moving.
func (m *Manager) MovePlayerToward(entityID int64, target model.Tile, running bool, meleeRange int32, attackType string) {
	m.mu.Lock()
	st, ok := m.state[entityID]
	if !ok {
		st = &model.TileState{Current: target}
		m.state[entityID] = st
	}
	from := st.Current
	m.mu.Unlock()

	terminal := terminalTile(from, target, meleeRange, attackType)
	path := straightLinePath(from, terminal)

	mode := model.Walking
	if running {
		mode = model.Running
	}

	m.mu.Lock()
	st.Destination = &terminal
	st.Path = path
	st.Mode = mode
	m.mu.Unlock()

	if m.broadcast != nil {
		m.broadcast.BroadcastTileMovementStart(entityID, path, mode)
	}
}

// terminalTile picks the legal terminal tile for the requested interaction
// range (spec §4.2). meleeRange==0 requires landing exactly on the target
// tile. meleeRange==1 with melee attackType requires a cardinal neighbor:
// the one nearest from (Chebyshev), tie-broken West -> East -> South ->
// North. Larger ranges (or non-melee)
// accept any tile within Chebyshev distance meleeRange, so the entity's
// current tile is reused if it already qualifies.
func terminalTile(from, target model.Tile, meleeRange int32, attackType string) model.Tile {
	if meleeRange == 0 {
		return target
	}
	if meleeRange == 1 && attackType == "melee" {
		if from.ChebyshevDistance(target) == 1 && isCardinal(from, target) {
			return from
		}
		neighbors := target.CardinalNeighbors() // West, East, South, North
		best := neighbors[0]
		for _, n := range neighbors[1:] {
			if from.ChebyshevDistance(n) < from.ChebyshevDistance(best) {
				best = n
			}
		}
		return best
	}
	if from.ChebyshevDistance(target) <= meleeRange {
		return from
	}
	return target
}

func isCardinal(a, b model.Tile) bool {
	return (a.X == b.X && (a.Z == b.Z+1 || a.Z == b.Z-1)) ||
		(a.Z == b.Z && (a.X == b.X+1 || a.X == b.X-1))
}

// straightLinePath returns a simple monotone tile-by-tile path from -> to.
// Terrain and obstacle-aware pathfinding is an external collaborator
// (geodata provider); this produces the strictly-monotone path the tile
// state invariant requires.
func straightLinePath(from, to model.Tile) []model.Tile {
	if from == to {
		return nil
	}
	var path []model.Tile
	cur := from
	for cur != to {
		if cur.X < to.X {
			cur.X++
		} else if cur.X > to.X {
			cur.X--
		}
		if cur.Z < to.Z {
			cur.Z++
		} else if cur.Z > to.Z {
			cur.Z--
		}
		path = append(path, cur)
	}
	return path
}

// OnTick advances every moving entity by its mode's tiles-per-tick. On
// arrival, the path terminates and the destination is cleared.
func (m *Manager) OnTick(tick int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, st := range m.state {
		if !st.Moving() {
			continue
		}
		steps := st.Mode.TilesPerTick()
		for i := int32(0); i < steps && len(st.Path) > 0; i++ {
			st.Current = st.Path[0]
			st.Path = st.Path[1:]
		}
		if len(st.Path) == 0 {
			st.Destination = nil
			slog.Debug("entity arrived", "entityID", id, "tile", st.Current)
		}
	}
}

// Current returns the entity's current tile and whether state exists for it.
func (m *Manager) Current(entityID int64) (model.Tile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[entityID]
	if !ok {
		return model.Tile{}, false
	}
	return st.Current, true
}

// Destination returns the entity's current pathing destination, if any.
func (m *Manager) Destination(entityID int64) (model.Tile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[entityID]
	if !ok || st.Destination == nil {
		return model.Tile{}, false
	}
	return *st.Destination, true
}
