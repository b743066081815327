// Package server aggregates every gameplay subsystem into a single
// constructor-injected World, replacing the teacher's package-level
// singletons (world.Instance(), combat.AttackStanceMgr) with an explicit
// struct threaded through tick callbacks and packet handlers — the
// non-singleton shape internal/ai.TickManager already demonstrates, applied
// to the whole runtime.
package server

import (
	"sync"
	"time"

	"github.com/tickrealm/core/internal/actionqueue"
	"github.com/tickrealm/core/internal/aoi"
	"github.com/tickrealm/core/internal/broadcast"
	"github.com/tickrealm/core/internal/config"
	"github.com/tickrealm/core/internal/db"
	"github.com/tickrealm/core/internal/econ"
	"github.com/tickrealm/core/internal/game/duel"
	"github.com/tickrealm/core/internal/intent"
	"github.com/tickrealm/core/internal/model"
	"github.com/tickrealm/core/internal/movement"
	"github.com/tickrealm/core/internal/pid"
	"github.com/tickrealm/core/internal/router"
	"github.com/tickrealm/core/internal/session"
	"github.com/tickrealm/core/internal/socketmgr"
	"github.com/tickrealm/core/internal/teleport"
	"github.com/tickrealm/core/internal/tick"
	"github.com/tickrealm/core/internal/trade"
)

// World owns every entity arena and every gameplay manager. There is exactly
// one per running server; tests construct a fresh one per scenario.
type World struct {
	Config config.Config

	Users    *db.UserRepository
	Bans     *db.BanRepository
	Entities *db.EntityRepository
	Settings *db.ConfigRepository

	Terrain   TerrainHeightProvider
	Events    *EventBridge
	SpawnPoint model.Location

	Tick        *tick.Scheduler
	Broadcast   *broadcast.Manager
	AOI         *aoi.Manager
	Movement    *movement.Manager
	ActionQueue *actionqueue.Queue
	Sessions    *session.Manager
	SocketMgr   *socketmgr.Manager
	PID         *pid.Manager
	Teleport    *teleport.Manager
	Trade       *trade.Manager
	Duel        *duel.Manager
	Router      *router.Router
	Econ        *econ.Engine

	Attack        *intent.Manager
	Gather        *intent.Manager
	Cook          *intent.Manager
	TradeIntent   *intent.Manager
	DuelChallenge *intent.Manager
	Follow        *intent.Manager

	mu      sync.RWMutex
	sockets map[string]*model.Socket
	players map[int64]*model.Player
	mobs    map[int64]*model.Mob
	fires   map[int64]*model.Fire

	nextReshuffleTick int64
}

// AddSocket registers a newly-accepted connection.
func (w *World) AddSocket(s *model.Socket) {
	w.mu.Lock()
	w.sockets[s.ID] = s
	w.mu.Unlock()
	w.Broadcast.RegisterSocket(s)
	w.SocketMgr.Register(s)
}

func (w *World) Socket(id string) (*model.Socket, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.sockets[id]
	return s, ok
}

// AddPlayer spawns a player entity owned by socketID and places it in the AOI grid.
func (w *World) AddPlayer(p *model.Player) {
	w.mu.Lock()
	w.players[p.ID] = p
	w.mu.Unlock()

	loc := p.Location()
	w.Movement.SyncPlayerPosition(p.ID, model.Tile{X: loc.X, Z: loc.Z})
	w.AOI.UpdateEntityPosition(p.ID, loc.X, loc.Z)
	w.PID.Assign(p.ID)
}

func (w *World) Player(id int64) (*model.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	return p, ok
}

func (w *World) AddMob(m *model.Mob) {
	w.mu.Lock()
	w.mobs[m.ID] = m
	w.mu.Unlock()
	loc := m.Location()
	w.AOI.UpdateEntityPosition(m.ID, loc.X, loc.Z)
}

func (w *World) Mob(id int64) (*model.Mob, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.mobs[id]
	return m, ok
}

// AddFire registers a fire lit by the external firemaking subsystem so the
// cooking source registry can resolve it by id (spec: cooking source
// resolution prefers the fire registry over range entities).
func (w *World) AddFire(f *model.Fire) {
	w.mu.Lock()
	w.fires[f.ID] = f
	w.mu.Unlock()
	w.AOI.UpdateEntityPosition(f.ID, f.Location.X, f.Location.Z)
	w.Broadcast.SendToAOI(f.ID, "entityAdded", map[string]any{"id": f.ID, "kind": "fire", "location": f.Location}, "")
}

func (w *World) Fire(id int64) (*model.Fire, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	f, ok := w.fires[id]
	return f, ok
}

// maybeReshufflePID reshuffles processing-order PIDs once the deterministic
// seeded interval (100-150 ticks) elapses, preventing any one player from
// being permanently last in tick processing order (spec §3).
func (w *World) maybeReshufflePID(tick int64) {
	if tick < w.nextReshuffleTick {
		return
	}
	w.PID.Reshuffle()
	w.nextReshuffleTick = tick + w.PID.NextReshuffleInterval()
}

// sweepExpiredFires removes every fire whose duration has elapsed, run once
// per tick alongside the Cook intent manager.
func (w *World) sweepExpiredFires(now time.Time) {
	w.mu.Lock()
	var expired []int64
	for id, f := range w.fires {
		if f.Expired(now) {
			delete(w.fires, id)
			expired = append(expired, id)
		}
	}
	w.mu.Unlock()

	for _, id := range expired {
		w.AOI.RemoveEntity(id)
		w.Broadcast.SendToAll("entityRemoved", map[string]any{"id": id}, "")
	}
}

// removePlayer tears down every piece of per-player state. Called on
// disconnect, never directly from a packet handler.
func (w *World) removePlayer(playerID int64) {
	w.mu.Lock()
	delete(w.players, playerID)
	w.mu.Unlock()

	w.Movement.Cleanup(playerID)
	w.ActionQueue.Clear(playerID)
	w.Sessions.OnPlayerDisconnect(playerID)
	w.AOI.RemoveEntity(playerID)
	w.PID.Release(playerID)
	intent.CancelAllKinds(playerID, w.Attack, w.Gather, w.Cook, w.TradeIntent, w.DuelChallenge, w.Follow)
	w.Trade.OnPlayerDisconnect(playerID)
	w.Duel.OnPlayerDisconnect(playerID, w.Config.WSPingGraceMs)

	w.Broadcast.SendToAll("entityRemoved", map[string]any{"id": playerID}, "")
}

// Disconnect satisfies socketmgr.Disconnector: evicts socketID, unbinding and
// tearing down whatever player it owned.
func (w *World) Disconnect(socketID string, closeCode int) {
	w.mu.Lock()
	s, ok := w.sockets[socketID]
	if ok {
		delete(w.sockets, socketID)
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	w.Broadcast.UnregisterSocket(socketID)
	w.AOI.RemoveSubscriber(socketID)
	_ = s.Close()

	if playerID := s.BoundPlayerID(); playerID != 0 {
		w.removePlayer(playerID)
	}
	_ = closeCode
}

// BroadcastTileMovementStart satisfies movement.Broadcaster.
func (w *World) BroadcastTileMovementStart(entityID int64, path []model.Tile, mode model.MovementMode) {
	w.Broadcast.SendToAOI(entityID, "tileMovementStart", map[string]any{
		"entityId": entityID,
		"path":     path,
		"running":  mode == model.Running,
	}, "")
}

// PlayerTile resolves a player's current tile for the intent managers'
// Pather/TargetLocator callbacks.
func (w *World) PlayerTile(playerID int64) (model.Tile, bool) {
	if _, ok := w.Player(playerID); !ok {
		return model.Tile{}, false
	}
	return w.Movement.Current(playerID)
}

// locateEntity resolves any entity's tile and liveness, used as a
// intent.TargetLocator for kinds that can target a player, a mob, or a lit
// fire. The fire registry is checked first: a fire id never collides with a
// player/mob id space in practice, but the design gives it precedence.
func (w *World) locateEntity(id int64) (model.Tile, bool) {
	if f, ok := w.Fire(id); ok {
		if !f.Active {
			return model.Tile{}, false
		}
		return model.Tile{X: f.Location.X, Z: f.Location.Z}, true
	}
	if m, ok := w.Mob(id); ok {
		if !m.Alive() {
			return model.Tile{}, false
		}
		loc := m.Location()
		return model.Tile{X: loc.X, Z: loc.Z}, true
	}
	if p, ok := w.Player(id); ok {
		if p.Dead {
			return model.Tile{}, false
		}
		return w.PlayerTile(p.ID)
	}
	return model.Tile{}, false
}

func (w *World) pathTo(ownerID int64, target model.Tile, meleeRange int32, attackType string) {
	w.Movement.MovePlayerToward(ownerID, target, false, meleeRange, attackType)
}
