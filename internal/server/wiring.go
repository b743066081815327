package server

import (
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

// Dependencies bundles everything a cmd/ entrypoint builds once at startup
// (repositories, the economic engine, a terrain source) that NewWorld wires
// into the in-memory managers.
type Dependencies struct {
	Users    *db.UserRepository
	Bans     *db.BanRepository
	Entities *db.EntityRepository
	Settings *db.ConfigRepository
	Econ     *econ.Engine

	Terrain    TerrainHeightProvider
	SpawnPoint model.Location

	PIDSeed1, PIDSeed2 uint64
}

// NewWorld constructs every manager and wires them to the World, which
// satisfies the Notifier/Broadcaster/Disconnector/Settler/Swapper/Pather
// collaborator interfaces each manager needs, then registers every tick
// callback in the ordering the duel countdown and movement invariants
// require.
func NewWorld(cfg config.Config, deps Dependencies) *World {
	w := &World{
		Config:     cfg,
		Users:      deps.Users,
		Bans:       deps.Bans,
		Entities:   deps.Entities,
		Settings:   deps.Settings,
		Terrain:    deps.Terrain,
		SpawnPoint: deps.SpawnPoint,
		Econ:       deps.Econ,
		sockets:    make(map[string]*model.Socket),
		players:    make(map[int64]*model.Player),
		mobs:       make(map[int64]*model.Mob),
		fires:      make(map[int64]*model.Fire),
	}

	w.Tick = tick.New(cfg.TickPeriod)
	w.AOI = aoi.New(cfg.AOICellSize, cfg.AOIViewDistance)
	w.Broadcast = broadcast.New(w.AOI)
	w.Movement = movement.New(w)
	w.ActionQueue = actionqueue.New()
	w.Sessions = session.New(w.onSessionClosed)
	w.SocketMgr = socketmgr.New(w, cfg.WSPingIntervalSec, cfg.WSPingMissTolerance, cfg.WSPingGraceMs)
	w.PID = pid.New(deps.PIDSeed1, deps.PIDSeed2)
	w.nextReshuffleTick = w.PID.NextReshuffleInterval()
	w.Teleport = teleport.New(w, ticksFor(cfg.HomeTeleportCastSec, cfg.TickPeriod),
		time.Duration(cfg.HomeTeleportCooldownMin)*time.Minute, deps.SpawnPoint)
	w.Events = NewEventBridge(w.Broadcast)
	w.Router = router.New()

	w.Trade = trade.New(w, w.Econ, w.openSession, w.Sessions.Close, w.Sessions.HasActive)
	w.Duel = duel.New(w, w.Econ, w.openSession, w.Sessions.Close, w.PlayerTeleported)

	w.Attack = intent.New(model.IntentAttack, w.locateEntity, w.fireAttack, w.pathTo, false)
	w.Gather = intent.New(model.IntentGather, w.locateEntity, w.fireGather, w.pathTo, false)
	w.Cook = intent.New(model.IntentCook, w.locateEntity, w.fireCook, w.pathTo, false)
	w.TradeIntent = intent.New(model.IntentTrade, w.locateEntity, w.fireTradeRequest, w.pathTo, false)
	w.DuelChallenge = intent.New(model.IntentDuelChallenge, w.locateEntity, w.fireDuelChallenge, w.pathTo, false)
	w.Follow = intent.New(model.IntentFollow, w.locateEntity, nil, w.pathTo, true)

	w.registerTickCallbacks()
	return w
}

// ticksFor converts a whole-second duration into a tick count at period,
// rounding up so a cast never completes a tick early.
func ticksFor(seconds int, period time.Duration) int64 {
	if period <= 0 {
		return int64(seconds)
	}
	total := time.Duration(seconds) * time.Second
	return int64((total + period - 1) / period)
}

// openSession adapts session.Manager.Open (which needs the current tick) to
// the func(playerID, kind, peerID) shape trade.Manager and duel.Manager call.
func (w *World) openSession(playerID int64, kind model.SessionKind, peerID int64) {
	w.Sessions.Open(playerID, kind, peerID, w.Tick.CurrentTick())
}

// onSessionClosed runs whenever Sessions.Open force-closes a player's prior
// interaction session, tearing down the kind-specific state that owned it.
func (w *World) onSessionClosed(closed model.InteractionSession) {
	switch closed.Kind {
	case model.SessionTrade:
		w.Trade.Cancel(closed.OwnerID, model.ReasonInterfaceOpen)
	case model.SessionDuel:
		w.Duel.Cancel(closed.OwnerID, model.ReasonInterfaceOpen)
	}
}

// fireAttack, fireGather and fireCook hand a completed pending intent off to
// the external combat/resource subsystems (spec §1 Non-goals) via the Event
// Bridge; the core's job ends at "player is now in range."
func (w *World) fireAttack(i model.PendingIntent) {
	attackType, _ := i.Payload.(string)
	w.Events.publishCombatAttackRequest(i.OwnerPlayerID, i.TargetID, attackType)
}

func (w *World) fireGather(i model.PendingIntent) {
	w.Events.publishGatherBegin(i.OwnerPlayerID, i.TargetID)
}

func (w *World) fireCook(i model.PendingIntent) {
	fishSlot, _ := i.Payload.(int32)
	w.Events.publishCookingRequest(i.OwnerPlayerID, i.TargetID, fishSlot)
}

// fireTradeRequest and fireDuelChallenge call straight into the owning
// manager: unlike combat/resources, trade and duels are this core's own
// subsystems.
func (w *World) fireTradeRequest(i model.PendingIntent) {
	if err := w.Trade.CreateTradeRequest(i.OwnerPlayerID, i.TargetID); err != nil {
		w.notifyOne(i.OwnerPlayerID, "tradeCancelled", map[string]any{"reason": err.Error()})
	}
}

func (w *World) fireDuelChallenge(i model.PendingIntent) {
	w.Duel.Challenge(i.OwnerPlayerID, i.TargetID)
}

// registerTickCallbacks wires every manager into the scheduler's five ordered
// phases. The duel countdown->fighting transition runs first in INPUT so a
// fight that starts this tick can authorize arena movement the Action Queue
// drains a moment later.
func (w *World) registerTickCallbacks() {
	w.Tick.OnTick(tick.Input, func(t int64) {
		w.Duel.OnTick(t)
		w.ActionQueue.Drain(w.onMovementRequest, w.onNonMovementRequest)
		w.Teleport.OnTick(t)
	})

	w.Tick.OnTick(tick.Movement, func(t int64) {
		w.Movement.OnTick(t)
		w.resyncAOI()
	})

	w.Tick.OnTick(tick.Combat, func(t int64) {
		w.Attack.OnTick(t, w.PlayerTile)
		w.Follow.OnTick(t, w.PlayerTile)
	})

	w.Tick.OnTick(tick.Resources, func(t int64) {
		w.Gather.OnTick(t, w.PlayerTile)
		w.Cook.OnTick(t, w.PlayerTile)
		w.TradeIntent.OnTick(t, w.PlayerTile)
		w.DuelChallenge.OnTick(t, w.PlayerTile)
		w.sweepExpiredFires(time.Now())
	})

	w.Tick.OnTick(tick.Post, func(t int64) {
		w.maybeReshufflePID(t)
		w.Broadcast.Flush()
	})
}

// onMovementRequest applies a drained Action Queue movement slot: cancels
// whatever other pending-intent kinds the player held (spec: walking
// somewhere new abandons a queued "walk up and act"), then re-paths.
func (w *World) onMovementRequest(playerID int64, req model.MoveRequest) {
	intent.CancelAllKinds(playerID, w.Attack, w.Gather, w.Cook, w.TradeIntent, w.DuelChallenge, w.Follow)
	w.Teleport.OnMoveRequest(playerID)
	target := model.Tile{X: req.TargetPos.X, Z: req.TargetPos.Z}
	if restricted, inDuel := w.Duel.InArenaBounds(playerID, target); inDuel && restricted {
		w.notifyOne(playerID, "showToast", map[string]any{"text": string(model.ReasonInterfaceOpen)})
		return
	}
	w.Movement.MovePlayerToward(playerID, target, req.Running, req.MeleeRange, req.AttackType)
}

// onNonMovementRequest is the seam a packet handler's "already in range, act
// now" branch and a timed-out/failed intent both flow through; nothing in
// this core owns a non-movement slot payload today; kept for the Action
// Queue's drain contract.
func (w *World) onNonMovementRequest(playerID int64, req model.NonMoveRequest) {
	_ = playerID
	_ = req
}

// resyncAOI applies tile-movement progress to each moving player's AOI cell
// and socket subscriptions, translating cell enter/exit deltas into
// entityAdded/entityRemoved notices (spec: AOI correctness property).
func (w *World) resyncAOI() {
	w.mu.RLock()
	players := make([]*model.Player, 0, len(w.players))
	for _, p := range w.players {
		players = append(players, p)
	}
	w.mu.RUnlock()

	for _, p := range players {
		tile, ok := w.Movement.Current(p.ID)
		if !ok {
			continue
		}
		loc := p.Location()
		if loc.X == tile.X && loc.Z == tile.Z {
			continue
		}
		loc.X, loc.Z = tile.X, tile.Z
		loc = w.clampToTerrain(loc)
		p.SetLocation(loc)

		w.AOI.UpdateEntityPosition(p.ID, loc.X, loc.Z)

		sid, ok := w.Broadcast.GetPlayerSocket(p.ID)
		if !ok {
			continue
		}
		delta := w.AOI.UpdatePlayerSubscriptions(loc.X, loc.Z, sid)
		w.applyAOIDelta(sid, delta)
	}
}

func (w *World) applyAOIDelta(socketID string, delta aoi.Delta) {
	for _, key := range delta.Entered {
		for _, id := range w.AOI.EntitiesInCell(key) {
			w.Broadcast.SendToSocket(socketID, "entityAdded", w.entitySnapshot(id))
		}
	}
	for _, key := range delta.Exited {
		for _, id := range w.AOI.EntitiesInCell(key) {
			w.Broadcast.SendToSocket(socketID, "entityRemoved", map[string]any{"id": id})
		}
	}
}

// entitySnapshot renders the minimal payload an entityAdded notice carries
// for id, looking it up as a player first, then a mob.
func (w *World) entitySnapshot(id int64) map[string]any {
	if p, ok := w.Player(id); ok {
		return map[string]any{"id": id, "kind": "player", "name": p.Name, "location": p.Location()}
	}
	if m, ok := w.Mob(id); ok {
		return map[string]any{"id": id, "kind": "mob", "type": m.Type, "location": m.Location()}
	}
	return map[string]any{"id": id}
}
