package server

import (
	"log/slog"

	"github.com/tickrealm/core/internal/broadcast"
	"github.com/tickrealm/core/internal/events"
)

// EventBridge is the Event Bridge component (spec §2.13/§4.12): it
// subscribes to internal world events and maps each to either an outgoing
// packet or a log line for the external subsystem (combat, resource
// gathering, inventory) that would otherwise consume it. Those subsystems
// are out of the core's scope (spec §1); the bridge still emits their
// events so a future subscriber can be wired in at this single seam
// without touching any pending-intent or transaction call site.
type EventBridge struct {
	bus       *events.Bus
	broadcast *broadcast.Manager
}

func NewEventBridge(broadcast *broadcast.Manager) *EventBridge {
	eb := &EventBridge{bus: events.NewBus(), broadcast: broadcast}
	events.Subscribe(eb.bus, eb.onPlayerReady)
	events.Subscribe(eb.bus, eb.onInventoryRequest)
	events.Subscribe(eb.bus, eb.onCombatAttackRequest)
	events.Subscribe(eb.bus, eb.onGatherBegin)
	events.Subscribe(eb.bus, eb.onCookingRequest)
	return eb
}

func (eb *EventBridge) onPlayerReady(ev events.PlayerReady) {
	slog.Info("PLAYER_READY", "playerId", ev.PlayerID)
}

// onInventoryRequest is the seam spec §4.9 step 5 calls "Fire
// INVENTORY_REQUEST events": the (external) inventory subsystem would push
// a fresh snapshot here. No subscriber exists in-core, so this just logs.
func (eb *EventBridge) onInventoryRequest(ev events.InventoryRequest) {
	slog.Debug("INVENTORY_REQUEST", "playerId", ev.PlayerID)
}

func (eb *EventBridge) onCombatAttackRequest(ev events.CombatAttackRequest) {
	slog.Debug("combat attack request", "playerId", ev.PlayerID, "targetId", ev.TargetID, "attackType", ev.AttackType)
}

func (eb *EventBridge) onGatherBegin(ev events.GatherBegin) {
	slog.Debug("gather begin", "playerId", ev.PlayerID, "nodeId", ev.NodeID)
}

func (eb *EventBridge) onCookingRequest(ev events.CookingRequest) {
	slog.Debug("cooking request", "playerId", ev.PlayerID, "sourceId", ev.SourceID, "fishSlot", ev.FishSlot)
}

func (eb *EventBridge) publishPlayerReady(playerID int64) {
	events.Emit(eb.bus, events.PlayerReady{PlayerID: playerID})
}

func (eb *EventBridge) publishInventoryRequest(playerID int64) {
	events.Emit(eb.bus, events.InventoryRequest{PlayerID: playerID})
}

func (eb *EventBridge) publishCombatAttackRequest(playerID, targetID int64, attackType string) {
	events.Emit(eb.bus, events.CombatAttackRequest{PlayerID: playerID, TargetID: targetID, AttackType: attackType})
}

func (eb *EventBridge) publishGatherBegin(playerID, nodeID int64) {
	events.Emit(eb.bus, events.GatherBegin{PlayerID: playerID, NodeID: nodeID})
}

func (eb *EventBridge) publishCookingRequest(playerID, sourceID int64, fishSlot int32) {
	events.Emit(eb.bus, events.CookingRequest{PlayerID: playerID, SourceID: sourceID, FishSlot: fishSlot})
}
