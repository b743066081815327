package server

import (
	"github.com/tickrealm/core/internal/model"
)

// asMap type-asserts a decoded packet payload; malformed packets (wrong
// shape, missing fields) are dropped silently per the validation error kind
// (spec §7: never mutate state on malformed input).
func asMap(data any) (map[string]any, bool) {
	m, ok := data.(map[string]any)
	return m, ok
}

func intField(m map[string]any, key string) (int64, bool) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

func int32Field(m map[string]any, key string) (int32, bool) {
	v, ok := intField(m, key)
	return int32(v), ok
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// RegisterHandlers binds every client packet this core reacts to onto the
// router. Packets owned by out-of-scope subsystems (bank, store, crafting,
// prayer, chat, friends, ...) never reach here; the router logs them as
// unknown, matching spec §7's "drop silently" validation handling.
func (w *World) RegisterHandlers() {
	w.Router.Register("moveRequest", w.handleMoveRequest)
	w.Router.Register("attackMob", w.handleAttackMob)
	w.Router.Register("attackPlayer", w.handleAttackPlayer)
	w.Router.Register("followPlayer", w.handleFollowPlayer)
	w.Router.Register("resourceInteract", w.handleResourceInteract)
	w.Router.Register("cookingSourceInteract", w.handleCookingSourceInteract)

	w.Router.Register("tradeRequest", w.handleTradeRequest)
	w.Router.Register("tradeRequestRespond", w.handleTradeRequestRespond)
	w.Router.Register("tradeAddItem", w.handleTradeAddItem)
	w.Router.Register("tradeRemoveItem", w.handleTradeRemoveItem)
	w.Router.Register("tradeSetItemQuantity", w.handleTradeSetItemQuantity)
	w.Router.Register("tradeAccept", w.handleTradeAccept)
	w.Router.Register("tradeCancelAccept", w.handleTradeCancelAccept)
	w.Router.Register("tradeCancel", w.handleTradeCancel)

	w.Router.Register("duel:challenge", w.handleDuelChallenge)
	w.Router.Register("duel:respond", w.handleDuelRespond)
	w.Router.Register("duel:toggle:rule", w.handleDuelToggleRule)
	w.Router.Register("duel:toggle:equipment", w.handleDuelToggleEquipment)
	w.Router.Register("duel:accept:rules", w.handleDuelAcceptRules)
	w.Router.Register("duel:add:stake", w.handleDuelAddStake)
	w.Router.Register("duel:remove:stake", w.handleDuelRemoveStake)
	w.Router.Register("duel:accept:stakes", w.handleDuelAcceptStakes)
	w.Router.Register("duel:accept:final", w.handleDuelAcceptFinal)
	w.Router.Register("duel:cancel", w.handleDuelCancel)
	w.Router.Register("duel:forfeit", w.handleDuelForfeit)

	w.Router.Register("homeTeleport", w.handleHomeTeleport)
	w.Router.Register("homeTeleportCancel", w.handleHomeTeleportCancel)

	w.Router.Register("characterListRequest", w.handleCharacterListRequest)
	w.Router.Register("characterCreate", w.handleCharacterCreate)
	w.Router.Register("characterSelected", w.handleCharacterSelected)
	w.Router.Register("enterWorld", w.handleEnterWorld)
	w.Router.Register("clientReady", w.handleClientReady)
	w.Router.Register("pong", w.handlePong)
}

func (w *World) handlePong(socket *model.Socket, data any) {
	w.SocketMgr.Pong(socket.ID)
}

func boundPlayer(socket *model.Socket) (int64, bool) {
	id := socket.BoundPlayerID()
	return id, id != 0
}

// handleMoveRequest queues the movement slot; the Action Queue drains it at
// the next INPUT phase, which is also where other pending intents are
// cancelled (spec: moving elsewhere abandons a queued walk-then-act).
func (w *World) handleMoveRequest(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	x, xok := int32Field(m, "x")
	z, zok := int32Field(m, "z")
	if !xok || !zok {
		return
	}
	req := model.MoveRequest{
		TargetPos: model.Location{X: x, Z: z},
		Running:   boolField(m, "running"),
	}
	w.ActionQueue.SetMovement(playerID, req)
}

func (w *World) handleAttack(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	targetID, ok := intField(m, "targetId")
	if !ok {
		return
	}
	attackType, _ := stringField(m, "attackType")
	w.Attack.QueueIntent(playerID, targetID, 1, attackType, w.Tick.CurrentTick(), attackType)
}

func (w *World) handleAttackMob(socket *model.Socket, data any)    { w.handleAttack(socket, data) }
func (w *World) handleAttackPlayer(socket *model.Socket, data any) { w.handleAttack(socket, data) }

func (w *World) handleFollowPlayer(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	targetID, ok := intField(m, "targetId")
	if !ok {
		return
	}
	w.Follow.QueueIntent(playerID, targetID, 1, "", w.Tick.CurrentTick(), nil)
}

// handleResourceInteract queues a Gather intent; the terminal fire publishes
// a GatherBegin event for the (out-of-scope) resource-gathering subsystem.
func (w *World) handleResourceInteract(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	nodeID, ok := intField(m, "nodeId")
	if !ok {
		return
	}
	w.Gather.QueueIntent(playerID, nodeID, 1, "", w.Tick.CurrentTick(), nil)
}

// handleCookingSourceInteract queues a Cook intent. Source resolution (fire
// vs. range entity) happens in the (out-of-scope) cooking subsystem; fire-id
// takes precedence on collision per the resolved design note, so sourceId is
// passed through unchanged as the intent's target.
func (w *World) handleCookingSourceInteract(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	sourceID, ok := intField(m, "sourceId")
	if !ok {
		return
	}
	fishSlot, _ := int32Field(m, "fishSlot")
	w.Cook.QueueIntent(playerID, sourceID, 1, "", w.Tick.CurrentTick(), fishSlot)
}

// --- Trade packet handlers ---------------------------------------------

func (w *World) handleTradeRequest(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	targetID, ok := intField(m, "targetId")
	if !ok {
		return
	}
	w.TradeIntent.QueueIntent(playerID, targetID, 1, "", w.Tick.CurrentTick(), nil)
}

func (w *World) handleTradeRequestRespond(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	fromID, ok := intField(m, "fromPlayerId")
	if !ok {
		return
	}
	w.Trade.RespondToTradeRequest(fromID, playerID, boolField(m, "accept"))
}

func (w *World) handleTradeAddItem(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, slotOK := int32Field(m, "inventorySlot")
	itemID, itemOK := int32Field(m, "itemId")
	qty, qtyOK := intField(m, "quantity")
	tradeSlot, _ := int32Field(m, "tradeSlot")
	if !slotOK || !itemOK || !qtyOK || !model.ValidQuantity(qty) {
		return
	}
	w.Trade.AddItem(playerID, model.TradeSlotItem{InventorySlot: slot, ItemID: itemID, Quantity: qty, TradeSlot: tradeSlot})
}

func (w *World) handleTradeRemoveItem(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, ok := int32Field(m, "inventorySlot")
	if !ok {
		return
	}
	w.Trade.RemoveItem(playerID, slot)
}

func (w *World) handleTradeSetItemQuantity(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, slotOK := int32Field(m, "inventorySlot")
	qty, qtyOK := intField(m, "quantity")
	if !slotOK || !qtyOK || !model.ValidQuantity(qty) {
		return
	}
	w.Trade.SetQuantity(playerID, slot, qty)
}

func (w *World) handleTradeAccept(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Trade.SetAcceptance(playerID, true)
	}
}

func (w *World) handleTradeCancelAccept(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Trade.SetAcceptance(playerID, false)
	}
}

func (w *World) handleTradeCancel(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Trade.Cancel(playerID, model.ReasonPlayerBusy)
	}
}

// --- Duel packet handlers -----------------------------------------------

func (w *World) handleDuelChallenge(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	targetID, ok := intField(m, "targetId")
	if !ok {
		return
	}
	w.DuelChallenge.QueueIntent(playerID, targetID, 1, "", w.Tick.CurrentTick(), nil)
}

func (w *World) handleDuelRespond(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	if !boolField(m, "accept") {
		w.Duel.Cancel(playerID, model.ReasonPlayerBusy)
	}
}

func (w *World) handleDuelToggleRule(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	name, ok := stringField(m, "rule")
	if !ok {
		return
	}
	w.Duel.ToggleRule(playerID, func(r *model.DuelRuleSet) {
		switch name {
		case "funWeapons":
			r.FunWeapons = !r.FunWeapons
		case "allowMagic":
			r.AllowMagic = !r.AllowMagic
		case "allowRange":
			r.AllowRange = !r.AllowRange
		case "allowMelee":
			r.AllowMelee = !r.AllowMelee
		case "allowMovement":
			r.AllowMovement = !r.AllowMovement
		case "allowPrayer":
			r.AllowPrayer = !r.AllowPrayer
		}
	})
}

func (w *World) handleDuelToggleEquipment(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, ok := stringField(m, "slot")
	if !ok {
		return
	}
	w.Duel.ToggleEquipmentBan(playerID, slot)
}

func (w *World) handleDuelAcceptRules(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Duel.AcceptRules(playerID)
	}
}

func (w *World) handleDuelAddStake(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, slotOK := int32Field(m, "inventorySlot")
	itemID, itemOK := int32Field(m, "itemId")
	qty, qtyOK := intField(m, "quantity")
	if !slotOK || !itemOK || !qtyOK || !model.ValidQuantity(qty) {
		return
	}
	w.Duel.AddStake(playerID, model.TradeSlotItem{InventorySlot: slot, ItemID: itemID, Quantity: qty})
}

func (w *World) handleDuelRemoveStake(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	m, ok := asMap(data)
	if !ok {
		return
	}
	slot, ok := int32Field(m, "inventorySlot")
	if !ok {
		return
	}
	w.Duel.RemoveStake(playerID, slot)
}

func (w *World) handleDuelAcceptStakes(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Duel.AcceptStakes(playerID)
	}
}

func (w *World) handleDuelAcceptFinal(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Duel.AcceptFinal(playerID, w.Tick.CurrentTick())
	}
}

func (w *World) handleDuelCancel(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Duel.Cancel(playerID, model.ReasonPlayerBusy)
	}
}

// handleDuelForfeit ends a fighting duel in favor of the opponent; combat
// death is the other path to Duel.Complete and lives in the out-of-scope
// combat subsystem, which calls it directly rather than through a packet.
func (w *World) handleDuelForfeit(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	opponentID, ok := w.Duel.OpponentInFight(playerID)
	if !ok {
		return
	}
	w.Duel.Complete(opponentID, playerID, true)
}

// --- Home teleport --------------------------------------------------------

func (w *World) handleHomeTeleport(socket *model.Socket, data any) {
	playerID, ok := boundPlayer(socket)
	if !ok {
		return
	}
	p, ok := w.Player(playerID)
	if !ok {
		return
	}
	// Combat interruption flows through Teleport.OnCombatEntered, called by
	// the external combat subsystem; RequestCast itself only gates on
	// dueling, death, and cooldown/already-casting state.
	inDuel := w.Duel.IsFighting(playerID)
	w.Teleport.RequestCast(playerID, w.Tick.CurrentTick(), false, inDuel, p.Dead)
}

func (w *World) handleHomeTeleportCancel(socket *model.Socket, data any) {
	if playerID, ok := boundPlayer(socket); ok {
		w.Teleport.OnMoveRequest(playerID)
	}
}
