package server

import (
	"github.com/tickrealm/core/internal/model"
)

// notifyOne delivers name/data to playerID's socket, if it still has one
// (the player may have disconnected between the triggering action and this
// notification — spec §7 connectivity handling treats that as a no-op, not
// an error).
func (w *World) notifyOne(playerID int64, name string, data any) {
	if sid, ok := w.Broadcast.GetPlayerSocket(playerID); ok {
		w.Broadcast.SendToSocket(sid, name, data)
	}
}

func (w *World) notifyBoth(a, b int64, name string, data any) {
	w.notifyOne(a, name, data)
	w.notifyOne(b, name, data)
}

// --- internal/trade.Notifier -------------------------------------------------

func (w *World) TradeIncoming(toPlayerID, fromPlayerID int64) {
	w.notifyOne(toPlayerID, "tradeIncoming", map[string]any{"fromPlayerId": fromPlayerID})
	w.notifyOne(fromPlayerID, "chatAdded", map[string]any{"channel": "pink", "text": "Sending trade request..."})
}

func (w *World) TradeStarted(session model.TradeSession) {
	w.notifyBoth(session.Initiator.PlayerID, session.Recipient.PlayerID, "tradeStarted", session)
}

func (w *World) TradeUpdated(session model.TradeSession) {
	w.notifyBoth(session.Initiator.PlayerID, session.Recipient.PlayerID, "tradeUpdated", session)
}

func (w *World) TradeConfirmScreen(session model.TradeSession) {
	w.notifyBoth(session.Initiator.PlayerID, session.Recipient.PlayerID, "tradeConfirmScreen", session)
}

func (w *World) TradeCompleted(playerID int64, received []model.TradeSlotItem) {
	w.notifyOne(playerID, "tradeCompleted", map[string]any{"received": received})
	w.Events.publishInventoryRequest(playerID)
}

func (w *World) TradeCancelled(playerID int64, reason model.Reason) {
	w.notifyOne(playerID, "tradeCancelled", map[string]any{"reason": reason})
}

// --- internal/game/duel.Notifier --------------------------------------------

func (w *World) DuelRulesUpdated(session model.DuelSession) {
	w.notifyBoth(session.ChallengerID, session.TargetID, "duelRulesUpdated", session)
}

func (w *World) DuelStakesUpdated(session model.DuelSession) {
	w.notifyBoth(session.ChallengerID, session.TargetID, "duelStakesUpdated", session)
}

func (w *World) DuelFinalConfirm(session model.DuelSession) {
	w.notifyBoth(session.ChallengerID, session.TargetID, "duelFinalConfirm", session)
}

func (w *World) DuelCountdownStart(session model.DuelSession) {
	w.notifyBoth(session.ChallengerID, session.TargetID, "duelCountdownStart", session)
}

func (w *World) DuelCountdownTick(sessionID string, remaining int) {
	a, b, ok := w.Duel.Participants(sessionID)
	if !ok {
		return
	}
	w.notifyBoth(a, b, "duelCountdownTick", map[string]any{"sessionId": sessionID, "remaining": remaining})
}

func (w *World) DuelFightStart(session model.DuelSession) {
	w.notifyBoth(session.ChallengerID, session.TargetID, "duelFightStart", session)
}

func (w *World) DuelCompleted(playerID int64, itemsReceived, itemsLost []model.TradeSlotItem, totalValueWon, totalValueLost int64, forfeit bool) {
	w.notifyOne(playerID, "duelCompleted", map[string]any{
		"itemsReceived":  itemsReceived,
		"itemsLost":      itemsLost,
		"totalValueWon":  totalValueWon,
		"totalValueLost": totalValueLost,
		"forfeit":        forfeit,
	})
	w.Events.publishInventoryRequest(playerID)
}

func (w *World) DuelCancelled(playerID int64, reason model.Reason) {
	w.notifyOne(playerID, "duelCancelled", map[string]any{"reason": reason})
}

func (w *World) DuelOpponentDisconnected(playerID int64, timeoutMs int) {
	w.notifyOne(playerID, "duelOpponentDisconnected", map[string]any{"timeoutMs": timeoutMs})
}

func (w *World) DuelOpponentReconnected(playerID int64) {
	w.notifyOne(playerID, "duelOpponentReconnected", nil)
}

// --- internal/teleport.Notifier ---------------------------------------------

func (w *World) HomeTeleportStart(playerID int64) {
	w.notifyOne(playerID, "homeTeleportStart", nil)
}

func (w *World) HomeTeleportFailed(playerID int64, reason model.Reason) {
	w.notifyOne(playerID, "homeTeleportFailed", map[string]any{"reason": reason})
}

// PlayerTeleported relocates playerID to an arbitrary destination (home
// teleport completion, or a duel-arena placement), clamping to terrain
// height, resyncing Tile Movement and AOI, and broadcasting the move.
func (w *World) PlayerTeleported(playerID int64, to model.Location) {
	p, ok := w.Player(playerID)
	if !ok {
		return
	}
	clamped := w.clampToTerrain(to)
	p.SetLocation(clamped)
	w.Movement.SyncPlayerPosition(playerID, model.Tile{X: clamped.X, Z: clamped.Z})
	w.AOI.UpdateEntityPosition(playerID, clamped.X, clamped.Z)
	w.Broadcast.SendToAOI(playerID, "playerTeleport", map[string]any{
		"playerId": playerID, "location": clamped,
	}, "")
}
