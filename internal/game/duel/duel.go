// Package duel implements the challenge -> rules -> stakes -> finalConfirm
// -> countdown -> fighting -> completed|cancelled state machine.
package duel

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tickrealm/core/internal/model"
)

// Notifier pushes duel-related client events.
type Notifier interface {
	DuelRulesUpdated(session model.DuelSession)
	DuelStakesUpdated(session model.DuelSession)
	DuelFinalConfirm(session model.DuelSession)
	DuelCountdownStart(session model.DuelSession)
	DuelCountdownTick(sessionID string, remaining int)
	DuelFightStart(session model.DuelSession)
	DuelCompleted(playerID int64, itemsReceived, itemsLost []model.TradeSlotItem, totalValueWon, totalValueLost int64, forfeit bool)
	DuelCancelled(playerID int64, reason model.Reason)
	DuelOpponentDisconnected(playerID int64, timeoutMs int)
	DuelOpponentReconnected(playerID int64)
}

// Settler performs the atomic stake transfer once a duel completes.
type Settler interface {
	ExecuteDuelStakeTransfer(winnerID, loserID int64, stakes []model.TradeSlotItem) error
}

const countdownTicks = 3

type Manager struct {
	notify  Notifier
	settle  Settler
	sessionOpen  func(playerID int64, kind model.SessionKind, peerID int64)
	sessionClose func(playerID int64)
	teleport     func(playerID int64, to model.Location)

	mu       sync.Mutex
	sessions map[string]*model.DuelSession
	byPlayer map[int64]string
}

func New(notify Notifier, settle Settler,
	sessionOpen func(int64, model.SessionKind, int64), sessionClose func(int64),
	teleport func(int64, model.Location)) *Manager {
	return &Manager{
		notify:       notify,
		settle:       settle,
		sessionOpen:  sessionOpen,
		sessionClose: sessionClose,
		teleport:     teleport,
		sessions:     make(map[string]*model.DuelSession),
		byPlayer:     make(map[int64]string),
	}
}

func (m *Manager) Challenge(challengerID, targetID int64) {
	m.mu.Lock()
	s := &model.DuelSession{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		TargetID:     targetID,
		Challenger:   model.DuelSide{PlayerID: challengerID},
		Target:       model.DuelSide{PlayerID: targetID},
		Status:       model.DuelRules,
		Rules:        model.DuelRuleSet{DisabledEquipmentSlots: map[string]bool{}},
	}
	m.sessions[s.ID] = s
	m.byPlayer[challengerID] = s.ID
	m.byPlayer[targetID] = s.ID
	m.mu.Unlock()

	m.sessionOpen(challengerID, model.SessionDuel, targetID)
	m.sessionOpen(targetID, model.SessionDuel, challengerID)
	m.notify.DuelRulesUpdated(*s)
}

// Participants resolves a session id (as passed to Notifier.DuelCountdownTick)
// back to its two players, for notifiers that need to address both sides.
func (m *Manager) Participants(sessionID string) (challengerID, targetID int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return 0, 0, false
	}
	return s.ChallengerID, s.TargetID, true
}

// IsFighting reports whether playerID is currently in the fighting phase of
// a duel.
func (m *Manager) IsFighting(playerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessionFor(playerID)
	return s != nil && s.Status == model.DuelFighting
}

// OpponentInFight returns playerID's opponent, if playerID is currently
// fighting a duel.
func (m *Manager) OpponentInFight(playerID int64) (opponentID int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelFighting {
		return 0, false
	}
	return s.OpponentOf(playerID).PlayerID, true
}

func (m *Manager) sessionFor(playerID int64) *model.DuelSession {
	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil
	}
	return m.sessions[id]
}

// ToggleRule flips one rule bit and resets acceptance.
func (m *Manager) ToggleRule(playerID int64, set func(r *model.DuelRuleSet)) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelRules {
		m.mu.Unlock()
		return
	}
	set(&s.Rules)
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelRulesUpdated(snap)
}

func (m *Manager) ToggleEquipmentBan(playerID int64, slot string) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelRules {
		m.mu.Unlock()
		return
	}
	s.Rules.DisabledEquipmentSlots[slot] = !s.Rules.DisabledEquipmentSlots[slot]
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelRulesUpdated(snap)
}

// AcceptRules marks playerID accepted; once both accept, advances to stakes.
func (m *Manager) AcceptRules(playerID int64) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelRules {
		m.mu.Unlock()
		return
	}
	side := s.SideOf(playerID)
	side.Accepted = true
	if !s.BothAccepted() {
		snap := *s
		m.mu.Unlock()
		m.notify.DuelRulesUpdated(snap)
		return
	}
	s.Status = model.DuelStakes
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelStakesUpdated(snap)
}

func (m *Manager) AddStake(playerID int64, item model.TradeSlotItem) {
	if !model.ValidQuantity(item.Quantity) {
		return
	}
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelStakes {
		m.mu.Unlock()
		return
	}
	side := s.SideOf(playerID)
	if len(side.Stakes) < model.MaxInventorySlots {
		side.Stakes = append(side.Stakes, item)
	}
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelStakesUpdated(snap)
}

func (m *Manager) RemoveStake(playerID int64, inventorySlot int32) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelStakes {
		m.mu.Unlock()
		return
	}
	side := s.SideOf(playerID)
	for i := range side.Stakes {
		if side.Stakes[i].InventorySlot == inventorySlot {
			side.Stakes = append(side.Stakes[:i], side.Stakes[i+1:]...)
			break
		}
	}
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelStakesUpdated(snap)
}

func (m *Manager) AcceptStakes(playerID int64) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelStakes {
		m.mu.Unlock()
		return
	}
	side := s.SideOf(playerID)
	side.Accepted = true
	if !s.BothAccepted() {
		snap := *s
		m.mu.Unlock()
		m.notify.DuelStakesUpdated(snap)
		return
	}
	s.Status = model.DuelFinalConfirm
	s.ResetAcceptance()
	snap := *s
	m.mu.Unlock()
	m.notify.DuelFinalConfirm(snap)
}

// AcceptFinal, once both sides confirm, starts the countdown.
func (m *Manager) AcceptFinal(playerID int64, currentTick int64) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelFinalConfirm {
		m.mu.Unlock()
		return
	}
	side := s.SideOf(playerID)
	side.Accepted = true
	if !s.BothAccepted() {
		snap := *s
		m.mu.Unlock()
		m.notify.DuelFinalConfirm(snap)
		return
	}
	s.Status = model.DuelCountdown
	s.CountdownEndTick = currentTick + countdownTicks
	snap := *s
	m.mu.Unlock()
	m.notify.DuelCountdownStart(snap)
}

// OnTick must run in the INPUT phase, before Action Queue processing, so a
// countdown->fighting transition authorizes arena movement within the same
// tick (spec §4.8 tick-ordering requirement).
func (m *Manager) OnTick(currentTick int64) {
	m.mu.Lock()
	var toStart []*model.DuelSession
	for _, s := range m.sessions {
		if s.Status == model.DuelCountdown {
			if currentTick >= s.CountdownEndTick {
				s.Status = model.DuelFighting
				toStart = append(toStart, s)
			} else {
				remaining := int(s.CountdownEndTick - currentTick)
				m.mu.Unlock()
				m.notify.DuelCountdownTick(s.ID, remaining)
				m.mu.Lock()
			}
		}
	}
	m.mu.Unlock()

	for _, s := range toStart {
		m.teleport(s.ChallengerID, model.Location{X: s.ArenaBounds[0].X, Z: s.ArenaBounds[0].Z})
		m.teleport(s.TargetID, model.Location{X: s.ArenaBounds[1].X, Z: s.ArenaBounds[1].Z})
		m.notify.DuelFightStart(*s)
	}
}

// InArenaBounds reports whether playerID's duel (if fighting) permits tile.
func (m *Manager) InArenaBounds(playerID int64, tile model.Tile) (restricted bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessionFor(playerID)
	if s == nil || s.Status != model.DuelFighting {
		return false, false
	}
	return !s.InBounds(tile), true
}

// Complete ends a fighting duel: winner beat loser (death) or loser forfeited.
func (m *Manager) Complete(winnerID, loserID int64, forfeit bool) {
	m.mu.Lock()
	s := m.sessionFor(winnerID)
	if s == nil || s.Status != model.DuelFighting {
		m.mu.Unlock()
		return
	}
	s.Status = model.DuelCompleted
	loserSide := s.SideOf(loserID)
	stakes := append([]model.TradeSlotItem(nil), loserSide.Stakes...)
	delete(m.sessions, s.ID)
	delete(m.byPlayer, s.ChallengerID)
	delete(m.byPlayer, s.TargetID)
	m.mu.Unlock()

	m.sessionClose(s.ChallengerID)
	m.sessionClose(s.TargetID)

	var totalValue int64
	for _, it := range stakes {
		totalValue += it.Quantity
	}

	if err := m.settle.ExecuteDuelStakeTransfer(winnerID, loserID, stakes); err != nil {
		m.notify.DuelCancelled(winnerID, model.ReasonServerError)
		m.notify.DuelCancelled(loserID, model.ReasonServerError)
		return
	}

	m.notify.DuelCompleted(winnerID, stakes, nil, totalValue, 0, forfeit)
	m.notify.DuelCompleted(loserID, nil, stakes, 0, totalValue, forfeit)
}

func (m *Manager) Cancel(playerID int64, reason model.Reason) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return
	}
	s.Status = model.DuelCancelled
	delete(m.sessions, s.ID)
	delete(m.byPlayer, s.ChallengerID)
	delete(m.byPlayer, s.TargetID)
	m.mu.Unlock()

	m.sessionClose(s.ChallengerID)
	m.sessionClose(s.TargetID)
	m.notify.DuelCancelled(s.ChallengerID, reason)
	m.notify.DuelCancelled(s.TargetID, reason)
}

func (m *Manager) OnPlayerDisconnect(playerID int64, timeoutMs int) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	m.mu.Unlock()
	if s == nil {
		return
	}
	if s.Status != model.DuelFighting {
		m.Cancel(playerID, model.ReasonPlayerOffline)
		return
	}
	opp := s.OpponentOf(playerID)
	m.notify.DuelOpponentDisconnected(opp.PlayerID, timeoutMs)
}

func (m *Manager) OnPlayerReconnect(playerID int64) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	m.mu.Unlock()
	if s == nil || s.Status != model.DuelFighting {
		return
	}
	opp := s.OpponentOf(playerID)
	m.notify.DuelOpponentReconnected(opp.PlayerID)
}
