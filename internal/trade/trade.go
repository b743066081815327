// Package trade implements the two-screen trade negotiation: offer screen
// then confirmation screen, both sides must accept on each screen before
// advancing, and any offer mutation resets both acceptance flags.
package trade

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tickrealm/core/internal/model"
)

// Notifier pushes trade-related client events.
type Notifier interface {
	TradeIncoming(toPlayerID, fromPlayerID int64)
	TradeStarted(session model.TradeSession)
	TradeUpdated(session model.TradeSession)
	TradeConfirmScreen(session model.TradeSession)
	TradeCompleted(playerID int64, received []model.TradeSlotItem)
	TradeCancelled(playerID int64, reason model.Reason)
}

// Swapper performs the atomic economic transaction once both sides confirm.
type Swapper interface {
	ExecuteTradeSwap(session model.TradeSession) (initiatorGets, recipientGets []model.TradeSlotItem, err error)
}

type Manager struct {
	notify  Notifier
	swapper Swapper
	sessionOpen func(playerID int64, kind model.SessionKind, peerID int64)
	sessionClose func(playerID int64)
	hasActiveSession func(playerID int64) bool

	mu       sync.Mutex
	sessions map[string]*model.TradeSession
	byPlayer map[int64]string
}

func New(notify Notifier, swapper Swapper,
	sessionOpen func(int64, model.SessionKind, int64), sessionClose func(int64), hasActiveSession func(int64) bool) *Manager {
	return &Manager{
		notify:           notify,
		swapper:          swapper,
		sessionOpen:      sessionOpen,
		sessionClose:     sessionClose,
		hasActiveSession: hasActiveSession,
		sessions:         make(map[string]*model.TradeSession),
		byPlayer:         make(map[int64]string),
	}
}

// CreateTradeRequest notifies target of an incoming trade, refusing if
// either party is already busy.
func (m *Manager) CreateTradeRequest(initiatorID, targetID int64) error {
	if m.hasActiveSession(initiatorID) || m.hasActiveSession(targetID) {
		return fmt.Errorf("trade request refused: %s", model.ReasonPlayerBusy)
	}
	m.notify.TradeIncoming(targetID, initiatorID)
	return nil
}

// RespondToTradeRequest opens sessions for both sides on accept, or
// notifies the initiator on decline.
func (m *Manager) RespondToTradeRequest(initiatorID, targetID int64, accept bool) {
	if !accept {
		m.notify.TradeCancelled(initiatorID, model.Reason("DECLINED"))
		return
	}

	m.mu.Lock()
	session := &model.TradeSession{
		ID:        uuid.NewString(),
		Initiator: model.TradeOffer{PlayerID: initiatorID},
		Recipient: model.TradeOffer{PlayerID: targetID},
		Status:    model.TradeActive,
	}
	m.sessions[session.ID] = session
	m.byPlayer[initiatorID] = session.ID
	m.byPlayer[targetID] = session.ID
	m.mu.Unlock()

	m.sessionOpen(initiatorID, model.SessionTrade, targetID)
	m.sessionOpen(targetID, model.SessionTrade, initiatorID)
	m.notify.TradeStarted(*session)
}

func (m *Manager) sessionFor(playerID int64) *model.TradeSession {
	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil
	}
	return m.sessions[id]
}

// mutate applies fn to the caller's offer, resets both acceptance flags, and
// reverts an in-progress confirmation screen back to the offer screen.
func (m *Manager) mutate(playerID int64, fn func(offer *model.TradeOffer)) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return
	}
	offer := s.OfferFor(playerID)
	fn(offer)
	s.ResetAcceptance()
	s.Status = model.TradeActive
	snapshot := *s
	m.mu.Unlock()

	m.notify.TradeUpdated(snapshot)
}

func (m *Manager) AddItem(playerID int64, item model.TradeSlotItem) {
	if !model.ValidQuantity(item.Quantity) {
		return
	}
	m.mutate(playerID, func(o *model.TradeOffer) {
		for i := range o.OfferedItems {
			if o.OfferedItems[i].InventorySlot == item.InventorySlot {
				o.OfferedItems[i].Quantity = item.Quantity
				return
			}
		}
		o.OfferedItems = append(o.OfferedItems, item)
	})
}

func (m *Manager) RemoveItem(playerID int64, inventorySlot int32) {
	m.mutate(playerID, func(o *model.TradeOffer) {
		for i := range o.OfferedItems {
			if o.OfferedItems[i].InventorySlot == inventorySlot {
				o.OfferedItems = append(o.OfferedItems[:i], o.OfferedItems[i+1:]...)
				return
			}
		}
	})
}

func (m *Manager) SetQuantity(playerID int64, inventorySlot int32, quantity int64) {
	if !model.ValidQuantity(quantity) {
		return
	}
	m.mutate(playerID, func(o *model.TradeOffer) {
		for i := range o.OfferedItems {
			if o.OfferedItems[i].InventorySlot == inventorySlot {
				o.OfferedItems[i].Quantity = quantity
				return
			}
		}
	})
}

// SetAcceptance marks playerID accepted on the current screen. When both
// sides have accepted, the session advances: offer -> confirming, or
// confirming -> swap execution.
func (m *Manager) SetAcceptance(playerID int64, accepted bool) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return
	}
	offer := s.OfferFor(playerID)
	offer.Accepted = accepted

	if !s.BothAccepted() {
		snapshot := *s
		m.mu.Unlock()
		m.notify.TradeUpdated(snapshot)
		return
	}

	switch s.Status {
	case model.TradeActive:
		s.Status = model.TradeConfirming
		s.ResetAcceptance()
		snapshot := *s
		m.mu.Unlock()
		m.notify.TradeConfirmScreen(snapshot)
	case model.TradeConfirming:
		m.mu.Unlock()
		m.completeSwap(s)
	default:
		m.mu.Unlock()
	}
}

func (m *Manager) completeSwap(s *model.TradeSession) {
	initiatorGets, recipientGets, err := m.swapper.ExecuteTradeSwap(*s)
	if err != nil {
		m.Cancel(s.Initiator.PlayerID, model.Reason(err.Error()))
		return
	}

	m.mu.Lock()
	s.Status = model.TradeCompleted
	delete(m.sessions, s.ID)
	delete(m.byPlayer, s.Initiator.PlayerID)
	delete(m.byPlayer, s.Recipient.PlayerID)
	m.mu.Unlock()

	m.sessionClose(s.Initiator.PlayerID)
	m.sessionClose(s.Recipient.PlayerID)
	m.notify.TradeCompleted(s.Initiator.PlayerID, initiatorGets)
	m.notify.TradeCompleted(s.Recipient.PlayerID, recipientGets)
}

// Cancel terminates the session for playerID and notifies both sides.
func (m *Manager) Cancel(playerID int64, reason model.Reason) {
	m.mu.Lock()
	s := m.sessionFor(playerID)
	if s == nil {
		m.mu.Unlock()
		return
	}
	s.Status = model.TradeCancelled
	delete(m.sessions, s.ID)
	delete(m.byPlayer, s.Initiator.PlayerID)
	delete(m.byPlayer, s.Recipient.PlayerID)
	m.mu.Unlock()

	m.sessionClose(s.Initiator.PlayerID)
	m.sessionClose(s.Recipient.PlayerID)
	m.notify.TradeCancelled(s.Initiator.PlayerID, reason)
	m.notify.TradeCancelled(s.Recipient.PlayerID, reason)
}

func (m *Manager) OnPlayerDisconnect(playerID int64) {
	m.Cancel(playerID, model.ReasonPlayerOffline)
}
