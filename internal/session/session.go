// Package session enforces the at-most-one-active-interaction-session
// invariant (bank/store/dialogue/trade/duel).
package session

import (
	"sync"

	"github.com/tickrealm/core/internal/model"
)

// CloseNotifier is invoked when opening a new session force-closes a prior
// one, so callers can tear down kind-specific state (e.g. cancel a trade).
type CloseNotifier func(closed model.InteractionSession)

type Manager struct {
	onClose CloseNotifier

	mu       sync.Mutex
	sessions map[int64]*model.InteractionSession
}

func New(onClose CloseNotifier) *Manager {
	return &Manager{
		onClose:  onClose,
		sessions: make(map[int64]*model.InteractionSession),
	}
}

// Open starts a new session for playerID, closing any prior one first. The
// prior session is removed and its close callback run *before* the new
// session is recorded, so a callback that re-enters Close (e.g. cancelling
// a trade, which closes both participants' sessions) cannot clobber the
// session being opened here.
func (m *Manager) Open(playerID int64, kind model.SessionKind, peerID int64, tick int64) {
	m.mu.Lock()
	prior, had := m.sessions[playerID]
	delete(m.sessions, playerID)
	m.mu.Unlock()

	if had && m.onClose != nil {
		m.onClose(*prior)
	}

	m.mu.Lock()
	m.sessions[playerID] = &model.InteractionSession{
		Kind: kind, OwnerID: playerID, PeerID: peerID, OpenedAtTick: tick,
	}
	m.mu.Unlock()
}

func (m *Manager) Close(playerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, playerID)
}

func (m *Manager) HasActive(playerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[playerID]
	return ok
}

func (m *Manager) Active(playerID int64) (model.InteractionSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	if !ok {
		return model.InteractionSession{}, false
	}
	return *s, true
}

func (m *Manager) OnPlayerDisconnect(playerID int64) {
	m.Close(playerID)
}
