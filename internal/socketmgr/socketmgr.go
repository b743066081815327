// Package socketmgr implements liveness (ping/pong) tracking and
// miss-tolerance eviction for connected sockets.
package socketmgr

import (
	"sync"
	"time"

	"github.com/tickrealm/core/internal/model"
)

// Disconnector is invoked when a socket is evicted for missing too many pongs.
type Disconnector interface {
	Disconnect(socketID string, closeCode int)
}

const CloseCodeKick = 4002
const CloseCodeBan = 4003
const closeCodePingTimeout = 4001

type Manager struct {
	discon       Disconnector
	pingInterval time.Duration
	graceMs      time.Duration
	missTolerance int

	mu       sync.Mutex
	sockets  map[string]*model.Socket
	lastPing map[string]time.Time
}

func New(discon Disconnector, pingIntervalSec, missTolerance, graceMs int) *Manager {
	return &Manager{
		discon:        discon,
		pingInterval:  time.Duration(pingIntervalSec) * time.Second,
		graceMs:       time.Duration(graceMs) * time.Millisecond,
		missTolerance: missTolerance,
		sockets:       make(map[string]*model.Socket),
		lastPing:      make(map[string]time.Time),
	}
}

func (m *Manager) Register(s *model.Socket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sockets[s.ID] = s
	m.lastPing[s.ID] = time.Now()
}

func (m *Manager) Remove(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sockets, socketID)
	delete(m.lastPing, socketID)
}

// Pong resets a socket's missed-pong counter.
func (m *Manager) Pong(socketID string) {
	m.mu.Lock()
	s, ok := m.sockets[socketID]
	m.mu.Unlock()
	if ok {
		s.ResetMissedPongs()
	}
}

// Tick sends a ping to every socket due for one, then after the grace
// period checks for missed pongs and evicts sockets past the tolerance.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	due := make(map[string]*model.Socket)
	for id, s := range m.sockets {
		if now.Sub(m.lastPing[id]) >= m.pingInterval {
			m.lastPing[id] = now
			due[id] = s
		}
	}
	m.mu.Unlock()

	for id, s := range due {
		if err := s.Send("ping", nil); err != nil {
			m.evict(id, closeCodePingTimeout)
			continue
		}
		id := id
		time.AfterFunc(m.graceMs, func() {
			m.checkMissed(id)
		})
	}
}

func (m *Manager) checkMissed(socketID string) {
	m.mu.Lock()
	s, ok := m.sockets[socketID]
	m.mu.Unlock()
	if !ok {
		return
	}
	if s.RecordMissedPong() >= m.missTolerance {
		m.evict(socketID, closeCodePingTimeout)
	}
}

func (m *Manager) evict(socketID string, code int) {
	m.Remove(socketID)
	m.discon.Disconnect(socketID, code)
}
