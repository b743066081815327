// Package broadcast fans out outgoing messages to one socket, all sockets,
// or an entity's AOI subscriber set. Messages are enqueued and written to
// each socket's send path by a per-tick flush.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/tickrealm/core/internal/model"
)

type outbound struct {
	socketID string
	name     string
	data     any
}

// AOILookup resolves which sockets should receive updates about an entity.
type AOILookup interface {
	GetSubscribersForEntity(entityID int64) []string
}

type Manager struct {
	aoi AOILookup

	mu       sync.Mutex
	sockets  map[string]*model.Socket
	playerSocket map[int64]string // playerID -> socketID
	queue    []outbound
}

func New(aoi AOILookup) *Manager {
	return &Manager{
		aoi:          aoi,
		sockets:      make(map[string]*model.Socket),
		playerSocket: make(map[int64]string),
	}
}

func (m *Manager) RegisterSocket(s *model.Socket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sockets[s.ID] = s
}

func (m *Manager) BindPlayer(playerID int64, socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerSocket[playerID] = socketID
}

func (m *Manager) UnregisterSocket(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sockets, socketID)
	for player, sock := range m.playerSocket {
		if sock == socketID {
			delete(m.playerSocket, player)
		}
	}
}

func (m *Manager) GetPlayerSocket(playerID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.playerSocket[playerID]
	return s, ok
}

func (m *Manager) SendToSocket(socketID, name string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, outbound{socketID: socketID, name: name, data: data})
}

// SendToAll enqueues name/data for every connected socket except ignoreSocketID.
func (m *Manager) SendToAll(name string, data any, ignoreSocketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.sockets {
		if id == ignoreSocketID {
			continue
		}
		m.queue = append(m.queue, outbound{socketID: id, name: name, data: data})
	}
}

// SendToAOI enqueues name/data for every socket subscribed to entityID.
func (m *Manager) SendToAOI(entityID int64, name string, data any, ignoreSocketID string) {
	for _, id := range m.aoi.GetSubscribersForEntity(entityID) {
		if id == ignoreSocketID {
			continue
		}
		m.mu.Lock()
		m.queue = append(m.queue, outbound{socketID: id, name: name, data: data})
		m.mu.Unlock()
	}
}

// Flush drains the outbound queue, writing to each socket's send path.
// Per-socket write errors are logged and do not block delivery to others.
func (m *Manager) Flush() {
	m.mu.Lock()
	pending := m.queue
	m.queue = nil
	sockets := m.sockets
	m.mu.Unlock()

	for _, ob := range pending {
		sock, ok := sockets[ob.socketID]
		if !ok {
			continue
		}
		if err := sock.Send(ob.name, ob.data); err != nil {
			slog.Warn("send failed", "socketID", ob.socketID, "packet", ob.name, "err", err)
		}
	}
}
