// Package aoi implements the Area of Interest spatial grid: a square-cell
// partition of the world used to compute which sockets should receive
// updates about which entities.
package aoi

import (
	"sync"

	"github.com/tickrealm/core/internal/model"
)

type Manager struct {
	cellSize     int32
	viewDistance int32

	mu    sync.Mutex
	cells map[model.CellKey]*model.Cell
	// entityCell and subscriberCells track current membership so deltas and
	// cross-cell moves can be computed without scanning every cell.
	entityCell     map[int64]model.CellKey
	subscriberCells map[string]map[model.CellKey]bool
}

func New(cellSize, viewDistance int32) *Manager {
	return &Manager{
		cellSize:        cellSize,
		viewDistance:    viewDistance,
		cells:           make(map[model.CellKey]*model.Cell),
		entityCell:      make(map[int64]model.CellKey),
		subscriberCells: make(map[string]map[model.CellKey]bool),
	}
}

func (m *Manager) keyFor(x, z int32) model.CellKey {
	return model.CellKey{X: floorDiv(x, m.cellSize), Z: floorDiv(z, m.cellSize)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (m *Manager) cell(key model.CellKey) *model.Cell {
	c, ok := m.cells[key]
	if !ok {
		c = model.NewCell(key)
		m.cells[key] = c
	}
	return c
}

// UpdateEntityPosition moves entityID between cells as needed and reports
// whether its cell changed.
func (m *Manager) UpdateEntityPosition(entityID int64, x, z int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	newKey := m.keyFor(x, z)
	oldKey, had := m.entityCell[entityID]
	if had && oldKey == newKey {
		return false
	}
	if had {
		delete(m.cell(oldKey).Occupants, entityID)
	}
	m.cell(newKey).Occupants[entityID] = true
	m.entityCell[entityID] = newKey
	return true
}

func (m *Manager) RemoveEntity(entityID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key, ok := m.entityCell[entityID]; ok {
		delete(m.cell(key).Occupants, entityID)
		delete(m.entityCell, entityID)
	}
}

func (m *Manager) squareAround(x, z int32) []model.CellKey {
	center := m.keyFor(x, z)
	vd := m.viewDistance
	keys := make([]model.CellKey, 0, (2*vd+1)*(2*vd+1))
	for dx := -vd; dx <= vd; dx++ {
		for dz := -vd; dz <= vd; dz++ {
			keys = append(keys, model.CellKey{X: center.X + dx, Z: center.Z + dz})
		}
	}
	return keys
}

// Delta is the set of cells a subscriber entered and exited.
type Delta struct {
	Entered []model.CellKey
	Exited  []model.CellKey
}

// UpdatePlayerSubscriptions recomputes the (2*vd+1)^2 cells socketID
// subscribes to and returns the enter/exit delta.
func (m *Manager) UpdatePlayerSubscriptions(x, z int32, socketID string) Delta {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := m.squareAround(x, z)
	wantSet := make(map[model.CellKey]bool, len(want))
	for _, k := range want {
		wantSet[k] = true
	}

	had := m.subscriberCells[socketID]
	var delta Delta

	for k := range had {
		if !wantSet[k] {
			delete(m.cell(k).Subscribers, socketID)
			delta.Exited = append(delta.Exited, k)
		}
	}
	newHad := make(map[model.CellKey]bool, len(want))
	for k := range wantSet {
		newHad[k] = true
		if had == nil || !had[k] {
			m.cell(k).Subscribers[socketID] = true
			delta.Entered = append(delta.Entered, k)
		}
	}
	m.subscriberCells[socketID] = newHad
	return delta
}

// RemoveSubscriber drops socketID from every cell it subscribed to, used on
// disconnect.
func (m *Manager) RemoveSubscriber(socketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.subscriberCells[socketID] {
		delete(m.cell(k).Subscribers, socketID)
	}
	delete(m.subscriberCells, socketID)
}

// GetSubscribersForEntity returns the sockets subscribed to entityID's cell.
func (m *Manager) GetSubscribersForEntity(entityID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.entityCell[entityID]
	if !ok {
		return nil
	}
	c := m.cell(key)
	out := make([]string, 0, len(c.Subscribers))
	for s := range c.Subscribers {
		out = append(out, s)
	}
	return out
}

// EntitiesInCell returns the occupant entity ids of key, for translating an
// enter/exit cell delta into entityAdded/entityRemoved notices.
func (m *Manager) EntitiesInCell(key model.CellKey) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cells[key]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(c.Occupants))
	for id := range c.Occupants {
		out = append(out, id)
	}
	return out
}

// CanPlayerSeeEntity reports whether socketID subscribes to entityID's cell.
func (m *Manager) CanPlayerSeeEntity(socketID string, entityID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.entityCell[entityID]
	if !ok {
		return false
	}
	return m.cell(key).Subscribers[socketID]
}
