// Package pid assigns each joining player a deterministic processing-order
// rank in [0, 2048), reshuffled periodically so no player is permanently
// starved at the tail of tick processing order.
package pid

import (
	"math/rand/v2"
	"sort"
	"sync"
)

const MaxPID = 2048

// Manager owns the playerId -> PID mapping and its periodic reshuffle.
type Manager struct {
	mu      sync.Mutex
	rng     *rand.Rand
	byPID   map[int32]int64
	byPlayer map[int64]int32
	free    []int32
}

// New creates a Manager seeded deterministically for reproducible reshuffles
// (testable property: same seed + same player-id sequence -> identical
// assignment), grounded on the teacher's math/rand/v2 usage for session ids
// and combat rolls.
func New(seed1, seed2 uint64) *Manager {
	m := &Manager{
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		byPID:    make(map[int32]int64),
		byPlayer: make(map[int64]int32),
	}
	for i := int32(MaxPID - 1); i >= 0; i-- {
		m.free = append(m.free, i)
	}
	return m
}

// Assign hands playerID the next free PID, low values first.
func (m *Manager) Assign(playerID int64) (int32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pid, ok := m.byPlayer[playerID]; ok {
		return pid, true
	}
	if len(m.free) == 0 {
		return 0, false
	}
	pid := m.free[len(m.free)-1]
	m.free = m.free[:len(m.free)-1]
	m.byPID[pid] = playerID
	m.byPlayer[playerID] = pid
	return pid, true
}

// Release frees playerID's PID for reassignment.
func (m *Manager) Release(playerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, ok := m.byPlayer[playerID]
	if !ok {
		return
	}
	delete(m.byPlayer, playerID)
	delete(m.byPID, pid)
	m.free = append(m.free, pid)
}

// PIDOf returns the PID assigned to playerID, or ok=false if unassigned.
func (m *Manager) PIDOf(playerID int64) (int32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid, ok := m.byPlayer[playerID]
	return pid, ok
}

// OrderedPlayers returns currently-assigned player ids sorted by PID
// ascending — the deterministic iteration order for tick processing.
func (m *Manager) OrderedPlayers() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	pids := make([]int32, 0, len(m.byPID))
	for pid := range m.byPID {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	out := make([]int64, len(pids))
	for i, pid := range pids {
		out[i] = m.byPID[pid]
	}
	return out
}

// NextReshuffleInterval draws a tick count in [100, 150] from the manager's
// seeded RNG, the periodic reshuffle cadence spec §3 names.
func (m *Manager) NextReshuffleInterval() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(100 + m.rng.IntN(51))
}

// Reshuffle reassigns PIDs among currently-active players using the
// manager's seeded RNG, preventing any one player from being permanently
// last in processing order. Deterministic: calling Reshuffle on two
// managers built from identical seeds and player sets yields identical
// resulting assignments.
func (m *Manager) Reshuffle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	players := make([]int64, 0, len(m.byPlayer))
	for p := range m.byPlayer {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	m.rng.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})

	m.byPID = make(map[int32]int64, len(players))
	m.byPlayer = make(map[int64]int32, len(players))
	for i, p := range players {
		pid := int32(i)
		m.byPID[pid] = p
		m.byPlayer[p] = pid
	}

	m.free = m.free[:0]
	for i := int32(MaxPID - 1); i >= int32(len(players)); i-- {
		m.free = append(m.free, i)
	}
}
