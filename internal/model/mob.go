package model

import "sync"

// Mob is a non-player combat entity.
type Mob struct {
	ID   int64
	Type string

	mu       sync.RWMutex
	location Location
	hp       int32
	maxHP    int32
}

func NewMob(id int64, typ string, loc Location, maxHP int32) *Mob {
	return &Mob{ID: id, Type: typ, location: loc, hp: maxHP, maxHP: maxHP}
}

func (m *Mob) Location() Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.location
}

func (m *Mob) SetLocation(loc Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = loc
}

func (m *Mob) HP() (current, max int32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hp, m.maxHP
}

// ApplyDamage reduces HP by amount, floored at 0, and reports whether the mob died.
func (m *Mob) ApplyDamage(amount int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hp -= amount
	if m.hp < 0 {
		m.hp = 0
	}
	return m.hp == 0
}

func (m *Mob) Alive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hp > 0
}
