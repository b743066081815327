package model

import "sync"

// Player is an in-world entity bound to a socket.
type Player struct {
	ID       int64
	Name     string
	Roles    []string
	Loading  bool // true until the client signals onClientReady
	Dead     bool
	Heading  uint16
	SelectedSpell string

	mu       sync.RWMutex
	location Location
	owner    string // socket id owning this player; empty if unbound
}

// NewPlayer creates a player at the given spawn location, owned by socket ownerID.
func NewPlayer(id int64, name string, loc Location, ownerID string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Loading:  true,
		location: loc,
		owner:    ownerID,
	}
}

func (p *Player) Location() Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

func (p *Player) SetLocation(loc Location) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = loc
}

// Owner returns the id of the socket currently bound to this player.
func (p *Player) Owner() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// SetOwner rebinds the player to a new socket, enforcing the at-most-one-owner invariant.
func (p *Player) SetOwner(socketID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = socketID
}

func (p *Player) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
