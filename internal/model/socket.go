package model

import (
	"sync"
	"time"
)

// Sender is the outbound send capability a Socket delegates to; satisfied by
// internal/transport's adapter in production and by a fake in tests.
type Sender interface {
	Send(name string, data any) error
	Close() error
}

// Socket is a transient client connection, independent of the Player it may own.
type Socket struct {
	ID              string
	AccountID       int64
	FirstSeen       time.Time
	send            Sender

	mu              sync.RWMutex
	alive           bool
	selectedCharID  int64
	boundPlayerID   int64 // 0 means unbound
	missedPongs     int
}

func NewSocket(id string, accountID int64, send Sender) *Socket {
	return &Socket{
		ID:        id,
		AccountID: accountID,
		FirstSeen: time.Now(),
		send:      send,
		alive:     true,
	}
}

func (s *Socket) Send(name string, data any) error {
	return s.send.Send(name, data)
}

func (s *Socket) Close() error {
	s.mu.Lock()
	s.alive = false
	s.mu.Unlock()
	return s.send.Close()
}

func (s *Socket) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alive
}

func (s *Socket) SelectedCharacterID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedCharID
}

func (s *Socket) SetSelectedCharacterID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedCharID = id
}

func (s *Socket) BoundPlayerID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundPlayerID
}

func (s *Socket) SetBoundPlayerID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boundPlayerID = id
}

// RecordMissedPong increments the miss counter and reports the new count.
func (s *Socket) RecordMissedPong() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missedPongs++
	return s.missedPongs
}

// ResetMissedPongs clears the miss counter on a received pong.
func (s *Socket) ResetMissedPongs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missedPongs = 0
}
