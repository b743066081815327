// Package transport provides the websocket-backed Sender adapter. Core game
// logic never imports this package directly — it depends only on
// model.Sender — so transport/framing stays an external collaborator per
// the runtime's design (wire protocol and framing are out of scope).
package transport

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope is the {name, data} wire message shape.
type Envelope struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// WSSender adapts a *websocket.Conn to model.Sender, serializing concurrent
// writes with a mutex (gorilla/websocket connections are not safe for
// concurrent writers).
type WSSender struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWSSender(conn *websocket.Conn) *WSSender {
	return &WSSender{conn: conn}
}

func (s *WSSender) Send(name string, data any) error {
	payload, err := json.Marshal(Envelope{Name: name, Data: data})
	if err != nil {
		return fmt.Errorf("marshaling envelope %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("writing message %q: %w", name, err)
	}
	return nil
}

func (s *WSSender) Close() error {
	return s.conn.Close()
}

// ReadEnvelope blocks until the next text frame arrives and decodes it.
func ReadEnvelope(conn *websocket.Conn) (Envelope, error) {
	var env Envelope
	_, payload, err := conn.ReadMessage()
	if err != nil {
		return env, fmt.Errorf("reading message: %w", err)
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	return env, nil
}
