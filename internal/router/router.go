// Package router dispatches incoming {name, data} packets to registered
// handlers, resolving both bare (`foo`) and `on`-prefixed (`onFoo`) aliases
// to the same handler.
package router

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/tickrealm/core/internal/model"
)

// Handler processes one decoded packet for the socket that sent it.
type Handler func(socket *model.Socket, data any)

type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func New() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Register binds name to h. Both the bare name and its on-prefixed (or
// de-prefixed) alias resolve to the same handler.
func (r *Router) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[canonical(name)] = h
}

func canonical(name string) string {
	if strings.HasPrefix(name, "on") && len(name) > 2 {
		return strings.ToLower(name[2:3]) + name[3:]
	}
	return name
}

// Dispatch looks up name's handler and invokes it. A handler panic is
// recovered and logged so it cannot poison the connection's read loop.
func (r *Router) Dispatch(socket *model.Socket, name string, data any) {
	r.mu.RLock()
	h, ok := r.handlers[canonical(name)]
	r.mu.RUnlock()

	if !ok {
		slog.Warn("unknown packet", "name", name)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("packet handler panicked", "name", name, "panic", rec)
		}
	}()
	h(socket, data)
}
