// Package events implements the typed, synchronous event bus the design
// notes call for in place of an event-emitter/observer pattern (spec §9):
// subscriptions are explicit, and every Emit dispatches to its subscribers
// immediately, on the caller's goroutine. Because the tick scheduler runs
// phases in order (INPUT -> MOVEMENT -> COMBAT -> RESOURCES -> POST), an
// event emitted during an earlier phase is visible to a later phase in the
// same tick; anything emitted after POST is only visible starting the next
// tick's INPUT. Grounded on the generic Bus/Emit/Subscribe shape in
// other_examples' rdtc8822-debug-L1JGO-Whale (internal/core/event/bus.go),
// simplified from double-buffered to immediate dispatch since this runtime
// has no cross-goroutine tick producers feeding the bus.
package events

import (
	"reflect"
	"sync"
)

// Bus dispatches typed events to their subscribed handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]any)}
}

// Subscribe registers fn for every event of type T emitted after this call.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Emit dispatches event to every handler subscribed to its type.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.RLock()
	handlers := append([]any(nil), b.handlers[t]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h.(func(T))(event)
	}
}
