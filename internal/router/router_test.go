package router

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

func TestDispatch_BareAndOnPrefixedAliasResolveToSameHandler(t *testing.T) {
	r := New()
	calls := 0
	r.Register("moveRequest", func(s *model.Socket, data any) { calls++ })

	r.Dispatch(nil, "moveRequest", nil)
	r.Dispatch(nil, "onMoveRequest", nil)

	if calls != 2 {
		t.Errorf("calls = %d, want 2 (both aliases should dispatch)", calls)
	}
}

func TestDispatch_UnknownPacketDoesNotPanic(t *testing.T) {
	r := New()
	r.Dispatch(nil, "totallyUnknown", nil)
}

func TestDispatch_HandlerPanicIsolated(t *testing.T) {
	r := New()
	r.Register("boom", func(s *model.Socket, data any) { panic("x") })
	r.Dispatch(nil, "boom", nil) // must not propagate
}
