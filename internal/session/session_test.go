package session

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

func TestOpen_ClosesPriorSession(t *testing.T) {
	var closed *model.InteractionSession
	m := New(func(s model.InteractionSession) { closed = &s })

	m.Open(1, model.SessionBank, 0, 10)
	m.Open(1, model.SessionTrade, 2, 11)

	if closed == nil || closed.Kind != model.SessionBank {
		t.Fatalf("expected prior bank session to be closed, got %+v", closed)
	}
	active, ok := m.Active(1)
	if !ok || active.Kind != model.SessionTrade {
		t.Fatalf("expected active trade session, got %+v", active)
	}
}

func TestHasActive_FalseAfterClose(t *testing.T) {
	m := New(nil)
	m.Open(1, model.SessionDialogue, 0, 1)
	m.Close(1)
	if m.HasActive(1) {
		t.Error("expected no active session after Close")
	}
}
