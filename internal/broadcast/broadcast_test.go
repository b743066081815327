package broadcast

import (
	"testing"

	"github.com/tickrealm/core/internal/model"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(name string, data any) error { f.sent = append(f.sent, name); return nil }
func (f *fakeSender) Close() error                      { return nil }

type fakeAOI struct {
	subs []string
}

func (f *fakeAOI) GetSubscribersForEntity(entityID int64) []string { return f.subs }

func TestSendToAll_SkipsIgnored(t *testing.T) {
	m := New(&fakeAOI{})
	s1, s2 := &fakeSender{}, &fakeSender{}
	m.RegisterSocket(model.NewSocket("a", 1, s1))
	m.RegisterSocket(model.NewSocket("b", 2, s2))

	m.SendToAll("entityAdded", nil, "a")
	m.Flush()

	if len(s1.sent) != 0 {
		t.Error("ignored socket received a message")
	}
	if len(s2.sent) != 1 {
		t.Error("non-ignored socket did not receive the message")
	}
}

func TestSendToAOI_DeliversToSubscribers(t *testing.T) {
	m := New(&fakeAOI{subs: []string{"a"}})
	s1 := &fakeSender{}
	m.RegisterSocket(model.NewSocket("a", 1, s1))

	m.SendToAOI(99, "tileMovementStart", nil, "")
	m.Flush()

	if len(s1.sent) != 1 || s1.sent[0] != "tileMovementStart" {
		t.Errorf("sent = %v, want [tileMovementStart]", s1.sent)
	}
}
