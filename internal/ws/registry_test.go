package ws

import (
	"errors"
	"testing"

	"chat-gateway/internal/domain"
)

type fakeChannel struct {
	sent    []domain.Event
	sendErr error
	closed  bool
}

func (f *fakeChannel) Send(ev domain.Event) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, ev)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRegisterAndSend(t *testing.T) {
	r := NewRegistry(nil)
	ch := &fakeChannel{}

	r.Register("chat-1", ch)

	if !r.IsActive("chat-1") {
		t.Fatal("expected chat-1 to be active")
	}
	if !r.Send("chat-1", domain.NewChunkEvent("hola")) {
		t.Fatal("expected send to succeed")
	}
	if len(ch.sent) != 1 || ch.sent[0].Chunk != "hola" {
		t.Fatalf("unexpected delivered events: %+v", ch.sent)
	}
}

func TestSendWithoutChannel(t *testing.T) {
	r := NewRegistry(nil)

	if r.Send("nope", domain.NewChunkEvent("x")) {
		t.Fatal("expected send to an unregistered chat to return false")
	}
}

func TestRegisterReplacesAndClosesPrevious(t *testing.T) {
	r := NewRegistry(nil)
	first := &fakeChannel{}
	second := &fakeChannel{}

	r.Register("chat-1", first)
	r.Register("chat-1", second)

	if !first.closed {
		t.Fatal("expected the replaced channel to be closed")
	}
	if second.closed {
		t.Fatal("the new channel must stay open")
	}
	if !r.Send("chat-1", domain.NewChunkEvent("x")) {
		t.Fatal("expected send via the new channel to succeed")
	}
	if len(second.sent) != 1 || len(first.sent) != 0 {
		t.Fatalf("event delivered to the wrong channel: first=%d second=%d", len(first.sent), len(second.sent))
	}
}

func TestUnregisterIdentityGuard(t *testing.T) {
	r := NewRegistry(nil)
	first := &fakeChannel{}
	second := &fakeChannel{}

	r.Register("chat-1", first)
	r.Register("chat-1", second)

	// La conexión reemplazada se desconecta tarde: no debe tumbar a la nueva.
	r.Unregister("chat-1", first)
	if !r.IsActive("chat-1") {
		t.Fatal("unregistering a stale channel must not remove the current one")
	}

	r.Unregister("chat-1", second)
	if r.IsActive("chat-1") {
		t.Fatal("expected chat-1 to be inactive")
	}
	if !second.closed {
		t.Fatal("expected the unregistered channel to be closed")
	}
}

func TestUnregisterNilRemovesAny(t *testing.T) {
	r := NewRegistry(nil)
	ch := &fakeChannel{}

	r.Register("chat-1", ch)
	r.Unregister("chat-1", nil)

	if r.IsActive("chat-1") {
		t.Fatal("expected chat-1 to be inactive")
	}
}

func TestSendFailureUnregisters(t *testing.T) {
	r := NewRegistry(nil)
	ch := &fakeChannel{sendErr: errors.New("broken pipe")}

	r.Register("chat-1", ch)

	if r.Send("chat-1", domain.NewChunkEvent("x")) {
		t.Fatal("expected send to report failure")
	}
	if r.IsActive("chat-1") {
		t.Fatal("a failed channel must be removed")
	}
	if !ch.closed {
		t.Fatal("a failed channel must be closed")
	}
}

func TestActiveCount(t *testing.T) {
	r := NewRegistry(nil)

	if r.ActiveCount() != 0 {
		t.Fatalf("expected 0 active channels, got %d", r.ActiveCount())
	}

	r.Register("chat-1", &fakeChannel{})
	r.Register("chat-2", &fakeChannel{})

	if r.ActiveCount() != 2 {
		t.Fatalf("expected 2 active channels, got %d", r.ActiveCount())
	}

	r.Unregister("chat-1", nil)
	if r.ActiveCount() != 1 {
		t.Fatalf("expected 1 active channel, got %d", r.ActiveCount())
	}
}
