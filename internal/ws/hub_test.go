package ws

import (
	"testing"
)

func newTestClient(roomID string) *Client {
	return &Client{
		Send:   make(chan []byte, 16),
		RoomID: roomID,
	}
}

func TestHub_RegisterAndPublish(t *testing.T) {
	hub := NewHub()

	a := newTestClient("room-1")
	b := newTestClient("room-1")
	other := newTestClient("room-2")

	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.Publish("room-1", []byte("hello"))

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.Send:
			if string(msg) != "hello" {
				t.Errorf("Publish() delivered %q, want %q", msg, "hello")
			}
		default:
			t.Error("Publish() did not deliver to room member")
		}
	}

	select {
	case msg := <-other.Send:
		t.Errorf("Publish() leaked %q into another room", msg)
	default:
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()

	a := newTestClient("room-1")
	b := newTestClient("room-1")
	hub.Register(a)
	hub.Register(b)

	hub.Unregister(a)

	if _, ok := <-a.Send; ok {
		t.Error("Unregister() should close the client send channel")
	}

	hub.Publish("room-1", []byte("still here"))
	select {
	case <-b.Send:
	default:
		t.Error("remaining member should still receive broadcasts")
	}

	if got := hub.RoomSize("room-1"); got != 1 {
		t.Errorf("RoomSize() = %d, want 1", got)
	}

	// Double unregister is a no-op
	hub.Unregister(a)
}

func TestHub_EmptyRoomDropped(t *testing.T) {
	hub := NewHub()

	a := newTestClient("room-1")
	hub.Register(a)
	hub.Unregister(a)

	if got := hub.RoomSize("room-1"); got != 0 {
		t.Errorf("RoomSize() after last leave = %d, want 0", got)
	}

	// Publishing into a dead room must not panic
	hub.Publish("room-1", []byte("anyone?"))
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub()

	slow := &Client{Send: make(chan []byte, 1), RoomID: "room-1"}
	hub.Register(slow)

	hub.Publish("room-1", []byte("one"))
	hub.Publish("room-1", []byte("two")) // buffer full: client is dropped

	if got := hub.RoomSize("room-1"); got != 0 {
		t.Errorf("RoomSize() after overflow = %d, want 0", got)
	}
}
