package ws

import (
	"sync"
)

// Hub is the per-process broadcast registry, keyed by room id. It only
// tracks live subscriber handles for fan-out; presence itself is derived
// from persisted ActiveConnection rows, never from this map.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Register adds a client to its room's broadcast group.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.rooms[client.RoomID]
	if !ok {
		group = make(map[*Client]bool)
		h.rooms[client.RoomID] = group
	}
	group[client] = true
}

// Unregister removes a client and closes its send channel. Empty groups are
// dropped so the map does not grow with dead room ids.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.rooms[client.RoomID]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}
	delete(group, client)
	close(client.Send)
	if len(group) == 0 {
		delete(h.rooms, client.RoomID)
	}
}

// Publish fans a frame out to every client in the room, including the
// sender. Clients with a full send buffer are dropped.
func (h *Hub) Publish(roomID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.rooms[roomID], client)
		}
	}
}

// RoomSize returns the number of live subscriber handles for a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
