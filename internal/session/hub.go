package session

import (
	"sync"

	"collabedit/internal/models"
)

// Hub owns the per-room broadcast groups: which transport clients are
// subscribed to which room. Presence semantics live in Registry; the Hub only
// fans frames out.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Subscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[roomID]
	if !ok {
		group = make(map[*Client]struct{})
		h.rooms[roomID] = group
	}
	group[c] = struct{}{}
}

func (h *Hub) Unsubscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast fans a frame out to every client in the room except the sender.
func (h *Hub) Broadcast(roomID string, sender *Client, frame models.WSFrame) {
	for _, c := range h.members(roomID) {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll fans a frame out to every client in the room, sender included.
func (h *Hub) BroadcastAll(roomID string, frame models.WSFrame) {
	for _, c := range h.members(roomID) {
		c.Send(frame)
	}
}

func (h *Hub) members(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	group := h.rooms[roomID]
	out := make([]*Client, 0, len(group))
	for c := range group {
		out = append(out, c)
	}
	return out
}

// RoomCount reports how many rooms currently have subscribers.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
