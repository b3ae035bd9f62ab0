package session

import (
	"sync"

	"collabedit/internal/models"
)

// Registry tracks which users are present in which rooms. It is a pure state
// container: no I/O, mutated only by session lifecycle methods. Per-room
// insertion order is preserved for room-users listings.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomSet
}

type roomSet struct {
	order []string
	users map[string]*models.RoomUser
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*roomSet)}
}

// Add registers a user in a room. A key collision overwrites the existing
// entry in place rather than duplicating it.
func (reg *Registry) Add(roomID string, user models.RoomUser) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	set, ok := reg.rooms[roomID]
	if !ok {
		set = &roomSet{users: make(map[string]*models.RoomUser)}
		reg.rooms[roomID] = set
	}
	if _, exists := set.users[user.ID]; !exists {
		set.order = append(set.order, user.ID)
	}
	u := user
	set.users[user.ID] = &u
}

// Remove deletes a user from a room's presence set. Removing an absent key is
// a no-op. Returns whether the key was present.
func (reg *Registry) Remove(roomID, key string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	set, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	if _, exists := set.users[key]; !exists {
		return false
	}
	delete(set.users, key)
	for i, id := range set.order {
		if id == key {
			set.order = append(set.order[:i], set.order[i+1:]...)
			break
		}
	}
	if len(set.users) == 0 {
		delete(reg.rooms, roomID)
	}
	return true
}

// List returns the room's users in join order.
func (reg *Registry) List(roomID string) []models.RoomUser {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	set, ok := reg.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]models.RoomUser, 0, len(set.order))
	for _, id := range set.order {
		out = append(out, *set.users[id])
	}
	return out
}

// UpdateCursor mutates a user's cursor in place without reinserting.
func (reg *Registry) UpdateCursor(roomID, key string, cursor models.CursorPosition) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	set, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	u, exists := set.users[key]
	if !exists {
		return false
	}
	c := cursor
	u.Cursor = &c
	return true
}

// Count reports how many users are present in a room.
func (reg *Registry) Count(roomID string) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	set, ok := reg.rooms[roomID]
	if !ok {
		return 0
	}
	return len(set.users)
}
