package realtime

import (
	"sync"

	"classroom-live-service/internal/domain"
)

// Registry tracks which sessions belong to which rooms. State is process-local
// and in-memory; a room with zero members is dropped eagerly since rooms hold
// no state of their own.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomKey]map[string]struct{}
	sessions map[string]map[domain.RoomKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[domain.RoomKey]map[string]struct{}),
		sessions: make(map[string]map[domain.RoomKey]struct{}),
	}
}

// Join adds a session to a room. Duplicate joins are a no-op.
func (r *Registry) Join(sessionID string, room domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[sessionID] = struct{}{}

	joined, ok := r.sessions[sessionID]
	if !ok {
		joined = make(map[domain.RoomKey]struct{})
		r.sessions[sessionID] = joined
	}
	joined[room] = struct{}{}
}

// Leave removes a session from a room. Absent membership is a no-op.
func (r *Registry) Leave(sessionID string, room domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sessionID, room)
}

func (r *Registry) leaveLocked(sessionID string, room domain.RoomKey) {
	if members, ok := r.rooms[room]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if joined, ok := r.sessions[sessionID]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// MembersOf returns a copy of the room's current member set.
func (r *Registry) MembersOf(room domain.RoomKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// DropSession removes the session from every room it belongs to.
// Called once per disconnect.
func (r *Registry) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.sessions[sessionID] {
		r.leaveLocked(sessionID, room)
	}
	delete(r.sessions, sessionID)
}
