// Package registry keeps the in-memory projection of active rooms that
// drives real-time room-list and suggestion broadcasts.
//
// The registry is a cache, never the system of record. It is written only at
// synchronization points: startup load, room create/join/leave/accept, room
// retirement (delete or last participant leaving) and explicit reconcile.
package registry

import (
	"sync"

	"github.com/CUknot/studymatch_backend/models"
)

// Entry is the broadcast form of an active room.
type Entry struct {
	RoomID       uint   `json:"roomId"`
	Host         uint   `json:"host"`
	Participants []uint `json:"participants"`
	Subject      string `json:"subject"`
	Type         string `json:"type"`
	RoomName     string `json:"roomName"`
	MeetLink     string `json:"meetLink"`
}

func EntryFromRoom(room *models.Room) Entry {
	return Entry{
		RoomID:       room.ID,
		Host:         room.HostID,
		Participants: append([]uint{}, room.Participants...),
		Subject:      room.Subject,
		Type:         room.Type,
		RoomName:     room.RoomName,
		MeetLink:     room.MeetLink,
	}
}

// IsMember reports whether userID hosts or participates in the room.
func (e Entry) IsMember(userID uint) bool {
	if e.Host == userID {
		return true
	}
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type Registry struct {
	mu      sync.RWMutex
	entries map[uint]Entry
	order   []uint
}

func New() *Registry {
	return &Registry{entries: make(map[uint]Entry)}
}

// Replace drops every entry and loads the given active rooms in order.
func (r *Registry) Replace(rooms []models.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[uint]Entry, len(rooms))
	r.order = r.order[:0]
	for i := range rooms {
		if !rooms[i].IsActive() {
			continue
		}
		r.putLocked(EntryFromRoom(&rooms[i]))
	}
}

// Sync mirrors room into the registry: active rooms are inserted or
// refreshed, anything else is evicted. It reports whether an entry exists
// afterwards.
func (r *Registry) Sync(room *models.Room) bool {
	if !room.IsActive() {
		r.Evict(room.ID)
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putLocked(EntryFromRoom(room))
	return true
}

func (r *Registry) putLocked(e Entry) {
	if _, ok := r.entries[e.RoomID]; !ok {
		r.order = append(r.order, e.RoomID)
	}
	r.entries[e.RoomID] = e
}

// Evict removes roomID and reports whether it was present.
func (r *Registry) Evict(roomID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[roomID]; !ok {
		return false
	}
	delete(r.entries, roomID)
	for i, id := range r.order {
		if id == roomID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Get(roomID uint) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[roomID]
	if !ok {
		return Entry{}, false
	}
	e.Participants = append([]uint{}, e.Participants...)
	return e, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns every entry in insertion order.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		e.Participants = append([]uint{}, e.Participants...)
		out = append(out, e)
	}
	return out
}

// Suggested applies the suggestion policy to the cached rooms: the subject
// must equal one of subjects ignoring case, and userID must be neither host
// nor participant.
func (r *Registry) Suggested(userID uint, subjects []string) []Entry {
	out := []Entry{}
	if len(subjects) == 0 {
		return out
	}
	for _, e := range r.Snapshot() {
		if e.IsMember(userID) {
			continue
		}
		if models.SubjectMatchesAny(e.Subject, subjects) {
			out = append(out, e)
		}
	}
	return out
}
