package core

import (
	"sync"

	"github.com/vovakirdan/polychat-server/internal/lang"
)

// Member is a snapshot of one joined connection. Mutating it does not affect the registry.
type Member struct {
	ConnID   string
	UserID   string
	RoomID   string
	Language string
	Client   *Client
}

// Registry tracks which room and language each live connection belongs to.
// It is the only writer of connection membership.
type Registry struct {
	mu           sync.RWMutex
	conns        map[string]*Member
	rooms        map[string]map[string]struct{}
	baseLanguage string
}

// NewRegistry creates an empty registry. Connections joining without a
// language get baseLanguage.
func NewRegistry(baseLanguage string) *Registry {
	return &Registry{
		conns:        make(map[string]*Member),
		rooms:        make(map[string]map[string]struct{}),
		baseLanguage: lang.Resolve(baseLanguage, lang.Default),
	}
}

// Join puts the client in roomID, replacing any previous membership. It
// returns the room the client was in before, or "".
func (r *Registry) Join(client *Client, roomID, userID, language string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := ""
	if m, ok := r.conns[client.ID]; ok {
		previous = m.RoomID
		r.removeFromRoomLocked(m.RoomID, client.ID)
	}

	r.conns[client.ID] = &Member{
		ConnID:   client.ID,
		UserID:   userID,
		RoomID:   roomID,
		Language: lang.Resolve(language, r.baseLanguage),
		Client:   client,
	}

	set, ok := r.rooms[roomID]
	if !ok {
		set = make(map[string]struct{})
		r.rooms[roomID] = set
	}
	set[client.ID] = struct{}{}

	return previous
}

// MembersOf returns a consistent snapshot of the connections in roomID.
func (r *Registry) MembersOf(roomID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.rooms[roomID]
	members := make([]Member, 0, len(set))
	for connID := range set {
		members = append(members, *r.conns[connID])
	}
	return members
}

// Lookup returns the snapshot of a joined connection.
func (r *Registry) Lookup(connID string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.conns[connID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Leave forgets a connection. It returns the removed snapshot, if any.
func (r *Registry) Leave(connID string) (Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.conns[connID]
	if !ok {
		return Member{}, false
	}
	delete(r.conns, connID)
	r.removeFromRoomLocked(m.RoomID, connID)
	return *m, true
}

// RoomSize returns the number of connections in roomID.
func (r *Registry) RoomSize(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Connections returns the number of joined connections.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Rooms returns the number of non-empty rooms.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) removeFromRoomLocked(roomID, connID string) {
	set, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.rooms, roomID)
	}
}
