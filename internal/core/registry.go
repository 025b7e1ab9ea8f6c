package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"signal-relay/internal/domain"
)

// Session binds one connection to one authenticated user within one room.
type Session struct {
	UserID domain.UserID
	RoomID domain.RoomID
	Conn   Conn
}

// Registry is the threadsafe session registry: which live connection belongs
// to which user and room. A connection appears here at most once.
type Registry struct {
	mu       sync.RWMutex
	sessions map[Conn]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Conn]Session)}
}

// Register inserts or overwrites the session for conn. Last write wins.
func (r *Registry) Register(conn Conn, userID domain.UserID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = Session{UserID: userID, RoomID: roomID, Conn: conn}
	log.Debug().Str("module", "core.registry").Str("user", string(userID)).Str("room", string(roomID)).Msg("session registered")
}

func (r *Registry) Lookup(conn Conn) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[conn]
	return s, ok
}

// Unregister removes and returns the prior session for conn. The second
// return is false when the connection never joined a room.
func (r *Registry) Unregister(conn Conn) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[conn]
	if ok {
		delete(r.sessions, conn)
		log.Debug().Str("module", "core.registry").Str("user", string(s.UserID)).Str("room", string(s.RoomID)).Msg("session unregistered")
	}
	return s, ok
}

// ConnsByUser returns every registered connection of userID, across rooms.
// Linear scan over all sessions; fine at the scale a single relay serves.
func (r *Registry) ConnsByUser(userID domain.UserID) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Conn
	for conn, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, conn)
		}
	}
	return out
}

// Broadcast sends f to every open connection whose session is in roomID,
// except the originating one. A failed send to one member never aborts the
// rest. Returns how many sends succeeded.
func (r *Registry) Broadcast(roomID domain.RoomID, except Conn, f Frame) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sent := 0
	for conn, s := range r.sessions {
		if s.RoomID != roomID || conn == except {
			continue
		}
		if !conn.Open() {
			continue
		}
		if err := conn.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "core.registry").Str("room", string(roomID)).Str("user", string(s.UserID)).Msg("broadcast send dropped")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.registry").Str("room", string(roomID)).Int("sent_to", sent).Msg("broadcast result")
	return sent
}
