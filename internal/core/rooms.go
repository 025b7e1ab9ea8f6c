package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"signal-relay/internal/domain"
)

// LeaveResult reports what a Leave call dismantled.
type LeaveResult struct {
	// UserFullyLeft is true when the removed connection was the user's
	// last one in the room.
	UserFullyLeft bool
	// RoomNowEmpty is true when the user was also the room's last member.
	RoomNowEmpty bool
}

// RoomStats is a read-only per-room view for observability.
type RoomStats struct {
	UserCount    int             `json:"user_count"`
	SessionCount int             `json:"session_count"`
	Users        []domain.UserID `json:"users"`
}

// RoomIndex is the threadsafe room membership index: roomID to the set of
// member users, each with its set of active connections. A room exists
// exactly while its member mapping is non-empty; a user key exists exactly
// while its connection set is non-empty.
type RoomIndex struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]map[Conn]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[domain.RoomID]map[domain.UserID]map[Conn]struct{})}
}

// Join ensures the room and the user's connection set exist and adds conn.
// Adding an already-present connection is a no-op.
func (x *RoomIndex) Join(roomID domain.RoomID, userID domain.UserID, conn Conn) {
	x.mu.Lock()
	defer x.mu.Unlock()
	room, ok := x.rooms[roomID]
	if !ok {
		room = make(map[domain.UserID]map[Conn]struct{})
		x.rooms[roomID] = room
	}
	conns, ok := room[userID]
	if !ok {
		conns = make(map[Conn]struct{})
		room[userID] = conns
	}
	conns[conn] = struct{}{}
	log.Debug().Str("module", "core.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("member joined")
}

// Leave removes conn from the user's set, pruning the user entry and then
// the room when they empty out. Leaving with an unknown room, user or
// connection is a no-op with both flags false.
func (x *RoomIndex) Leave(roomID domain.RoomID, userID domain.UserID, conn Conn) LeaveResult {
	x.mu.Lock()
	defer x.mu.Unlock()
	var res LeaveResult
	room, ok := x.rooms[roomID]
	if !ok {
		return res
	}
	conns, ok := room[userID]
	if !ok {
		return res
	}
	if _, ok := conns[conn]; !ok {
		return res
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(room, userID)
		res.UserFullyLeft = true
	}
	if len(room) == 0 {
		delete(x.rooms, roomID)
		res.RoomNowEmpty = true
	}
	log.Debug().Str("module", "core.rooms").Str("room", string(roomID)).Str("user", string(userID)).Bool("user_left", res.UserFullyLeft).Bool("room_empty", res.RoomNowEmpty).Msg("member left")
	return res
}

// Members returns the distinct users in roomID, order unspecified.
func (x *RoomIndex) Members(roomID domain.RoomID) []domain.UserID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	room, ok := x.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.UserID, 0, len(room))
	for userID := range room {
		out = append(out, userID)
	}
	return out
}

// Stats snapshots every room for observability.
func (x *RoomIndex) Stats() map[domain.RoomID]RoomStats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make(map[domain.RoomID]RoomStats, len(x.rooms))
	for roomID, room := range x.rooms {
		st := RoomStats{
			UserCount: len(room),
			Users:     make([]domain.UserID, 0, len(room)),
		}
		for userID, conns := range room {
			st.Users = append(st.Users, userID)
			st.SessionCount += len(conns)
		}
		out[roomID] = st
	}
	return out
}
