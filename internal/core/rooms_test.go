package core

import (
	"testing"

	"signal-relay/internal/domain"
)

func containsUser(users []domain.UserID, want domain.UserID) bool {
	for _, u := range users {
		if u == want {
			return true
		}
	}
	return false
}

func TestRoomIndexJoinAndMembers(t *testing.T) {
	x := NewRoomIndex()
	a, b := newFakeConn(), newFakeConn()

	x.Join("r1", "u1", a)
	x.Join("r1", "u2", b)
	// Duplicate join is a no-op under set semantics.
	x.Join("r1", "u1", a)

	members := x.Members("r1")
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	if !containsUser(members, "u1") || !containsUser(members, "u2") {
		t.Fatalf("members = %v, want u1 and u2", members)
	}
	if len(x.Members("unknown")) != 0 {
		t.Fatal("unknown room should have no members")
	}
}

func TestRoomIndexLeaveFlags(t *testing.T) {
	x := NewRoomIndex()
	a1, a2, b := newFakeConn(), newFakeConn(), newFakeConn()
	x.Join("r1", "u1", a1)
	x.Join("r1", "u1", a2)
	x.Join("r1", "u2", b)

	// First of two sessions: user stays.
	res := x.Leave("r1", "u1", a1)
	if res.UserFullyLeft || res.RoomNowEmpty {
		t.Fatalf("res = %+v, want both false while a second session remains", res)
	}
	if !containsUser(x.Members("r1"), "u1") {
		t.Fatal("u1 should still be a member via its second session")
	}

	// Last session: user leaves, room still has u2.
	res = x.Leave("r1", "u1", a2)
	if !res.UserFullyLeft || res.RoomNowEmpty {
		t.Fatalf("res = %+v, want UserFullyLeft only", res)
	}

	// Last member: room disappears.
	res = x.Leave("r1", "u2", b)
	if !res.UserFullyLeft || !res.RoomNowEmpty {
		t.Fatalf("res = %+v, want both true", res)
	}
	if len(x.Stats()) != 0 {
		t.Fatal("empty room must be removed from the index")
	}
}

func TestRoomIndexLeaveUnknownIsNoop(t *testing.T) {
	x := NewRoomIndex()
	a := newFakeConn()
	x.Join("r1", "u1", a)

	cases := []struct {
		name string
		room domain.RoomID
		user domain.UserID
		conn Conn
	}{
		{"unknown room", "nope", "u1", a},
		{"unknown user", "r1", "nope", a},
		{"unknown conn", "r1", "u1", newFakeConn()},
	}
	for _, tc := range cases {
		res := x.Leave(tc.room, tc.user, tc.conn)
		if res.UserFullyLeft || res.RoomNowEmpty {
			t.Errorf("%s: res = %+v, want both false", tc.name, res)
		}
	}
	if !containsUser(x.Members("r1"), "u1") {
		t.Fatal("no-op leaves must not disturb existing membership")
	}
}

func TestRoomIndexStats(t *testing.T) {
	x := NewRoomIndex()
	a1, a2, b, c := newFakeConn(), newFakeConn(), newFakeConn(), newFakeConn()
	x.Join("r1", "u1", a1)
	x.Join("r1", "u1", a2)
	x.Join("r1", "u2", b)
	x.Join("r2", "u3", c)

	stats := x.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}
	r1 := stats["r1"]
	if r1.UserCount != 2 {
		t.Errorf("r1.UserCount = %d, want 2", r1.UserCount)
	}
	if r1.SessionCount != 3 {
		t.Errorf("r1.SessionCount = %d, want 3", r1.SessionCount)
	}
	if len(r1.Users) != 2 {
		t.Errorf("len(r1.Users) = %d, want 2", len(r1.Users))
	}
	r2 := stats["r2"]
	if r2.UserCount != 1 || r2.SessionCount != 1 {
		t.Errorf("r2 = %+v, want one user with one session", r2)
	}
}
