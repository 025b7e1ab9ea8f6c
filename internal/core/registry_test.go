package core

import (
	"errors"
	"testing"
)

type fakeConn struct {
	open     bool
	failSend bool
	frames   []Frame
}

func newFakeConn() *fakeConn { return &fakeConn{open: true} }

func (c *fakeConn) Open() bool { return c.open }

func (c *fakeConn) TrySend(f Frame) error {
	if c.failSend {
		return errors.New("send failed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func TestRegistryRegisterLookup(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()

	if _, ok := r.Lookup(conn); ok {
		t.Fatal("expected no session before register")
	}

	r.Register(conn, "u1", "r1")
	s, ok := r.Lookup(conn)
	if !ok {
		t.Fatal("expected session after register")
	}
	if s.UserID != "u1" || s.RoomID != "r1" {
		t.Fatalf("session = %+v, want u1/r1", s)
	}

	// Re-register overwrites, last write wins.
	r.Register(conn, "u1", "r2")
	s, _ = r.Lookup(conn)
	if s.RoomID != "r2" {
		t.Fatalf("RoomID = %s, want r2", s.RoomID)
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()

	if _, ok := r.Unregister(conn); ok {
		t.Fatal("unregister of unknown connection should report absent")
	}

	r.Register(conn, "u1", "r1")
	s, ok := r.Unregister(conn)
	if !ok {
		t.Fatal("expected prior session")
	}
	if s.UserID != "u1" {
		t.Fatalf("UserID = %s, want u1", s.UserID)
	}
	if _, ok := r.Lookup(conn); ok {
		t.Fatal("session should be gone after unregister")
	}
}

func TestRegistryConnsByUser(t *testing.T) {
	r := NewRegistry()
	a1, a2, b := newFakeConn(), newFakeConn(), newFakeConn()
	r.Register(a1, "u1", "r1")
	r.Register(a2, "u1", "r2")
	r.Register(b, "u2", "r1")

	conns := r.ConnsByUser("u1")
	if len(conns) != 2 {
		t.Fatalf("len(conns) = %d, want 2", len(conns))
	}
	if len(r.ConnsByUser("nobody")) != 0 {
		t.Fatal("expected no connections for unknown user")
	}
}

func TestRegistryBroadcastExcludesOriginAndDead(t *testing.T) {
	r := NewRegistry()
	origin, other, dead, elsewhere := newFakeConn(), newFakeConn(), newFakeConn(), newFakeConn()
	dead.open = false
	r.Register(origin, "u1", "r1")
	r.Register(other, "u2", "r1")
	r.Register(dead, "u3", "r1")
	r.Register(elsewhere, "u4", "r2")

	sent := r.Broadcast("r1", origin, Frame("hello"))
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(origin.frames) != 0 {
		t.Fatal("originating connection must not receive its own broadcast")
	}
	if len(dead.frames) != 0 {
		t.Fatal("closed connection must not receive broadcasts")
	}
	if len(elsewhere.frames) != 0 {
		t.Fatal("other rooms must not receive broadcasts")
	}
	if len(other.frames) != 1 || string(other.frames[0]) != "hello" {
		t.Fatalf("other.frames = %v, want one %q", other.frames, "hello")
	}
}

func TestRegistryBroadcastSurvivesSendFailure(t *testing.T) {
	r := NewRegistry()
	flaky, healthy := newFakeConn(), newFakeConn()
	flaky.failSend = true
	r.Register(flaky, "u1", "r1")
	r.Register(healthy, "u2", "r1")

	sent := r.Broadcast("r1", nil, Frame("x"))
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(healthy.frames) != 1 {
		t.Fatal("failure on one connection must not abort the rest")
	}
	if _, ok := r.Lookup(flaky); !ok {
		t.Fatal("failed send must not remove the connection, its close event does")
	}
}
