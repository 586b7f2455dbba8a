package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/domain"
)

type stubConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (s *stubConn) TrySend(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("buffer full")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *stubConn) Close() {}

func (s *stubConn) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestGroupsAddRemove(t *testing.T) {
	g := NewGroups()
	g.Add("R1", "c1", NewSession("alice", &stubConn{}))

	if !g.Contains("R1", "c1") {
		t.Fatal("expected membership after Add")
	}
	g.Remove("R1", "c1")
	if g.Contains("R1", "c1") {
		t.Fatal("expected no membership after Remove")
	}
	// Unknown room/member removals are no-ops.
	g.Remove("R1", "c1")
	g.Remove("nope", "c1")
}

func TestGroupsLobbyHasNoGroup(t *testing.T) {
	g := NewGroups()
	g.Add(domain.Lobby, "c1", NewSession("alice", &stubConn{}))
	if len(g.RoomsOf("c1")) != 0 {
		t.Fatal("the lobby must not hold a delivery group")
	}
}

func TestGroupsBroadcastExcludesSender(t *testing.T) {
	g := NewGroups()
	a, b, c := &stubConn{}, &stubConn{}, &stubConn{}
	g.Add("R1", "ca", NewSession("alice", a))
	g.Add("R1", "cb", NewSession("bob", b))
	g.Add("R2", "cc", NewSession("carol", c))

	res := g.Broadcast("R1", Frame("x"), "ca")
	if res.SentTo != 1 {
		t.Fatalf("expected 1 recipient, got %d", res.SentTo)
	}
	if a.count() != 0 || b.count() != 1 || c.count() != 0 {
		t.Fatalf("unexpected deliveries: a=%d b=%d c=%d", a.count(), b.count(), c.count())
	}
}

func TestGroupsBroadcastDroppedIsBenign(t *testing.T) {
	g := NewGroups()
	slow := &stubConn{fail: true}
	ok := &stubConn{}
	g.Add("R1", "c1", NewSession("alice", slow))
	g.Add("R1", "c2", NewSession("bob", ok))

	res := g.Broadcast("R1", Frame("x"), "")
	if res.SentTo != 1 || len(res.Dropped) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if ok.count() != 1 {
		t.Error("a dropped recipient must not affect the others")
	}
}

func TestGroupsDrop(t *testing.T) {
	g := NewGroups()
	g.Add("R1", "c1", NewSession("alice", &stubConn{}))
	g.Add("R1", "c2", NewSession("bob", &stubConn{}))

	members := g.Drop("R1")
	if len(members) != 2 {
		t.Fatalf("expected 2 former members, got %d", len(members))
	}
	if len(g.Members("R1")) != 0 {
		t.Error("expected empty group after Drop")
	}
}
