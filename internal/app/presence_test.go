package app

import (
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

func entryFor(identity domain.Identity, device domain.DeviceClass) *domain.PresenceEntry {
	return &domain.PresenceEntry{
		Identity:    identity,
		UserID:      "u-" + string(identity),
		DisplayName: string(identity),
		Device:      device,
	}
}

func TestRegisterOrReplaceCollapses(t *testing.T) {
	r := NewRegistry()

	r.RegisterOrReplace(entryFor("alice", domain.DeviceMobile))
	r.RegisterOrReplace(entryFor("alice", domain.DeviceDesktop))

	online := r.ListOnline()
	if len(online) != 1 {
		t.Fatalf("expected 1 row, got %d", len(online))
	}
	if online[0].Device != domain.DeviceDesktop {
		t.Errorf("expected replacement row, got device %q", online[0].Device)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Remove("nobody"); ok {
		t.Fatal("expected absent result")
	}
}

func TestFindReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.RegisterOrReplace(entryFor("alice", domain.DeviceWeb))

	e, ok := r.Find("alice")
	if !ok {
		t.Fatal("expected entry")
	}
	e.CurrentRoom = "scribbled"

	again, _ := r.Find("alice")
	if again.CurrentRoom != domain.Lobby {
		t.Error("caller mutation leaked into the registry")
	}
}

func TestRetainOfflineReplacesByIdentity(t *testing.T) {
	r := NewRegistry()
	e := r.RegisterOrReplace(entryFor("alice", domain.DeviceWeb))
	r.Remove("alice")
	r.RetainOffline(e.Offline())
	r.RetainOffline(e.Offline())

	known := r.ListKnown()
	if len(known) != 1 {
		t.Fatalf("expected 1 known row, got %d", len(known))
	}
	if known[0].Device != domain.DeviceOffline {
		t.Errorf("expected offline marker, got %q", known[0].Device)
	}
	if len(r.ListOnline()) != 0 {
		t.Error("expected empty online view")
	}
}

func TestConnectionMapping(t *testing.T) {
	r := NewRegistry()
	sess := core.NewSession("alice", nil)

	r.BindConnection("c1", "alice", sess, nil)
	r.BindConnection("c2", "alice", sess, nil)

	if id, ok := r.IdentityOf("c1"); !ok || id != "alice" {
		t.Fatalf("unexpected identity mapping: %q %v", id, ok)
	}
	if got := r.SessionsOf("alice"); len(got) != 2 {
		t.Fatalf("expected 2 live connections, got %d", len(got))
	}

	r.UnbindConnection("c1")
	r.UnbindConnection("c1")
	if got := r.SessionsOf("alice"); len(got) != 1 {
		t.Fatalf("expected 1 live connection after unbind, got %d", len(got))
	}
	if _, ok := r.IdentityOf("c1"); ok {
		t.Error("expected c1 unmapped")
	}
}

func TestCancelFiresTheStoredFunc(t *testing.T) {
	r := NewRegistry()
	fired := false
	r.BindConnection("c1", "alice", core.NewSession("alice", nil), func() { fired = true })

	if !r.Cancel("c1") {
		t.Fatal("expected Cancel to find the connection")
	}
	if !fired {
		t.Error("stored cancel func did not fire")
	}
	if r.Cancel("unknown") {
		t.Error("expected absent result for an unknown connection")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := domain.Identity(rune('a' + n%8))
			r.RegisterOrReplace(entryFor(id, domain.DeviceWeb))
			r.Find(id)
			r.ListOnline()
			if n%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	// Whatever interleaving happened, no identity may have two rows.
	seen := make(map[domain.Identity]bool)
	for _, e := range r.ListOnline() {
		if seen[e.Identity] {
			t.Fatalf("duplicate row for %q", e.Identity)
		}
		seen[e.Identity] = true
	}
}
