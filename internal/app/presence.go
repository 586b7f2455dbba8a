package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

type connEntry struct {
	identity domain.Identity
	session  core.Session
	cancel   context.CancelFunc
	// move serializes membership transitions for this connection only;
	// different connections proceed in parallel.
	move sync.Mutex
}

// Registry is the authoritative presence table: one canonical row per
// online identity, a retained row per known identity, and the
// connection→identity map. All access goes through one lock; reads
// return snapshots, never the stored rows.
type Registry struct {
	mu     sync.RWMutex
	online map[domain.Identity]*domain.PresenceEntry
	known  map[domain.Identity]*domain.PresenceEntry
	conns  map[core.ConnectionID]*connEntry
	byUser map[domain.Identity]map[core.ConnectionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		online: make(map[domain.Identity]*domain.PresenceEntry),
		known:  make(map[domain.Identity]*domain.PresenceEntry),
		conns:  make(map[core.ConnectionID]*connEntry),
		byUser: make(map[domain.Identity]map[core.ConnectionID]struct{}),
	}
}

// RegisterOrReplace installs the canonical row for an identity. An
// existing row is replaced in the same critical section, so no reader
// ever observes two rows for one identity.
func (r *Registry) RegisterOrReplace(e *domain.PresenceEntry) *domain.PresenceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[e.Identity] = e
	r.known[e.Identity] = e
	log.Info().Str("module", "app.presence").Str("identity", string(e.Identity)).Str("device", string(e.Device)).Msg("presence registered")
	return e
}

// Remove drops the live row. Absent identity is a no-op so a disconnect
// racing ahead of a connect stays harmless.
func (r *Registry) Remove(identity domain.Identity) (*domain.PresenceEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.online[identity]
	if !ok {
		return nil, false
	}
	delete(r.online, identity)
	log.Info().Str("module", "app.presence").Str("identity", string(identity)).Msg("presence removed")
	return e, true
}

func (r *Registry) Find(identity domain.Identity) (*domain.PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.online[identity]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

// Known returns the retained row for an identity, online or not.
func (r *Registry) Known(identity domain.Identity) (*domain.PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.known[identity]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

// UpdateRoom moves the canonical row to a new current room.
func (r *Registry) UpdateRoom(identity domain.Identity, room domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.online[identity]
	if !ok {
		return false
	}
	e.CurrentRoom = room
	log.Info().Str("module", "app.presence").Str("identity", string(identity)).Str("room", string(room)).Msg("updated room")
	return true
}

// RetainOffline keeps a device-cleared row enumerable in the known-users
// view. Keyed by identity, replace-on-write.
func (r *Registry) RetainOffline(e *domain.PresenceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[e.Identity] = e
}

// ListOnline snapshots the live rows.
func (r *Registry) ListOnline() []*domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.PresenceEntry, 0, len(r.online))
	for _, e := range r.online {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// ListKnown snapshots every identity ever seen, online or not.
func (r *Registry) ListKnown() []*domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.PresenceEntry, 0, len(r.known))
	for _, e := range r.known {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// BindConnection records a live connection under its identity.
func (r *Registry) BindConnection(cid core.ConnectionID, identity domain.Identity, sess core.Session, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = &connEntry{identity: identity, session: sess, cancel: cancel}
	set, ok := r.byUser[identity]
	if !ok {
		set = make(map[core.ConnectionID]struct{})
		r.byUser[identity] = set
	}
	set[cid] = struct{}{}
	log.Info().Str("module", "app.presence").Str("cid", string(cid)).Str("identity", string(identity)).Msg("bound connection")
}

// UnbindConnection drops the connection→identity mapping. Idempotent.
func (r *Registry) UnbindConnection(cid core.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return
	}
	delete(r.conns, cid)
	if set, ok := r.byUser[e.identity]; ok {
		delete(set, cid)
		if len(set) == 0 {
			delete(r.byUser, e.identity)
		}
	}
	log.Info().Str("module", "app.presence").Str("cid", string(cid)).Msg("unbound connection")
}

func (r *Registry) IdentityOf(cid core.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok {
		return "", false
	}
	return e.identity, true
}

func (r *Registry) SessionOf(cid core.ConnectionID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return e.session, true
}

type connSnap struct {
	CID     core.ConnectionID
	Session core.Session
}

// SessionsOf snapshots the live connections of one identity.
func (r *Registry) SessionsOf(identity domain.Identity) []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]connSnap, 0, 1)
	for cid := range r.byUser[identity] {
		if e, ok := r.conns[cid]; ok {
			out = append(out, connSnap{CID: cid, Session: e.session})
		}
	}
	return out
}

// AllSessions snapshots every live connection, for relay-wide events.
func (r *Registry) AllSessions() []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]connSnap, 0, len(r.conns))
	for cid, e := range r.conns {
		out = append(out, connSnap{CID: cid, Session: e.session})
	}
	return out
}

// MoveLock returns the per-connection membership lock. The caller holds
// it for the whole leave-old/join-new sequence.
func (r *Registry) MoveLock(cid core.ConnectionID) (*sync.Mutex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return &e.move, true
}

// Cancel fires the connection's cancel func, if any.
func (r *Registry) Cancel(cid core.ConnectionID) bool {
	r.mu.RLock()
	e, ok := r.conns[cid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.presence").Str("cid", string(cid)).Msg("canceled connection")
	return true
}
