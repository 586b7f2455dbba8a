package core

import (
	"sync"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Groups is the threadsafe room-name → delivery-group table. It owns
// membership sets only; it never closes adapter-owned resources.
type Groups struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]map[ConnectionID]Session
}

func NewGroups() *Groups {
	return &Groups{rooms: make(map[domain.RoomName]map[ConnectionID]Session)}
}

// Add subscribes a connection to a room's broadcasts. Adding to the
// lobby is a no-op, the lobby has no delivery group.
func (g *Groups) Add(name domain.RoomName, cid ConnectionID, s Session) {
	if name == domain.Lobby {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	members, ok := g.rooms[name]
	if !ok {
		members = make(map[ConnectionID]Session)
		g.rooms[name] = members
	}
	members[cid] = s
	log.Debug().Str("module", "core.groups").Str("room", string(name)).Str("cid", string(cid)).Msg("member added")
}

// Remove unsubscribes a connection. Unknown room or member is a no-op.
func (g *Groups) Remove(name domain.RoomName, cid ConnectionID) {
	if name == domain.Lobby {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	members, ok := g.rooms[name]
	if !ok {
		return
	}
	delete(members, cid)
	if len(members) == 0 {
		delete(g.rooms, name)
	}
	log.Debug().Str("module", "core.groups").Str("room", string(name)).Str("cid", string(cid)).Msg("member removed")
}

// Drop deletes a whole delivery group and returns its former members.
func (g *Groups) Drop(name domain.RoomName) []MemberRef {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := g.rooms[name]
	delete(g.rooms, name)
	out := make([]MemberRef, 0, len(members))
	for cid, s := range members {
		out = append(out, MemberRef{CID: cid, Session: s})
	}
	return out
}

// MemberRef is a read-only snapshot row of a delivery group.
type MemberRef struct {
	CID     ConnectionID
	Session Session
}

// Members returns a snapshot of a room's delivery group.
func (g *Groups) Members(name domain.RoomName) []MemberRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	members := g.rooms[name]
	out := make([]MemberRef, 0, len(members))
	for cid, s := range members {
		out = append(out, MemberRef{CID: cid, Session: s})
	}
	return out
}

// Contains reports whether the connection is subscribed to the room.
func (g *Groups) Contains(name domain.RoomName, cid ConnectionID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rooms[name][cid]
	return ok
}

// RoomsOf returns every room whose group holds the connection. With the
// at-most-one-room invariant the result has length zero or one.
func (g *Groups) RoomsOf(cid ConnectionID) []domain.RoomName {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []domain.RoomName
	for name, members := range g.rooms {
		if _, ok := members[cid]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Broadcast fans a frame out to the room's group, skipping except.
// Fire-and-forget: a recipient whose send buffer is full or whose
// connection already closed is recorded as dropped, nothing more.
func (g *Groups) Broadcast(name domain.RoomName, frame Frame, except ConnectionID) PublishResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res := PublishResult{}
	for cid, s := range g.rooms[name] {
		if cid == except {
			continue
		}
		if err := s.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, cid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.groups").Str("room", string(name)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
