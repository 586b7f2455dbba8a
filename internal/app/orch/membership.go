package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// MoveResult reports what a membership move actually changed.
type MoveResult struct {
	Left   domain.RoomName
	Joined domain.RoomName
}

// MoveTo moves a connection between delivery groups: leave-old before
// join-new, at most one room at a time, idempotent for the same room.
// The whole sequence runs under the connection's own lock; moves of
// different connections proceed in parallel.
func (o *Orchestrator) MoveTo(cid core.ConnectionID, newRoom domain.RoomName) (MoveResult, error) {
	if newRoom != domain.Lobby {
		if _, ok := o.Rooms.Get(newRoom); !ok {
			return MoveResult{}, domain.ErrRoomNotFound
		}
	}

	lock, ok := o.Registry.MoveLock(cid)
	if !ok {
		// Connection vanished between the caller's lookup and now.
		return MoveResult{}, nil
	}
	lock.Lock()
	defer lock.Unlock()

	identity, ok := o.Registry.IdentityOf(cid)
	if !ok {
		return MoveResult{}, nil
	}
	entry, ok := o.Registry.Find(identity)
	if !ok {
		return MoveResult{}, nil
	}
	cur := entry.CurrentRoom
	if cur == newRoom {
		return MoveResult{}, nil
	}

	sess, ok := o.Registry.SessionOf(cid)
	if !ok {
		return MoveResult{}, nil
	}

	if cur != domain.Lobby {
		o.Groups.Remove(cur, cid)
		o.broadcastRoom(cur, core.EvRemoveUser, entry, cid)
	}
	o.Registry.UpdateRoom(identity, newRoom)
	o.Groups.Add(newRoom, cid, sess)
	if newRoom != domain.Lobby {
		o.broadcastRoom(newRoom, core.EvAddUser, entry, cid)
	}

	log.Info().Str("module", "app.orch").Str("cid", string(cid)).Str("from", string(cur)).Str("to", string(newRoom)).Msg("moved")
	return MoveResult{Left: cur, Joined: newRoom}, nil
}
