// Package orch coordinates presence, room membership and message
// delivery across concurrent connections. All storage I/O happens
// before in-memory state is touched, never under a lock.
package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// Gateway is the persistence boundary the orchestrator depends on.
type Gateway interface {
	FindUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateRoom(ctx context.Context, name domain.RoomName, owner domain.Identity) (*domain.Room, error)
	DeleteRoom(ctx context.Context, name domain.RoomName, requester domain.Identity) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]*domain.Room, error)
	AppendRoomMessage(ctx context.Context, from domain.Identity, room domain.RoomName, content string) (*domain.MessageView, error)
	AppendPrivateMessage(ctx context.Context, from, to domain.Identity, content string) (*domain.MessageView, error)
	RoomHistory(ctx context.Context, room domain.RoomName, limit int) ([]*domain.MessageView, error)
	PrivateHistory(ctx context.Context, a, b domain.Identity, limit int) ([]*domain.MessageView, error)
	AddUserToRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error
	RoomsOfUser(ctx context.Context, identity domain.Identity) ([]*domain.Room, error)
	MembersOfRoom(ctx context.Context, roomID domain.RoomID) ([]*domain.User, error)
}

// DefaultHistoryLimit bounds history queries when the config leaves the
// limit unset.
const DefaultHistoryLimit = 20

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Directory
	Groups   *core.Groups
	Store    Gateway
	Sanitize core.Sanitizer

	HistoryLimit int
}

func (o *Orchestrator) historyLimit() int {
	if o.HistoryLimit > 0 {
		return o.HistoryLimit
	}
	return DefaultHistoryLimit
}

// emit sends one event to one session, fire-and-forget. A full buffer
// or a connection that vanished between lookup and send is benign.
func (o *Orchestrator) emit(s core.Session, typ string, payload any) {
	if s == nil {
		return
	}
	frame, ok := core.Encode(typ, payload)
	if !ok {
		return
	}
	if err := s.Signal().TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.orch").Str("type", typ).Msg("emit dropped")
	}
}

func (o *Orchestrator) emitTo(cid core.ConnectionID, typ string, payload any) {
	if s, ok := o.Registry.SessionOf(cid); ok {
		o.emit(s, typ, payload)
	}
}

// broadcastRoom fans an event out to a room's delivery group.
func (o *Orchestrator) broadcastRoom(room domain.RoomName, typ string, payload any, except core.ConnectionID) {
	frame, ok := core.Encode(typ, payload)
	if !ok {
		return
	}
	o.Groups.Broadcast(room, frame, except)
}

// broadcastAll fans an event out to every live connection.
func (o *Orchestrator) broadcastAll(typ string, payload any) {
	frame, ok := core.Encode(typ, payload)
	if !ok {
		return
	}
	for _, snap := range o.Registry.AllSessions() {
		if err := snap.Session.Signal().TrySend(frame); err != nil {
			log.Debug().Err(err).Str("module", "app.orch").Str("cid", string(snap.CID)).Msg("broadcast dropped")
		}
	}
}
