package orch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// CreateRoom durably creates a room, mirrors it into the directory and
// announces it to every live connection. On storage failure nothing is
// mirrored and the error goes back to the caller.
func (o *Orchestrator) CreateRoom(ctx context.Context, owner domain.Identity, name domain.RoomName) (*domain.Room, error) {
	room, err := o.Store.CreateRoom(ctx, name, owner)
	if err != nil {
		return nil, err
	}
	o.Rooms.Put(room)
	o.broadcastAll(core.EvAddChatRoom, room)
	log.Info().Str("module", "app.orch").Str("room", string(name)).Str("owner", string(owner)).Msg("room created")
	return room, nil
}

// DeleteRoom durably deletes a room (owner only), moves its members
// back to the lobby and announces the removal relay-wide.
func (o *Orchestrator) DeleteRoom(ctx context.Context, requester domain.Identity, name domain.RoomName) error {
	room, err := o.Store.DeleteRoom(ctx, name, requester)
	if err != nil {
		return err
	}
	o.Rooms.Drop(name)

	o.broadcastRoom(name, core.EvRoomDeleted,
		fmt.Sprintf("Room %s has been deleted.\nYou are now moved to the Lobby!", name), "")
	for _, m := range o.Groups.Drop(name) {
		if identity, ok := o.Registry.IdentityOf(m.CID); ok {
			o.Registry.UpdateRoom(identity, domain.Lobby)
		}
	}

	o.broadcastAll(core.EvRemoveChatRoom, room)
	log.Info().Str("module", "app.orch").Str("room", string(name)).Msg("room deleted")
	return nil
}

// ListRooms snapshots the room directory.
func (o *Orchestrator) ListRooms() []*domain.Room {
	return o.Rooms.List()
}

// OnlineUsers snapshots the live presence rows.
func (o *Orchestrator) OnlineUsers() []*domain.PresenceEntry {
	return o.Registry.ListOnline()
}

// KnownUsers lists every identity ever seen except the caller's own.
func (o *Orchestrator) KnownUsers(except domain.Identity) []*domain.PresenceEntry {
	all := o.Registry.ListKnown()
	out := make([]*domain.PresenceEntry, 0, len(all))
	for _, e := range all {
		if e.Identity == except {
			continue
		}
		out = append(out, e)
	}
	return out
}

// JoinDurable records a lasting user-room membership.
func (o *Orchestrator) JoinDurable(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error {
	return o.Store.AddUserToRoom(ctx, identity, roomID)
}

// DurableRoomsOf lists a user's lasting memberships.
func (o *Orchestrator) DurableRoomsOf(ctx context.Context, identity domain.Identity) ([]*domain.Room, error) {
	return o.Store.RoomsOfUser(ctx, identity)
}

// DurableMembersOf lists the users with a lasting membership in a room.
func (o *Orchestrator) DurableMembersOf(ctx context.Context, roomID domain.RoomID) ([]*domain.User, error) {
	return o.Store.MembersOfRoom(ctx, roomID)
}
