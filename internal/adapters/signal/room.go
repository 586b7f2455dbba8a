package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

func (ctl *Controller) handleJoin(cid core.ConnectionID, c *WsConn, data []byte) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad payload")
		return
	}

	name := domain.RoomName(p.Room)
	if _, err := ctl.Orch.MoveTo(cid, name); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Str("room", p.Room).Msg("join failed")
		ctl.sendError(c, "You failed to join the chat room!")
		return
	}

	occupants := make([]*domain.PresenceEntry, 0)
	for _, e := range ctl.Orch.OnlineUsers() {
		if e.CurrentRoom == name {
			occupants = append(occupants, e)
		}
	}
	ctl.sendEvent(c, "roomState", struct {
		Room  string                  `json:"room"`
		Users []*domain.PresenceEntry `json:"users"`
	}{Room: p.Room, Users: occupants})
}

func (ctl *Controller) handleCreateRoom(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	type createPayload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad createRoom payload")
		ctl.sendError(c, "bad payload")
		return
	}
	identity, ok := ctl.Orch.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	if _, err := ctl.Orch.CreateRoom(ctx, identity, domain.RoomName(p.Name)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", p.Name).Msg("create room failed")
		ctl.sendError(c, "Couldn't create chat room: "+err.Error())
	}
}

func (ctl *Controller) handleDeleteRoom(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	type deletePayload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p deletePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad deleteRoom payload")
		ctl.sendError(c, "bad payload")
		return
	}
	identity, ok := ctl.Orch.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	if err := ctl.Orch.DeleteRoom(ctx, identity, domain.RoomName(p.Name)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", p.Name).Msg("delete room failed")
		ctl.sendError(c, "Can't delete this chat room.")
	}
}

func (ctl *Controller) handleGetRooms(c *WsConn) {
	ctl.sendEvent(c, "rooms", ctl.Orch.ListRooms())
}

func (ctl *Controller) handleAddUserToRoom(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	type addPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p addPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad addUserToRoom payload")
		ctl.sendError(c, "bad payload")
		return
	}
	identity, ok := ctl.Orch.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	if err := ctl.Orch.JoinDurable(ctx, identity, domain.RoomID(p.RoomID)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room_id", p.RoomID).Msg("add user to room failed")
		ctl.sendError(c, "Couldn't save the room membership.")
	}
}

func (ctl *Controller) handleGetUserRooms(ctx context.Context, cid core.ConnectionID, c *WsConn) {
	identity, ok := ctl.Orch.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	rooms, err := ctl.Orch.DurableRoomsOf(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("user rooms query failed")
		ctl.sendError(c, "Couldn't fetch your rooms.")
		return
	}
	ctl.sendEvent(c, "userRooms", rooms)
}

func (ctl *Controller) handleGetRoomMembers(ctx context.Context, c *WsConn, data []byte) {
	type membersPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p membersPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad getRoomMembers payload")
		ctl.sendError(c, "bad payload")
		return
	}
	users, err := ctl.Orch.DurableMembersOf(ctx, domain.RoomID(p.RoomID))
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room_id", p.RoomID).Msg("room members query failed")
		ctl.sendError(c, "Couldn't fetch room members.")
		return
	}
	ctl.sendEvent(c, "roomMembers", users)
}
