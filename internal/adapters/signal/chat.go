package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// handleSend routes either a room broadcast or a private message,
// depending on which target field the payload carries.
func (ctl *Controller) handleSend(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	type sendPayload struct {
		Type    string `json:"type"`
		Room    string `json:"room,omitempty"`
		To      string `json:"to,omitempty"`
		Content string `json:"content"`
	}
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send payload")
		ctl.sendError(c, "bad payload")
		return
	}

	if identity, ok := ctl.Orch.Registry.IdentityOf(cid); ok && ctl.Limiter != nil {
		if !ctl.Limiter.Allow(identity) {
			ctl.sendError(c, "You are sending messages too quickly.")
			return
		}
	}

	var err error
	if p.Room != "" {
		err = ctl.Orch.SendToRoom(ctx, cid, domain.RoomName(p.Room), p.Content)
	} else {
		err = ctl.Orch.SendPrivate(ctx, cid, p.Content, domain.Identity(p.To))
	}
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("send failed")
		ctl.sendError(c, "Message not sent!")
	}
}

// handleHistory serves the recent-messages query: room history when a
// room is named, otherwise the caller's private exchange with another
// user.
func (ctl *Controller) handleHistory(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	type historyPayload struct {
		Type string `json:"type"`
		Room string `json:"room,omitempty"`
		With string `json:"with,omitempty"`
	}
	var p historyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad history payload")
		ctl.sendError(c, "bad payload")
		return
	}

	var (
		views []*domain.MessageView
		err   error
	)
	if p.Room != "" {
		views, err = ctl.Orch.RoomHistory(ctx, domain.RoomName(p.Room))
	} else {
		identity, ok := ctl.Orch.Registry.IdentityOf(cid)
		if !ok {
			return
		}
		views, err = ctl.Orch.PrivateHistory(ctx, identity, domain.Identity(p.With))
	}
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("history query failed")
		ctl.sendError(c, "Couldn't fetch message history.")
		return
	}
	ctl.sendEvent(c, "messageHistory", views)
}
