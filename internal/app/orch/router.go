package orch

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// privateRe matches the /private(target) prefix the UI prepends to
// direct messages. It is stripped from the displayed content.
var privateRe = regexp.MustCompile(`/private\(.*?\)`)

// SendToRoom sanitizes, persists and broadcasts a room message. The
// sender receives its own copy from the broadcast, so everyone in the
// group observes the same order.
func (o *Orchestrator) SendToRoom(ctx context.Context, cid core.ConnectionID, room domain.RoomName, raw string) error {
	from, ok := o.Registry.IdentityOf(cid)
	if !ok {
		return domain.ErrUserNotFound
	}
	view, err := o.Store.AppendRoomMessage(ctx, from, room, o.Sanitize.Sanitize(raw))
	if err != nil {
		return err
	}
	o.broadcastRoom(room, core.EvNewMessage, view, "")
	log.Debug().Str("module", "app.orch").Str("room", string(room)).Str("from", string(from)).Msg("room message routed")
	return nil
}

// SendPrivate sanitizes, persists and delivers a direct message to
// every live connection of the receiver plus, always, the caller. An
// offline receiver means the caller is the only recipient.
func (o *Orchestrator) SendPrivate(ctx context.Context, cid core.ConnectionID, raw string, to domain.Identity) error {
	from, ok := o.Registry.IdentityOf(cid)
	if !ok {
		return domain.ErrUserNotFound
	}
	view, err := o.Store.AppendPrivateMessage(ctx, from, to, o.Sanitize.Sanitize(raw))
	if err != nil {
		return err
	}
	view.Content = o.Sanitize.Sanitize(strings.TrimSpace(privateRe.ReplaceAllString(raw, "")))

	for _, snap := range o.Registry.SessionsOf(to) {
		if snap.CID == cid {
			continue
		}
		o.emit(snap.Session, core.EvNewMessage, view)
	}
	o.emitTo(cid, core.EvNewMessage, view)
	log.Debug().Str("module", "app.orch").Str("from", string(from)).Str("to", string(to)).Msg("private message routed")
	return nil
}

// RoomHistory returns the room's most recent messages, oldest first.
func (o *Orchestrator) RoomHistory(ctx context.Context, room domain.RoomName) ([]*domain.MessageView, error) {
	return o.Store.RoomHistory(ctx, room, o.historyLimit())
}

// PrivateHistory returns the recent exchange between two users, both
// directions, oldest first.
func (o *Orchestrator) PrivateHistory(ctx context.Context, a, b domain.Identity) ([]*domain.MessageView, error) {
	return o.Store.PrivateHistory(ctx, a, b, o.historyLimit())
}
