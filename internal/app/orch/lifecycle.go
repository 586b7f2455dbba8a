package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

// ProfileInfo is the caller-only payload emitted after connect.
type ProfileInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// Connect binds the connection, installs the canonical presence row and
// emits profile info to the caller. Bookkeeping failures are reported
// to the caller only; the connection stays accepted either way.
func (o *Orchestrator) Connect(ctx context.Context, cid core.ConnectionID, identity domain.Identity, deviceHeader string, sess core.Session, cancel context.CancelFunc) {
	o.Registry.BindConnection(cid, identity, sess, cancel)

	user, err := o.Store.FindUser(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("identity", string(identity)).Msg("connect bookkeeping failed")
		o.emit(sess, core.EvError, "OnConnected: "+err.Error())
		return
	}

	entry := &domain.PresenceEntry{
		Identity:    identity,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		CurrentRoom: domain.Lobby,
		Device:      domain.ClassifyDevice(deviceHeader),
	}
	o.Registry.RegisterOrReplace(entry)

	o.emit(sess, core.EvProfileInfo, ProfileInfo{ID: user.ID, DisplayName: user.DisplayName, Avatar: user.Avatar})
	log.Info().Str("module", "app.orch").Str("cid", string(cid)).Str("identity", string(identity)).Msg("connected")
}

// Reconnect reinstates the live row for an already-bound connection and
// re-emits profile info. Safe to call any number of times.
func (o *Orchestrator) Reconnect(cid core.ConnectionID) {
	identity, ok := o.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	entry, ok := o.Registry.Find(identity)
	if !ok {
		if entry, ok = o.Registry.Known(identity); !ok {
			return
		}
		o.Registry.RegisterOrReplace(entry)
	}
	o.emitTo(cid, core.EvProfileInfo, ProfileInfo{ID: entry.UserID, DisplayName: entry.DisplayName, Avatar: entry.Avatar})
	log.Info().Str("module", "app.orch").Str("cid", string(cid)).Str("identity", string(identity)).Msg("reconnected")
}

// Disconnect clears the live row, retains the identity as a known
// offline user, tells the room and drops the connection mapping.
// Unknown connections and identities are silent no-ops.
func (o *Orchestrator) Disconnect(cid core.ConnectionID) {
	identity, ok := o.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	entry, live := o.Registry.Find(identity)
	if live {
		o.Registry.Remove(identity)
		o.Registry.RetainOffline(entry.Offline())
	} else {
		entry, _ = o.Registry.Known(identity)
	}
	// The presence row may already belong to a newer connection of the
	// same identity, so its room cannot be trusted for cleanup: clear
	// every delivery group that still holds this connection.
	for _, room := range o.Groups.RoomsOf(cid) {
		o.Groups.Remove(room, cid)
		if entry != nil {
			o.broadcastRoom(room, core.EvRemoveUser, entry, cid)
		}
	}
	o.Registry.Cancel(cid)
	o.Registry.UnbindConnection(cid)
	log.Info().Str("module", "app.orch").Str("cid", string(cid)).Str("identity", string(identity)).Msg("disconnected")
}
