package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chat/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) pingPeriod() time.Duration {
	if ctl.PingPeriod > 0 {
		return ctl.PingPeriod
	}
	return 54 * time.Second
}

func (ctl *Controller) readPump(ctx context.Context, cid core.ConnectionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		ctl.Orch.Disconnect(cid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(ctx, cid, c, data)
		}
	}
}

func (ctl *Controller) dispatch(ctx context.Context, cid core.ConnectionID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "send":
		ctl.handleSend(ctx, cid, c, data)
	case "join":
		ctl.handleJoin(cid, c, data)
	case "reconnect":
		ctl.Orch.Reconnect(cid)
	case "createRoom":
		ctl.handleCreateRoom(ctx, cid, c, data)
	case "deleteRoom":
		ctl.handleDeleteRoom(ctx, cid, c, data)
	case "history":
		ctl.handleHistory(ctx, cid, c, data)
	case "getUsers":
		ctl.handleGetUsers(cid, c)
	case "getOnlineUsers":
		ctl.handleGetOnlineUsers(c)
	case "getRooms":
		ctl.handleGetRooms(c)
	case "addUserToRoom":
		ctl.handleAddUserToRoom(ctx, cid, c, data)
	case "getUserRooms":
		ctl.handleGetUserRooms(ctx, cid, c)
	case "getRoomMembers":
		ctl.handleGetRoomMembers(ctx, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendEvent(c *WsConn, typ string, payload any) {
	frame, ok := core.Encode(typ, payload)
	if !ok {
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *Controller) sendError(c *WsConn, text string) {
	ctl.sendEvent(c, core.EvError, text)
}
