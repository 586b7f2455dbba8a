package signal

import (
	"github.com/dkeye/Chat/internal/core"
)

func (ctl *Controller) handleGetUsers(cid core.ConnectionID, c *WsConn) {
	identity, ok := ctl.Orch.Registry.IdentityOf(cid)
	if !ok {
		return
	}
	ctl.sendEvent(c, "users", ctl.Orch.KnownUsers(identity))
}

func (ctl *Controller) handleGetOnlineUsers(c *WsConn) {
	ctl.sendEvent(c, "onlineUsers", ctl.Orch.OnlineUsers())
}
