package signal

func (ctl *Controller) handlePing(c *WsConn) {
	ctl.sendEvent(c, "pong", nil)
}
