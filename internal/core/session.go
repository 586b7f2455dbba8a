package core

import "github.com/dkeye/Chat/internal/domain"

// session pairs identity + transport.
type session struct {
	identity domain.Identity
	conn     SignalConnection
}

func NewSession(identity domain.Identity, conn SignalConnection) Session {
	return &session{identity: identity, conn: conn}
}

func (s *session) Identity() domain.Identity { return s.identity }
func (s *session) Signal() SignalConnection  { return s.conn }
