package core

import "github.com/dkeye/Chat/internal/domain"

// Frame is an encoded outbound payload.
type Frame []byte

// ConnectionID names one live network session. Ephemeral, never reused.
type ConnectionID string

// SignalConnection abstracts the messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Session binds an identity to its transport endpoint.
// This is what a delivery group stores and fans out to.
type Session interface {
	Identity() domain.Identity
	Signal() SignalConnection
}

// PublishResult reports delivery stats back to the caller. Dropped
// recipients are informational only, a failed send never fails the
// triggering operation.
type PublishResult struct {
	SentTo  int
	Dropped []ConnectionID
}

// Sanitizer strips markup from user content, keeping an allow-list of
// inline tags.
type Sanitizer interface {
	Sanitize(raw string) string
}
