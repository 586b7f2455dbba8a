package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Outbound event names, the surface the UI layer listens on.
const (
	EvNewMessage     = "newMessage"
	EvAddUser        = "addUser"
	EvRemoveUser     = "removeUser"
	EvAddChatRoom    = "addChatRoom"
	EvRemoveChatRoom = "removeChatRoom"
	EvRoomDeleted    = "onRoomDeleted"
	EvProfileInfo    = "getProfileInfo"
	EvError          = "onError"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Encode wraps a payload into the wire envelope.
func Encode(typ string, payload any) (Frame, bool) {
	b, err := json.Marshal(envelope{Type: typ, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "core.events").Str("type", typ).Msg("encode event")
		return nil, false
	}
	return b, true
}
