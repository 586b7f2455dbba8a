package domain

const MaxRoomNameLen = 36

type (
	RoomName string
	RoomID   string
)

type Room struct {
	ID    RoomID   `json:"id"`
	Name  RoomName `json:"name"`
	Owner Identity `json:"owner"`
}

// Lobby is the null room: a connection that joined nothing occupies it
// and belongs to no delivery group.
const Lobby RoomName = ""
