package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateRoom = errors.New("room name already taken")
	ErrDuplicateUser = errors.New("username already taken")
	// ErrForbidden signals an ownership violation, e.g. deleting a room
	// someone else created.
	ErrForbidden       = errors.New("forbidden")
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

func ValidateRoomName(name RoomName) error {
	if len(name) == 0 {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
