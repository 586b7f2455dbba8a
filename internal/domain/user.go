// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUsernameLen    = 36
	MaxDisplayNameLen = 64
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// Identity is the stable logical-user key. Connections come and go
// underneath it; the key itself never changes across reconnects.
type Identity string

type User struct {
	ID          string   `json:"id"`
	Username    Identity `json:"username"`
	DisplayName string   `json:"displayName"`
	Avatar      string   `json:"avatar"`
}

func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
