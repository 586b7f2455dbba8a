package domain

import "time"

// MessageView is what recipients see. From/To carry display names, not
// identities, mirroring what the UI renders.
type MessageView struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	Avatar    string    `json:"avatar"`
	To        string    `json:"to,omitempty"`
}
