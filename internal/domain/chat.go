package domain

import "time"

// ChatMessage is one entry in a room's chat log. Immutable once appended.
// Field names are part of the wire contract.
type ChatMessage struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
