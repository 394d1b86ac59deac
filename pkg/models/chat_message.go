package models

import "time"

// ChatMessage is one exchange with the tutor
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}
