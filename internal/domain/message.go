package domain

import "time"

// Message represents a short text message posted to the board.
type Message struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MessageWithAuthor is a message joined with its author, used for listings.
type MessageWithAuthor struct {
	Message
	Author User `json:"user" db:"user"`
}
