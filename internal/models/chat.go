package models

import (
	"time"
)

// ChatSender identifies which side of a chat session sent a message
type ChatSender string

const (
	SenderVisitor ChatSender = "visitor"
	SenderAgent   ChatSender = "agent"
)

// ChatMessage is one message in a support chat session
type ChatMessage struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	Sender    ChatSender `json:"sender"`
	Text      string     `json:"text"`
	SentAt    time.Time  `json:"sent_at"`
}
