// ABOUTME: RawMemory represents a single verbatim chat turn in a conversation
// ABOUTME: Append-only record owned by its conversation
package models

import (
	"errors"
	"strings"
	"time"
)

// Sender identifies who produced a raw memory
type Sender string

const (
	SenderUser  Sender = "user"
	SenderModel Sender = "model"
)

// Valid reports whether the sender is one of the known values
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderModel
}

// RawMemory is one verbatim turn of a conversation.
// IDs are assigned by storage and are monotonically increasing.
type RawMemory struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// Validate checks the raw memory before it is written
func (m *RawMemory) Validate() error {
	if m.ConversationID == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if !m.Sender.Valid() {
		return errors.New("invalid sender")
	}
	if strings.TrimSpace(m.Text) == "" {
		return errors.New("text cannot be empty")
	}
	return nil
}
