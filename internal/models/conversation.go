// ABOUTME: Conversation header with token accounting and compaction watermarks
// ABOUTME: One row per conversation, created on the first stored exchange
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Conversation is the per-conversation header. Watermark ids are raw
// memory ids pinned when the token count crosses a threshold; zero
// means not yet set (SQLite row ids start at 1).
type Conversation struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	TotalTokens        int       `json:"total_tokens"`
	OneThirdID         int64     `json:"one_third_id,omitempty"`
	TwoThirdsID        int64     `json:"two_thirds_id,omitempty"`
	CompactionRequired bool      `json:"compaction_required"`
	ResponseSchema     string    `json:"response_schema,omitempty"`
	SystemInstruction  string    `json:"system_instruction,omitempty"`
}

// NewConversationID generates a unique conversation identifier
func NewConversationID() string {
	return "conv_" + uuid.New().String()[:8]
}

// Validate checks the watermark ordering invariant
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if c.OneThirdID != 0 && c.TwoThirdsID != 0 && c.OneThirdID > c.TwoThirdsID {
		return errors.New("one-third watermark is past the two-thirds watermark")
	}
	return nil
}
