// ABOUTME: CondensedMemory is the derived summary+vector record for a model turn
// ABOUTME: Status moves NEW -> INDEXED exactly once, never backward
package models

import (
	"fmt"
	"time"
)

// CondensedStatus is the processing state of a condensed memory
type CondensedStatus string

const (
	StatusNew     CondensedStatus = "NEW"
	StatusIndexed CondensedStatus = "INDEXED"
)

// CondensedMemory is the cold-memory projection of one model turn.
// Exactly one exists per model-sender RawMemory. Created as an empty
// NEW placeholder in the same transaction as its raw memory; the
// condensation pipeline fills in Summary and Vector when it flips the
// status to INDEXED.
type CondensedMemory struct {
	ID             int64           `json:"id"`
	RawMemoryID    int64           `json:"raw_memory_id"`
	ConversationID string          `json:"conversation_id"`
	Summary        string          `json:"summary"`
	Vector         []float32       `json:"vector,omitempty"`
	Status         CondensedStatus `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Validate checks the status machine's consistency rules
func (c *CondensedMemory) Validate() error {
	switch c.Status {
	case StatusNew:
		return nil
	case StatusIndexed:
		if c.Summary == "" {
			return fmt.Errorf("indexed memory %d has empty summary", c.ID)
		}
		if len(c.Vector) == 0 {
			return fmt.Errorf("indexed memory %d has no vector", c.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown status %q", c.Status)
	}
}

// Indexed reports whether the memory has been fully condensed
func (c *CondensedMemory) Indexed() bool {
	return c.Status == StatusIndexed
}
