// ABOUTME: Multi-table transactions for the hot write path
// ABOUTME: AppendExchange and the cutoff delete keep the count invariant atomic
package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/recall/internal/models"
)

// ExchangeIDs are the row ids created by one stored exchange
type ExchangeIDs struct {
	UserID      int64
	ModelID     int64
	CondensedID int64
}

// AppendExchange stores one completed exchange: the user turn, the
// model turn, and the NEW condensed placeholder for the model turn,
// touching (or creating) the conversation header. All writes commit
// in a single transaction so the condensed-count invariant can never
// be observed broken.
func (s *Store) AppendExchange(conversationID, userText, modelText string, ts time.Time) (*ExchangeIDs, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}
	if strings.TrimSpace(userText) == "" || strings.TrimSpace(modelText) == "" {
		return nil, fmt.Errorf("exchange turns cannot be empty")
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Create the header on the first turn of a conversation.
	_, err = tx.Exec(`
		INSERT INTO conversations (id, name, created_at, updated_at)
		VALUES (?, '', ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, conversationID, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conversation %s: %w", conversationID, err)
	}

	ids := &ExchangeIDs{}

	result, err := tx.Exec(`
		INSERT INTO raw_memories (conversation_id, sender, text, timestamp)
		VALUES (?, ?, ?, ?)
	`, conversationID, string(models.SenderUser), userText, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user turn: %w", err)
	}
	if ids.UserID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read user turn id: %w", err)
	}

	result, err = tx.Exec(`
		INSERT INTO raw_memories (conversation_id, sender, text, timestamp)
		VALUES (?, ?, ?, ?)
	`, conversationID, string(models.SenderModel), modelText, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert model turn: %w", err)
	}
	if ids.ModelID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read model turn id: %w", err)
	}

	result, err = tx.Exec(`
		INSERT INTO condensed_memories (raw_memory_id, conversation_id, summary, status, timestamp)
		VALUES (?, ?, '', ?, ?)
	`, ids.ModelID, conversationID, string(models.StatusNew), ts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert condensed placeholder: %w", err)
	}
	if ids.CondensedID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read placeholder id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit exchange: %w", err)
	}
	return ids, nil
}

// DeleteFrom removes the raw memory at cutoffID and every later raw
// memory in the conversation, together with their condensed memories
// and FTS rows, in one transaction. Used by the regenerate-response
// flow.
func (s *Store) DeleteFrom(conversationID string, cutoffID int64) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// FTS rows first: find the condensed ids past the cutoff.
	rows, err := tx.Query(`
		SELECT id FROM condensed_memories
		WHERE conversation_id = ? AND raw_memory_id >= ?
	`, conversationID, cutoffID)
	if err != nil {
		return fmt.Errorf("failed to find condensed memories past cutoff: %w", err)
	}

	var condensedIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan condensed id: %w", err)
		}
		condensedIDs = append(condensedIDs, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to read condensed ids: %w", err)
	}
	_ = rows.Close()

	for _, id := range condensedIDs {
		if _, err := tx.Exec(`DELETE FROM condensed_fts WHERE rowid = ?`, id); err != nil {
			return fmt.Errorf("failed to delete FTS row %d: %w", id, err)
		}
	}

	_, err = tx.Exec(`
		DELETE FROM condensed_memories
		WHERE conversation_id = ? AND raw_memory_id >= ?
	`, conversationID, cutoffID)
	if err != nil {
		return fmt.Errorf("failed to delete condensed memories past cutoff: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM raw_memories
		WHERE conversation_id = ? AND id >= ?
	`, conversationID, cutoffID)
	if err != nil {
		return fmt.Errorf("failed to delete raw memories past cutoff: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation %s: %w", conversationID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cutoff delete: %w", err)
	}
	return nil
}
