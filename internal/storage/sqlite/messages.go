// ABOUTME: Raw memory operations: the append-only log of chat turns
// ABOUTME: Implements append, pagination, text edits, and lookups
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/recall/internal/models"
)

// AppendRawMemory appends a single turn to a conversation.
// The conversation header must already exist; AppendExchange is the
// normal write path and creates it on first use.
func (s *Store) AppendRawMemory(conversationID string, sender models.Sender, text string, ts time.Time) (int64, error) {
	memory := models.RawMemory{
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      ts,
	}
	if err := memory.Validate(); err != nil {
		return 0, fmt.Errorf("invalid raw memory: %w", err)
	}

	result, err := s.conn.Exec(`
		INSERT INTO raw_memories (conversation_id, sender, text, timestamp)
		VALUES (?, ?, ?, ?)
	`, conversationID, string(sender), text, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to append raw memory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// GetRawMemory retrieves a single raw memory by id
func (s *Store) GetRawMemory(id int64) (*models.RawMemory, error) {
	row := s.conn.QueryRow(`
		SELECT id, conversation_id, sender, text, timestamp
		FROM raw_memories
		WHERE id = ?
	`, id)

	memory, err := scanRawMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raw memory %d: %w", id, err)
	}
	return memory, nil
}

// PageRawMemories returns a page of turns ordered by timestamp
// descending (most recent first)
func (s *Store) PageRawMemories(conversationID string, limit, offset int) ([]models.RawMemory, error) {
	rows, err := s.conn.Query(`
		SELECT id, conversation_id, sender, text, timestamp
		FROM raw_memories
		WHERE conversation_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to page raw memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRawMemories(rows)
}

// AllRawMemories returns every turn of a conversation in insertion order
func (s *Store) AllRawMemories(conversationID string) ([]models.RawMemory, error) {
	rows, err := s.conn.Query(`
		SELECT id, conversation_id, sender, text, timestamp
		FROM raw_memories
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load raw memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRawMemories(rows)
}

// UpdateRawMemoryText applies a user edit to a stored turn
func (s *Store) UpdateRawMemoryText(id int64, newText string) error {
	result, err := s.conn.Exec(`
		UPDATE raw_memories SET text = ? WHERE id = ?
	`, newText, id)
	if err != nil {
		return fmt.Errorf("failed to update raw memory %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of raw memory %d: %w", id, err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// LatestRawMemoryID returns the highest raw memory id in a
// conversation, or 0 when the conversation has no turns
func (s *Store) LatestRawMemoryID(conversationID string) (int64, error) {
	var id sql.NullInt64
	err := s.conn.QueryRow(`
		SELECT MAX(id) FROM raw_memories WHERE conversation_id = ?
	`, conversationID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to find latest raw memory: %w", err)
	}
	return id.Int64, nil
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRawMemory(row scanner) (*models.RawMemory, error) {
	var (
		memory models.RawMemory
		sender string
	)
	if err := row.Scan(&memory.ID, &memory.ConversationID, &sender, &memory.Text, &memory.Timestamp); err != nil {
		return nil, err
	}
	memory.Sender = models.Sender(sender)
	return &memory, nil
}

func scanRawMemories(rows *sql.Rows) ([]models.RawMemory, error) {
	var memories []models.RawMemory
	for rows.Next() {
		memory, err := scanRawMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw memory: %w", err)
		}
		memories = append(memories, *memory)
	}
	return memories, rows.Err()
}
