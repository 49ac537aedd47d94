// ABOUTME: Condensed memory operations and the NEW -> INDEXED status machine
// ABOUTME: MarkIndexed writes the row and its FTS projection in one transaction
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/recall/internal/models"
)

// CreatePlaceholder creates the NEW condensed memory row for a model
// turn. Exactly one exists per raw memory; a second call for the same
// raw memory fails on the UNIQUE constraint.
func (s *Store) CreatePlaceholder(rawMemoryID int64, conversationID string, ts time.Time) (int64, error) {
	memory, err := s.GetRawMemory(rawMemoryID)
	if err != nil {
		return 0, fmt.Errorf("placeholder parent lookup: %w", err)
	}
	if memory.Sender != models.SenderModel {
		return 0, fmt.Errorf("raw memory %d has sender %q, only model turns are condensed", rawMemoryID, memory.Sender)
	}

	result, err := s.conn.Exec(`
		INSERT INTO condensed_memories (raw_memory_id, conversation_id, summary, status, timestamp)
		VALUES (?, ?, '', ?, ?)
	`, rawMemoryID, conversationID, string(models.StatusNew), ts)
	if err != nil {
		return 0, fmt.Errorf("failed to create placeholder for raw memory %d: %w", rawMemoryID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read placeholder id: %w", err)
	}
	return id, nil
}

// MarkIndexed fills in the summary and quantized vector and flips the
// row to INDEXED. The row update and the FTS projection commit
// together or not at all. Re-marking an INDEXED row overwrites it
// consistently (same row, FTS row replaced).
func (s *Store) MarkIndexed(id int64, summary string, vector []float32) error {
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("summary cannot be empty for condensed memory %d", id)
	}
	if len(vector) == 0 {
		return fmt.Errorf("condensed memory %d: %w: empty vector", id, models.ErrInvalidVector)
	}
	if len(vector) != s.dimension {
		return fmt.Errorf("condensed memory %d: %w: got %d dimensions, store configured for %d",
			id, models.ErrInvalidVector, len(vector), s.dimension)
	}

	blob, err := models.PackVector(vector)
	if err != nil {
		return fmt.Errorf("condensed memory %d: %w", id, err)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var conversationID string
	err = tx.QueryRow(`
		SELECT conversation_id FROM condensed_memories WHERE id = ?
	`, id).Scan(&conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up condensed memory %d: %w", id, err)
	}

	_, err = tx.Exec(`
		UPDATE condensed_memories
		SET summary = ?, vector = ?, status = ?
		WHERE id = ?
	`, summary, blob, string(models.StatusIndexed), id)
	if err != nil {
		return fmt.Errorf("failed to mark condensed memory %d indexed: %w", id, err)
	}

	// Replace the FTS projection for this rowid.
	if _, err := tx.Exec(`DELETE FROM condensed_fts WHERE rowid = ?`, id); err != nil {
		return fmt.Errorf("failed to clear FTS row %d: %w", id, err)
	}
	_, err = tx.Exec(`
		INSERT INTO condensed_fts (rowid, summary, conversation_id)
		VALUES (?, ?, ?)
	`, id, summary, conversationID)
	if err != nil {
		return fmt.Errorf("failed to index summary for %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mark-indexed for %d: %w", id, err)
	}
	return nil
}

// PendingCondensed returns all NEW rows, oldest first. This is the
// condensation pipeline's work queue.
func (s *Store) PendingCondensed() ([]models.CondensedMemory, error) {
	rows, err := s.conn.Query(`
		SELECT id, raw_memory_id, conversation_id, summary, vector, status, timestamp
		FROM condensed_memories
		WHERE status = ?
		ORDER BY id ASC
	`, string(models.StatusNew))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending condensed memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCondensedMemories(rows)
}

// PendingCount returns how many condensed memories still await processing
func (s *Store) PendingCount() (int, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM condensed_memories WHERE status = ?
	`, string(models.StatusNew)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending condensed memories: %w", err)
	}
	return count, nil
}

// GetCondensed retrieves a condensed memory by id
func (s *Store) GetCondensed(id int64) (*models.CondensedMemory, error) {
	row := s.conn.QueryRow(`
		SELECT id, raw_memory_id, conversation_id, summary, vector, status, timestamp
		FROM condensed_memories
		WHERE id = ?
	`, id)

	memory, err := scanCondensedMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get condensed memory %d: %w", id, err)
	}
	return memory, nil
}

// GetCondensedByRawMemoryID retrieves the condensed memory derived
// from the given raw memory
func (s *Store) GetCondensedByRawMemoryID(rawMemoryID int64) (*models.CondensedMemory, error) {
	row := s.conn.QueryRow(`
		SELECT id, raw_memory_id, conversation_id, summary, vector, status, timestamp
		FROM condensed_memories
		WHERE raw_memory_id = ?
	`, rawMemoryID)

	memory, err := scanCondensedMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get condensed memory for raw %d: %w", rawMemoryID, err)
	}
	return memory, nil
}

// GetCondensedByIDs loads condensed memories for the given ids,
// skipping ids that no longer exist
func (s *Store) GetCondensedByIDs(ids []int64) ([]models.CondensedMemory, error) {
	memories := make([]models.CondensedMemory, 0, len(ids))
	for _, id := range ids {
		memory, err := s.GetCondensed(id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		memories = append(memories, *memory)
	}
	return memories, nil
}

// CondensedCount returns the number of condensed memories in a conversation
func (s *Store) CondensedCount(conversationID string) (int, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM condensed_memories WHERE conversation_id = ?
	`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count condensed memories: %w", err)
	}
	return count, nil
}

// ModelTurnCount returns the number of model-sender raw memories in a
// conversation. Always equals CondensedCount for a healthy store.
func (s *Store) ModelTurnCount(conversationID string) (int, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(*) FROM raw_memories WHERE conversation_id = ? AND sender = ?
	`, conversationID, string(models.SenderModel)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count model turns: %w", err)
	}
	return count, nil
}

func scanCondensedMemory(row scanner) (*models.CondensedMemory, error) {
	var (
		memory models.CondensedMemory
		status string
		blob   []byte
	)
	err := row.Scan(&memory.ID, &memory.RawMemoryID, &memory.ConversationID,
		&memory.Summary, &blob, &status, &memory.Timestamp)
	if err != nil {
		return nil, err
	}
	memory.Status = models.CondensedStatus(status)

	if len(blob) > 0 {
		vector, err := models.UnpackVector(blob)
		if err != nil {
			return nil, fmt.Errorf("stored vector for %d is corrupt: %w", memory.ID, err)
		}
		memory.Vector = vector
	}
	return &memory, nil
}

func scanCondensedMemories(rows *sql.Rows) ([]models.CondensedMemory, error) {
	var memories []models.CondensedMemory
	for rows.Next() {
		memory, err := scanCondensedMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan condensed memory: %w", err)
		}
		memories = append(memories, *memory)
	}
	return memories, rows.Err()
}
