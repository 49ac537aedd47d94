// ABOUTME: Conversation header operations: creation, token accounting, watermarks
// ABOUTME: Cascade delete removes raw, condensed, and FTS rows in one transaction
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/recall/internal/models"
)

// CreateConversation inserts a new conversation header
func (s *Store) CreateConversation(id, name string, ts time.Time) error {
	if id == "" {
		return errors.New("conversation ID cannot be empty")
	}
	_, err := s.conn.Exec(`
		INSERT INTO conversations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, id, name, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to create conversation %s: %w", id, err)
	}
	return nil
}

// GetConversation retrieves a conversation header
func (s *Store) GetConversation(id string) (*models.Conversation, error) {
	row := s.conn.QueryRow(`
		SELECT id, name, created_at, updated_at, total_tokens,
		       one_third_id, two_thirds_id, compaction_required,
		       response_schema, system_instruction
		FROM conversations
		WHERE id = ?
	`, id)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return conv, nil
}

// ListConversations returns all headers, most recently updated first
func (s *Store) ListConversations() ([]models.Conversation, error) {
	rows, err := s.conn.Query(`
		SELECT id, name, created_at, updated_at, total_tokens,
		       one_third_id, two_thirds_id, compaction_required,
		       response_schema, system_instruction
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conversations []models.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

// RenameConversation updates a conversation's display name
func (s *Store) RenameConversation(id, name string) error {
	result, err := s.conn.Exec(`
		UPDATE conversations SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename conversation %s: %w", id, err)
	}
	return requireRow(result, id)
}

// SetConversationProfile stores the optional response schema and
// system instruction used when prompting for this conversation
func (s *Store) SetConversationProfile(id, responseSchema, systemInstruction string) error {
	result, err := s.conn.Exec(`
		UPDATE conversations
		SET response_schema = ?, system_instruction = ?, updated_at = ?
		WHERE id = ?
	`, nullString(responseSchema), nullString(systemInstruction), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update conversation profile %s: %w", id, err)
	}
	return requireRow(result, id)
}

// SaveThresholds persists the token count, watermark ids, and
// compaction flag produced by the threshold tracker
func (s *Store) SaveThresholds(conv *models.Conversation) error {
	if err := conv.Validate(); err != nil {
		return fmt.Errorf("invalid conversation state: %w", err)
	}

	result, err := s.conn.Exec(`
		UPDATE conversations
		SET total_tokens = ?, one_third_id = ?, two_thirds_id = ?,
		    compaction_required = ?, updated_at = ?
		WHERE id = ?
	`, conv.TotalTokens, nullID(conv.OneThirdID), nullID(conv.TwoThirdsID),
		conv.CompactionRequired, time.Now().UTC(), conv.ID)
	if err != nil {
		return fmt.Errorf("failed to save thresholds for %s: %w", conv.ID, err)
	}
	return requireRow(result, conv.ID)
}

// MarkCompactionHandled clears the compaction-required flag after the
// external compaction routine has rebuilt the prompt window
func (s *Store) MarkCompactionHandled(id string) error {
	result, err := s.conn.Exec(`
		UPDATE conversations SET compaction_required = 0, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark compaction handled for %s: %w", id, err)
	}
	return requireRow(result, id)
}

// DeleteConversation removes a conversation and everything derived
// from it. The header, raw memories, condensed memories, and FTS rows
// go in a single transaction.
func (s *Store) DeleteConversation(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM condensed_fts WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete FTS rows for %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM condensed_memories WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete condensed memories for %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM raw_memories WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete raw memories for %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of %s: %w", id, err)
	}
	return nil
}

func scanConversation(row scanner) (*models.Conversation, error) {
	var (
		conv        models.Conversation
		oneThird    sql.NullInt64
		twoThirds   sql.NullInt64
		schema      sql.NullString
		instruction sql.NullString
	)
	err := row.Scan(&conv.ID, &conv.Name, &conv.CreatedAt, &conv.UpdatedAt,
		&conv.TotalTokens, &oneThird, &twoThirds, &conv.CompactionRequired,
		&schema, &instruction)
	if err != nil {
		return nil, err
	}

	conv.OneThirdID = oneThird.Int64
	conv.TwoThirdsID = twoThirds.Int64
	conv.ResponseSchema = schema.String
	conv.SystemInstruction = instruction.String
	return &conv, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of %s: %w", id, err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
