// ABOUTME: Full-text prefilter over condensed summaries using FTS5
// ABOUTME: OR-matches sanitized query terms, ranks by BM25, ties by recency
package sqlite

import (
	"fmt"
	"math"
	"strings"

	"github.com/harper/recall/internal/models"
)

// SearchText runs the full-text prefilter for a conversation. Query
// terms are OR-matched against indexed summaries; results are ordered
// by BM25 rank with ties broken by descending timestamp (more recent
// memories first). Returns at most limit candidates.
func (s *Store) SearchText(conversationID, query string, limit int) ([]models.TextMatch, error) {
	if limit <= 0 {
		return nil, nil
	}

	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.conn.Query(`
		SELECT c.id, bm25(condensed_fts), c.timestamp
		FROM condensed_fts
		JOIN condensed_memories c ON c.id = condensed_fts.rowid
		WHERE condensed_fts MATCH ? AND condensed_fts.conversation_id = ?
		ORDER BY bm25(condensed_fts) ASC, c.timestamp DESC
		LIMIT ?
	`, match, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []models.TextMatch
	for rows.Next() {
		var (
			m    models.TextMatch
			bm25 float64
		)
		if err := rows.Scan(&m.ID, &bm25, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan text match: %w", err)
		}
		// bm25() is negative and lower is better; negate so a larger
		// Rank is a stronger match.
		m.Rank = math.Abs(bm25)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// RemoveFromIndex drops the FTS row for a condensed memory. Normal
// deletes go through DeleteFrom/DeleteConversation which remove FTS
// rows in the same transaction; this exists for index repair.
func (s *Store) RemoveFromIndex(id int64) error {
	if _, err := s.conn.Exec(`DELETE FROM condensed_fts WHERE rowid = ?`, id); err != nil {
		return fmt.Errorf("failed to remove FTS row %d: %w", id, err)
	}
	return nil
}

// buildMatchQuery turns free text into a sanitized FTS5 OR query.
// Each term is double-quoted so user input cannot inject FTS5 syntax.
func buildMatchQuery(query string) string {
	terms := splitTerms(query)
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// splitTerms lowercases the query and keeps alphanumeric runs
func splitTerms(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r >= 0x80: // keep non-ASCII letters for unicode61
			return false
		}
		return true
	})
}
