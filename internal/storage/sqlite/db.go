// ABOUTME: SQLite database connection and lifecycle management
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite with FTS5 support
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the embedded memory store. It owns the four relations
// (conversations, raw memories, condensed memories, and the FTS index
// over condensed summaries) and every transaction that spans them.
type Store struct {
	conn      *sql.DB
	path      string
	dimension int
}

// Open opens or creates the memory database at the given path.
// dimension is the fixed embedding dimensionality; vectors of any
// other length are rejected by MarkIndexed.
func Open(path string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dimension)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL for concurrent readers, foreign keys for cascade integrity.
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{conn: conn, path: path, dimension: dimension}
	if err := store.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// OpenInMemory creates an in-memory store (for testing)
func OpenInMemory(dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dimension)
	}

	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A single connection so every statement sees the same in-memory DB.
	conn.SetMaxOpenConns(1)

	store := &Store{conn: conn, path: ":memory:", dimension: dimension}
	if err := store.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all tables and indexes
func (s *Store) initSchema() error {
	_, err := s.conn.Exec(Schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Dimension returns the configured embedding dimensionality
func (s *Store) Dimension() int {
	return s.dimension
}
