// ABOUTME: SQLite schema for the conversational memory engine
// ABOUTME: Four relations: conversations, raw memories, condensed memories, FTS index
package sqlite

// Schema contains all SQL statements for database initialization.
// condensed_fts shares row identity with condensed_memories (rowid ==
// condensed_memories.id) and is only ever written inside the same
// transaction as its parent row.
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    one_third_id INTEGER,
    two_thirds_id INTEGER,
    compaction_required INTEGER NOT NULL DEFAULT 0,
    response_schema TEXT,
    system_instruction TEXT
);

CREATE TABLE IF NOT EXISTS raw_memories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    sender TEXT NOT NULL CHECK (sender IN ('user', 'model')),
    text TEXT NOT NULL,
    timestamp DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS condensed_memories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    raw_memory_id INTEGER NOT NULL UNIQUE REFERENCES raw_memories(id) ON DELETE CASCADE,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    summary TEXT NOT NULL DEFAULT '',
    vector BLOB,
    status TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'INDEXED')),
    timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_raw_conversation ON raw_memories(conversation_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_condensed_conversation ON condensed_memories(conversation_id);
CREATE INDEX IF NOT EXISTS idx_condensed_status ON condensed_memories(status);

CREATE VIRTUAL TABLE IF NOT EXISTS condensed_fts USING fts5(
    summary,
    conversation_id UNINDEXED,
    tokenize='porter unicode61'
);
`

// SchemaVersion is the current schema version
const SchemaVersion = 1
