// SQLite schema for kernel snapshots. Grounded on the teacher's
// sqlite_schema.go: the same schema_metadata versioning table and pragma
// configuration, restructured around terms/concepts/tasks/links instead of
// thoughts/branches/insights.
package storage

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS kernel_state (
    id INTEGER PRIMARY KEY CHECK (id = 0),
    cycle INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS terms (
    canonical TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS concepts (
    term_canonical TEXT PRIMARY KEY,
    activation REAL NOT NULL,
    FOREIGN KEY (term_canonical) REFERENCES terms(canonical) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    concept_term TEXT NOT NULL,
    term_canonical TEXT NOT NULL,
    punctuation INTEGER NOT NULL,
    has_truth INTEGER NOT NULL,
    freq REAL NOT NULL DEFAULT 0,
    conf REAL NOT NULL DEFAULT 0,
    priority REAL NOT NULL,
    durability REAL NOT NULL,
    quality REAL NOT NULL,
    evidence TEXT,
    occurrence_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    is_belief INTEGER NOT NULL,
    FOREIGN KEY (concept_term) REFERENCES concepts(term_canonical) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    concept_term TEXT NOT NULL,
    target_canonical TEXT NOT NULL,
    outgoing INTEGER NOT NULL,
    weight REAL NOT NULL,
    FOREIGN KEY (concept_term) REFERENCES concepts(term_canonical) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_concept ON tasks(concept_term);
CREATE INDEX IF NOT EXISTS idx_links_concept ON links(concept_term);
`

// initializeSchema creates all tables and indexes, and records or checks the
// snapshot format version in schema_metadata.
func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var version string
	err := db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'version'").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_metadata (key, value) VALUES ('version', ?)", CurrentVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query schema version: %w", err)
	case version != CurrentVersion:
		return &ErrCorruptedState{FoundVersion: version}
	}

	return nil
}

// configureSQLite sets pragmas tuned for a single-writer embedded snapshot
// store: durability on commit, everything else optimized for throughput.
func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}
