// SQLiteStore persists kernel snapshots to disk. Grounded on the teacher's
// sqlite.go connection-setup shape (DSN busy-timeout, bounded connection
// pool, pragma configuration) adapted from a write-through thought/branch
// cache to a whole-snapshot overwrite-on-Save store.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store against a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if necessary) a SQLite-backed Store at
// dbPath.
func NewSQLiteStorage(dbPath string, timeoutMs int) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	dsn := dbPath + fmt.Sprintf("?_busy_timeout=%d", timeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}
	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save overwrites the persisted snapshot with snap, inside a single
// transaction.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM links", "DELETE FROM tasks", "DELETE FROM concepts", "DELETE FROM terms", "DELETE FROM kernel_state"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear %s: %w", stmt, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO kernel_state (id, cycle) VALUES (0, ?)", snap.Cycle); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, t := range snap.Terms {
		if _, err := tx.Exec("INSERT OR IGNORE INTO terms (canonical) VALUES (?)", t.Canonical); err != nil {
			return fmt.Errorf("insert term %q: %w", t.Canonical, err)
		}
	}

	for _, c := range snap.Concepts {
		if _, err := tx.Exec("INSERT OR IGNORE INTO terms (canonical) VALUES (?)", c.TermCanonical); err != nil {
			return fmt.Errorf("insert concept term %q: %w", c.TermCanonical, err)
		}
		if _, err := tx.Exec("INSERT INTO concepts (term_canonical, activation) VALUES (?, ?)", c.TermCanonical, c.Activation); err != nil {
			return fmt.Errorf("insert concept %q: %w", c.TermCanonical, err)
		}
		for _, t := range c.Tasks {
			evidence, err := json.Marshal(t.Evidence)
			if err != nil {
				return fmt.Errorf("marshal evidence: %w", err)
			}
			_, err = tx.Exec(`INSERT INTO tasks
				(concept_term, term_canonical, punctuation, has_truth, freq, conf, priority, durability, quality, evidence, occurrence_at, created_at, is_belief)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.TermCanonical, t.TermCanonical, t.Punctuation, t.HasTruth, t.Freq, t.Conf,
				t.Priority, t.Durability, t.Quality, string(evidence), t.OccurrenceAt, t.CreatedAt, t.IsBelief)
			if err != nil {
				return fmt.Errorf("insert task on %q: %w", c.TermCanonical, err)
			}
		}
		for _, l := range c.Links {
			if _, err := tx.Exec("INSERT INTO links (concept_term, target_canonical, outgoing, weight) VALUES (?, ?, ?, ?)",
				c.TermCanonical, l.TargetCanonical, l.Outgoing, l.Weight); err != nil {
				return fmt.Errorf("insert link on %q: %w", c.TermCanonical, err)
			}
		}
	}

	return tx.Commit()
}

// Load reads the persisted snapshot in full.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	var version string
	err := s.db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'version'").Scan(&version)
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if version != CurrentVersion {
		return nil, &ErrCorruptedState{FoundVersion: version}
	}

	snap := &Snapshot{Version: CurrentVersion}

	if err := s.db.QueryRow("SELECT cycle FROM kernel_state WHERE id = 0").Scan(&snap.Cycle); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read cycle: %w", err)
	}

	termRows, err := s.db.Query("SELECT canonical FROM terms")
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer termRows.Close()
	for termRows.Next() {
		var canonical string
		if err := termRows.Scan(&canonical); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		snap.Terms = append(snap.Terms, TermRecord{Canonical: canonical})
	}

	conceptRows, err := s.db.Query("SELECT term_canonical, activation FROM concepts")
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer conceptRows.Close()
	var concepts []ConceptRecord
	for conceptRows.Next() {
		var c ConceptRecord
		if err := conceptRows.Scan(&c.TermCanonical, &c.Activation); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}

	for i := range concepts {
		c := &concepts[i]
		taskRows, err := s.db.Query(`SELECT term_canonical, punctuation, has_truth, freq, conf, priority, durability, quality, evidence, occurrence_at, created_at, is_belief
			FROM tasks WHERE concept_term = ?`, c.TermCanonical)
		if err != nil {
			return nil, fmt.Errorf("query tasks for %q: %w", c.TermCanonical, err)
		}
		for taskRows.Next() {
			var t TaskRecord
			var evidence string
			if err := taskRows.Scan(&t.TermCanonical, &t.Punctuation, &t.HasTruth, &t.Freq, &t.Conf,
				&t.Priority, &t.Durability, &t.Quality, &evidence, &t.OccurrenceAt, &t.CreatedAt, &t.IsBelief); err != nil {
				taskRows.Close()
				return nil, fmt.Errorf("scan task: %w", err)
			}
			if strings.TrimSpace(evidence) != "" {
				if err := json.Unmarshal([]byte(evidence), &t.Evidence); err != nil {
					taskRows.Close()
					return nil, fmt.Errorf("unmarshal evidence: %w", err)
				}
			}
			c.Tasks = append(c.Tasks, t)
		}
		taskRows.Close()

		linkRows, err := s.db.Query("SELECT target_canonical, outgoing, weight FROM links WHERE concept_term = ?", c.TermCanonical)
		if err != nil {
			return nil, fmt.Errorf("query links for %q: %w", c.TermCanonical, err)
		}
		for linkRows.Next() {
			var l LinkRecord
			if err := linkRows.Scan(&l.TargetCanonical, &l.Outgoing, &l.Weight); err != nil {
				linkRows.Close()
				return nil, fmt.Errorf("scan link: %w", err)
			}
			c.Links = append(c.Links, l)
		}
		linkRows.Close()
	}
	snap.Concepts = concepts

	return snap, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
