package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

const (
	maxLimit     = 500
	defaultLimit = 20
)

// SQLiteStore keeps audit entries in SQLite; safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) a SQLite audit database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite: %w", err)
	}
	// One connection: ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			session_id TEXT,
			action TEXT NOT NULL,
			score INTEGER,
			tier TEXT,
			risk_level TEXT,
			details TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_entries_session ON audit_entries (session_id, ts);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Name identifies the sink in fallback logs.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Record inserts an entry. Entries without an ID or timestamp are stamped.
func (s *SQLiteStore) Record(entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry = stamp(entry)
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("audit: marshal details: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO audit_entries (id, ts, session_id, action, score, tier, risk_level, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, entry.SessionID, entry.Action,
		entry.Details.Score, entry.Details.Tier, entry.Details.RiskLevel, string(details))
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

// Latest returns up to limit entries, newest first.
func (s *SQLiteStore) Latest(limit int) ([]AuditEntry, error) {
	return s.query(`
		SELECT id, ts, session_id, action, details
		FROM audit_entries
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`, clampLimit(limit))
}

// BySession returns a session's entries, oldest first.
func (s *SQLiteStore) BySession(sessionID string) ([]AuditEntry, error) {
	return s.query(`
		SELECT id, ts, session_id, action, details
		FROM audit_entries
		WHERE session_id = ?
		ORDER BY ts ASC, rowid ASC
	`, sessionID)
}

func (s *SQLiteStore) query(q string, args ...any) ([]AuditEntry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query entries: %w", err)
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var (
			e       AuditEntry
			details string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.Action, &details); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, fmt.Errorf("audit: decode details for %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate entries: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func stamp(entry AuditEntry) AuditEntry {
	if entry.ID == "" || entry.Timestamp == "" {
		fresh := NewEntry(entry.SessionID, entry.Action, entry.Details)
		if entry.ID == "" {
			entry.ID = fresh.ID
		}
		if entry.Timestamp == "" {
			entry.Timestamp = fresh.Timestamp
		}
	}
	return entry
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
