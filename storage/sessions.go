// Package storage persists the session list. The whole list is stored as
// one JSON document under a single fixed key in a sqlite key/value table,
// mirroring the single-slot model the chat core expects: load everything at
// startup, rewrite everything after mutations.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chaoscontext/chat"
	"chaoscontext/config"
)

// sessionsKey is the fixed key the serialized session list lives under.
const sessionsKey = "chaoscontext_sessions"

// SessionStore implements chat.Store on a sqlite database under the data
// directory. Save and Load are deliberately forgiving: a failed write is
// logged and dropped, unreadable or corrupt data loads as an empty list.
// Persistence problems never surface into the chat flow.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore opens (or creates) the database in dataDir.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	dbPath := filepath.Join(dataDir, "sessions.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SessionStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save writes the full session list. Best effort: failures are logged and
// swallowed, the in-memory state stays authoritative for this run.
func (s *SessionStore) Save(sessions []chat.Session) {
	data, err := json.Marshal(sessions)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[storage] failed to encode sessions: %v", err)
		}
		return
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		sessionsKey, string(data),
	)
	if err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[storage] failed to save sessions: %v", err)
	}
}

// Load returns the persisted session list, or an empty list when nothing is
// stored or the stored value does not parse. There is no schema version;
// format drift reads as absence.
func (s *SessionStore) Load() []chat.Session {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, sessionsKey).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows && config.DebugLog != nil {
			config.DebugLog.Printf("[storage] failed to load sessions: %v", err)
		}
		return nil
	}

	var sessions []chat.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[storage] discarding unparsable session data: %v", err)
		}
		return nil
	}

	return sessions
}

// Close releases the underlying database handle.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
