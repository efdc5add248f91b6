package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// settings table keys.
const keyAutoSave = "autosave"

// SQLiteStore implements core.SettingsStore using SQLite. Settings are
// stored as JSON values in a key/value table so new setting groups do
// not need schema changes; audit events get their own table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite settings store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewSQLiteStoreWithDB wraps an existing database connection. Useful
// for testing or when the connection comes from elsewhere.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_journal_mode=WAL", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection gets its own in-memory database;
		// pin the pool to one so the schema stays visible.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadAutoSave returns the persisted auto-save settings, or the stock
// defaults when nothing has been saved yet.
func (s *SQLiteStore) LoadAutoSave() (core.AutoSaveSettings, error) {
	defaults := core.DefaultAutoSaveSettings()
	if s.db == nil {
		return defaults, fmt.Errorf("database not opened")
	}

	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyAutoSave).Scan(&raw)
	if err == sql.ErrNoRows {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("failed to load auto-save settings: %w", err)
	}

	var settings core.AutoSaveSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		// A corrupt row should not brick the editor; fall back to
		// defaults and let the next save overwrite it.
		return defaults, nil
	}
	if err := settings.Validate(); err != nil {
		return defaults, nil
	}
	return settings, nil
}

// SaveAutoSave persists the auto-save settings.
func (s *SQLiteStore) SaveAutoSave(settings core.AutoSaveSettings) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode auto-save settings: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		keyAutoSave, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save auto-save settings: %w", err)
	}
	return nil
}

// RecordAutoSave appends one audit event.
func (s *SQLiteStore) RecordAutoSave(event core.AutoSaveEvent) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT INTO autosave_events (id, document_path, version_file, status, error, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.DocumentPath, event.VersionFile, event.Status, event.Error, event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record auto-save event: %w", err)
	}
	return nil
}

// ListAutoSaveEvents returns the most recent audit events, newest
// first. A non-positive limit returns all events.
func (s *SQLiteStore) ListAutoSaveEvents(limit int) ([]core.AutoSaveEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, document_path, version_file, status, error, occurred_at
	          FROM autosave_events ORDER BY occurred_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-save events: %w", err)
	}
	defer rows.Close()

	var events []core.AutoSaveEvent
	for rows.Next() {
		var e core.AutoSaveEvent
		if err := rows.Scan(&e.ID, &e.DocumentPath, &e.VersionFile, &e.Status, &e.Error, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan auto-save event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Ensure SQLiteStore implements the settings store interface.
var _ core.SettingsStore = (*SQLiteStore)(nil)
