package destination

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteClient is a Client that writes every tracked event to SQLite.
// It is valid until Close.
type SQLiteClient struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ Client = (*SQLiteClient)(nil)

// NewSQLiteClient opens (or creates) the database at path.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func NewSQLiteClient(path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tracked_events (
			sequence INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_attributes TEXT NOT NULL,
			event_attributes TEXT,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tracked_events_name
		ON tracked_events(name)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Track implements Client.
func (s *SQLiteClient) Track(eventName, userID string, userAttributes map[string]string) error {
	return s.insert(eventName, userID, userAttributes, nil)
}

// TrackWithAttributes implements Client.
func (s *SQLiteClient) TrackWithAttributes(eventName, userID string, userAttributes map[string]string, eventAttributes map[string]any) error {
	if eventAttributes == nil {
		eventAttributes = map[string]any{}
	}
	return s.insert(eventName, userID, userAttributes, eventAttributes)
}

func (s *SQLiteClient) insert(name, userID string, userAttrs map[string]string, eventAttrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClientClosed
	}

	if userAttrs == nil {
		userAttrs = map[string]string{}
	}
	ua, err := json.Marshal(userAttrs)
	if err != nil {
		return fmt.Errorf("marshal user attributes: %w", err)
	}

	// NULL distinguishes Track from TrackWithAttributes.
	var ea sql.NullString
	if eventAttrs != nil {
		b, err := json.Marshal(eventAttrs)
		if err != nil {
			return fmt.Errorf("marshal event attributes: %w", err)
		}
		ea = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO tracked_events (name, user_id, user_attributes, event_attributes, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, name, userID, string(ua), ea, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("track event: %w", err)
	}
	return nil
}

// IsValid implements Client.
func (s *SQLiteClient) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// List returns every tracked event in insertion order. JSON numbers in
// event attributes decode as float64.
func (s *SQLiteClient) List() ([]TrackedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClientClosed
	}

	rows, err := s.db.Query(`
		SELECT sequence, name, user_id, user_attributes, event_attributes, timestamp
		FROM tracked_events
		ORDER BY sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("list tracked events: %w", err)
	}
	defer rows.Close()

	var events []TrackedEvent
	for rows.Next() {
		var (
			e         TrackedEvent
			ua        string
			ea        sql.NullString
			timestamp string
		)
		if err := rows.Scan(&e.Sequence, &e.Name, &e.UserID, &ua, &ea, &timestamp); err != nil {
			return nil, fmt.Errorf("scan tracked event: %w", err)
		}
		if err := json.Unmarshal([]byte(ua), &e.UserAttributes); err != nil {
			return nil, fmt.Errorf("decode user attributes: %w", err)
		}
		if ea.Valid {
			if err := json.Unmarshal([]byte(ea.String), &e.EventAttributes); err != nil {
				return nil, fmt.Errorf("decode event attributes: %w", err)
			}
			if e.EventAttributes == nil {
				e.EventAttributes = map[string]any{}
			}
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked events: %w", err)
	}
	return events, nil
}

// Count returns the number of tracked events.
func (s *SQLiteClient) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClientClosed
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tracked_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tracked events: %w", err)
	}
	return n, nil
}

// Close closes the database. The client is invalid afterwards.
func (s *SQLiteClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
