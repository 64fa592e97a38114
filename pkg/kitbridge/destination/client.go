// Package destination defines the destination tracking client the kit
// forwards records to, how that client is started, and two reference
// clients: MemoryClient for tests and SQLiteClient for local capture.
package destination

import (
	"errors"
	"time"
)

// Client is a destination tracking client.
//
// Track is used for records without event attributes and
// TrackWithAttributes for records that carry them, even when empty.
type Client interface {
	Track(eventName, userID string, userAttributes map[string]string) error
	TrackWithAttributes(eventName, userID string, userAttributes map[string]string, eventAttributes map[string]any) error

	// IsValid reports whether the client can accept events.
	IsValid() bool
}

// Valid reports whether c is non-nil and valid.
func Valid(c Client) bool {
	return c != nil && c.IsValid()
}

// Sentinel errors for destination clients.
var (
	// ErrClientClosed is returned when tracking through a closed client.
	ErrClientClosed = errors.New("destination client closed")

	// ErrClientInvalid is returned when tracking through a client that
	// reports itself invalid.
	ErrClientInvalid = errors.New("destination client invalid")
)

// TrackedEvent is one call received by a reference client.
type TrackedEvent struct {
	Sequence       int64             `json:"sequence"`
	Name           string            `json:"name"`
	UserID         string            `json:"user_id"`
	UserAttributes map[string]string `json:"user_attributes"`

	// EventAttributes is nil when the event came through Track.
	EventAttributes map[string]any `json:"event_attributes,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// WithAttributes reports whether the event came through TrackWithAttributes.
func (e TrackedEvent) WithAttributes() bool {
	return e.EventAttributes != nil
}
