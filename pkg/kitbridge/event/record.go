// Package event defines the destination-shaped records produced by the
// translator and carried through the gate and pending queue.
//
// A Record is owned by whichever pipeline stage holds it. Once handed to the
// gate it must not be mutated by the caller.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Reserved event attribute keys written by the translator.
const (
	// AttrValue carries the numeric value override.
	AttrValue = "value"

	// AttrRevenue carries commerce revenue in cents.
	AttrRevenue = "revenue"
)

// Record is one tracking call for the destination client.
type Record struct {
	// ID identifies the record in logs and traces.
	ID string `json:"id"`

	// Name is the destination event name.
	Name string `json:"name"`

	// UserID is never empty for a record built with NewRecord.
	UserID string `json:"user_id"`

	// UserAttributes is the flattened user attribute snapshot.
	UserAttributes map[string]string `json:"user_attributes"`

	// EventAttributes is nil when the source event carried no custom
	// attributes. A nil map and an empty map are sent differently.
	EventAttributes Attributes `json:"event_attributes"`

	// CreatedAt is when the record was built.
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord builds a record with a fresh ID.
// It returns ErrEmptyName or ErrEmptyUserID instead of a record that would
// violate the delivery invariants.
func NewRecord(name, userID string, userAttributes map[string]string) (*Record, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if userAttributes == nil {
		userAttributes = make(map[string]string)
	}
	return &Record{
		ID:             uuid.New().String(),
		Name:           name,
		UserID:         userID,
		UserAttributes: userAttributes,
		CreatedAt:      time.Now(),
	}, nil
}

// SetAttribute stores an event attribute, allocating the map on first use.
func (r *Record) SetAttribute(key string, v Value) {
	if r.EventAttributes == nil {
		r.EventAttributes = make(Attributes)
	}
	r.EventAttributes[key] = v
}

// HasEventAttributes reports whether the record carries an attribute map,
// even an empty one.
func (r *Record) HasEventAttributes() bool {
	return r.EventAttributes != nil
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	recordCopy := *r
	if r.UserAttributes != nil {
		recordCopy.UserAttributes = make(map[string]string, len(r.UserAttributes))
		for k, v := range r.UserAttributes {
			recordCopy.UserAttributes[k] = v
		}
	}
	recordCopy.EventAttributes = r.EventAttributes.Clone()
	return &recordCopy
}
