package destination

import (
	"maps"
	"sync"
	"time"
)

// MemoryClient is an in-memory Client that records every call.
// It starts valid; SetValid toggles validity and SetError makes
// subsequent calls fail after being recorded.
type MemoryClient struct {
	mu    sync.RWMutex
	calls []TrackedEvent
	valid bool
	err   error
}

// Compile-time interface check.
var _ Client = (*MemoryClient)(nil)

// NewMemoryClient creates a valid MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{valid: true}
}

// Track implements Client.
func (m *MemoryClient) Track(eventName, userID string, userAttributes map[string]string) error {
	return m.record(eventName, userID, userAttributes, nil)
}

// TrackWithAttributes implements Client.
func (m *MemoryClient) TrackWithAttributes(eventName, userID string, userAttributes map[string]string, eventAttributes map[string]any) error {
	attrs := maps.Clone(eventAttributes)
	if attrs == nil {
		attrs = map[string]any{}
	}
	return m.record(eventName, userID, userAttributes, attrs)
}

func (m *MemoryClient) record(name, userID string, userAttrs map[string]string, eventAttrs map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.valid {
		return ErrClientInvalid
	}

	m.calls = append(m.calls, TrackedEvent{
		Sequence:        int64(len(m.calls) + 1),
		Name:            name,
		UserID:          userID,
		UserAttributes:  maps.Clone(userAttrs),
		EventAttributes: eventAttrs,
		Timestamp:       time.Now().UTC(),
	})
	return m.err
}

// IsValid implements Client.
func (m *MemoryClient) IsValid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.valid
}

// SetValid sets the client's validity.
func (m *MemoryClient) SetValid(valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = valid
}

// SetError makes subsequent calls return err. Nil clears it.
func (m *MemoryClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of the recorded calls in order.
func (m *MemoryClient) Calls() []TrackedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TrackedEvent, len(m.calls))
	copy(out, m.calls)
	return out
}

// Names returns the recorded event names in order.
func (m *MemoryClient) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Name
	}
	return out
}

// Len returns the number of recorded calls.
// Useful for testing.
func (m *MemoryClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// Reset discards recorded calls.
func (m *MemoryClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
