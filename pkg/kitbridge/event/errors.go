package event

import "errors"

// Sentinel errors for record construction.
var (
	// ErrEmptyUserID indicates a record was built without a user id.
	ErrEmptyUserID = errors.New("record user id is empty")

	// ErrEmptyName indicates a record was built without an event name.
	ErrEmptyName = errors.New("record name is empty")
)
