package kitbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for the kit lifecycle.
var (
	// ErrMissingProjectKey indicates Create had to start a destination
	// client but no projectId setting was provided.
	ErrMissingProjectKey = errors.New("projectId setting is required to start the destination client")

	// ErrNoStarter indicates Create had to start a destination client but
	// the kit was built without WithStarter.
	ErrNoStarter = errors.New("no destination starter configured")

	// ErrKitDestroyed indicates the kit was used after Destroy.
	ErrKitDestroyed = errors.New("kit destroyed")
)

// PanicError captures a panic recovered at a kit entry point.
// It includes the stack trace for debugging.
type PanicError struct {
	// Entry is the entry point that panicked ("LogEvent", "LogCommerceEvent").
	Entry string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Entry, e.Value)
}
