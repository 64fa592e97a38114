package translate

import (
	"errors"
	"fmt"
)

// Sentinel errors for translation.
var (
	// ErrUnresolvedUser indicates no user id could be resolved, so no record
	// was produced.
	ErrUnresolvedUser = errors.New("user id could not be resolved")

	// ErrNilEvent indicates a nil event was passed for translation.
	ErrNilEvent = errors.New("event is nil")

	// ErrNotFinite indicates a numeric override parsed to NaN or infinity.
	ErrNotFinite = errors.New("value is not finite")

	// ErrRevenueOutOfRange indicates a total whose cents do not fit in an int64.
	ErrRevenueOutOfRange = errors.New("revenue out of int64 range")
)

// OverrideError describes an override whose raw value could not be used.
// The record is still produced without the override.
type OverrideError struct {
	// Override is the flag or attribute that carried the value.
	Override string
	// Raw is the unparsed value.
	Raw string
	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *OverrideError) Error() string {
	return fmt.Sprintf("override %s: invalid value %q: %v", e.Override, e.Raw, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OverrideError) Unwrap() error {
	return e.Err
}
