// Package host models the event-tracking SDK that feeds the kit: the current
// user, the device application stamp, generic and commerce events, and the
// commerce-event decomposition.
//
// The kit only consumes these interfaces. StaticHost, StaticUser and
// DefaultExpander are reference implementations for tests, examples and the CLI.
package host

// Host is the part of the host SDK the kit reads from.
type Host interface {
	// CurrentUser returns the current user, or nil if none is identified.
	CurrentUser() User

	// DeviceApplicationStamp returns the installation's fallback identifier.
	// It is always available.
	DeviceApplicationStamp() string
}

// StampProvider supplies the device application stamp.
type StampProvider interface {
	DeviceApplicationStamp() string
}

// StaticHost is a Host with a fixed user and stamp.
type StaticHost struct {
	User  User
	Stamp string
}

// Compile-time interface check.
var _ Host = (*StaticHost)(nil)

// CurrentUser implements Host.
func (h *StaticHost) CurrentUser() User {
	return h.User
}

// DeviceApplicationStamp implements Host.
func (h *StaticHost) DeviceApplicationStamp() string {
	return h.Stamp
}
