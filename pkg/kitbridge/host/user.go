package host

import "maps"

// IdentityType names a user identity known to the host.
type IdentityType string

// Identity types.
const (
	IdentityCustomerID IdentityType = "customer_id"
	IdentityEmail      IdentityType = "email"
	IdentityOther      IdentityType = "other"
	IdentityFacebook   IdentityType = "facebook"
	IdentityGoogle     IdentityType = "google"
)

// AttributeListener receives the user's attributes. Values are of arbitrary
// type; a nil value means the attribute is set without a value.
type AttributeListener func(attributes map[string]any)

// User is a snapshot of the host's current user.
type User interface {
	// ID returns the host's numeric user id.
	ID() int64

	// Identities returns the user's identities by type.
	Identities() map[IdentityType]string

	// GetUserAttributes fetches the user's attributes and invokes listener
	// with the result, possibly on another goroutine.
	GetUserAttributes(listener AttributeListener)
}

// StaticUser is a User backed by fixed values.
type StaticUser struct {
	MPID           int64                   `yaml:"mpid" json:"mpid"`
	UserIdentities map[IdentityType]string `yaml:"identities" json:"identities"`
	UserAttributes map[string]any          `yaml:"attributes" json:"attributes"`

	// Async delivers attributes from a new goroutine, the way hosts that
	// read attributes from disk do.
	Async bool `yaml:"async" json:"async"`
}

// Compile-time interface check.
var _ User = (*StaticUser)(nil)

// ID implements User.
func (u *StaticUser) ID() int64 {
	return u.MPID
}

// Identities implements User.
func (u *StaticUser) Identities() map[IdentityType]string {
	return maps.Clone(u.UserIdentities)
}

// GetUserAttributes implements User.
func (u *StaticUser) GetUserAttributes(listener AttributeListener) {
	attrs := maps.Clone(u.UserAttributes)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	if u.Async {
		go listener(attrs)
		return
	}
	listener(attrs)
}
