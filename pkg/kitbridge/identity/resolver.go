package identity

import (
	"log/slog"
	"strconv"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// Resolver picks the destination user id for a host user.
//
// Resolve never fails: when the user is nil or the policy's identity is
// empty, it falls back to the device application stamp.
type Resolver struct {
	policy Policy
	stamps host.StampProvider
	logger *slog.Logger
}

// NewResolver creates a Resolver. logger may be nil.
func NewResolver(policy Policy, stamps host.StampProvider, logger *slog.Logger) *Resolver {
	return &Resolver{
		policy: policy,
		stamps: stamps,
		logger: logger,
	}
}

// Policy returns the configured policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve returns the user id for user under the configured policy.
func (r *Resolver) Resolve(user host.User) string {
	if id := r.lookup(user); id != "" {
		return id
	}
	if r.policy != PolicyUnset && r.policy != PolicyDeviceStamp {
		observability.LogUserIDFallback(r.logger, r.policy.String())
	}
	return r.stamps.DeviceApplicationStamp()
}

func (r *Resolver) lookup(user host.User) string {
	if user == nil {
		return ""
	}
	switch r.policy {
	case PolicyCustomerID:
		return user.Identities()[host.IdentityCustomerID]
	case PolicyEmail:
		return user.Identities()[host.IdentityEmail]
	case PolicyMPID:
		return strconv.FormatInt(user.ID(), 10)
	default:
		return ""
	}
}
