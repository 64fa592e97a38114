// Package identity resolves the user id and user attributes that accompany
// each destination record.
package identity

import "strings"

// Policy selects which host identity supplies the destination user id.
type Policy int

// Identifier policies.
const (
	PolicyUnset Policy = iota
	PolicyCustomerID
	PolicyEmail
	PolicyMPID
	PolicyDeviceStamp
)

// Setting values recognized by ParsePolicy.
const (
	SettingCustomerID  = "customerId"
	SettingEmail       = "email"
	SettingMPID        = "mpid"
	SettingDeviceStamp = "deviceApplicationStamp"
)

// ParsePolicy maps a userIdField setting to a Policy. Matching is
// case-insensitive; unknown or empty values yield PolicyUnset.
func ParsePolicy(s string) Policy {
	switch {
	case strings.EqualFold(s, SettingCustomerID):
		return PolicyCustomerID
	case strings.EqualFold(s, SettingEmail):
		return PolicyEmail
	case strings.EqualFold(s, SettingMPID):
		return PolicyMPID
	case strings.EqualFold(s, SettingDeviceStamp):
		return PolicyDeviceStamp
	default:
		return PolicyUnset
	}
}

// String returns the setting value for p, or "unset".
func (p Policy) String() string {
	switch p {
	case PolicyCustomerID:
		return SettingCustomerID
	case PolicyEmail:
		return SettingEmail
	case PolicyMPID:
		return SettingMPID
	case PolicyDeviceStamp:
		return SettingDeviceStamp
	default:
		return "unset"
	}
}
