package identity_test

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/identity"
)

const stamp = "das-0001"

var allPolicies = []identity.Policy{
	identity.PolicyUnset,
	identity.PolicyCustomerID,
	identity.PolicyEmail,
	identity.PolicyMPID,
	identity.PolicyDeviceStamp,
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want identity.Policy
	}{
		{"customerId", identity.PolicyCustomerID},
		{"CUSTOMERID", identity.PolicyCustomerID},
		{"email", identity.PolicyEmail},
		{"Email", identity.PolicyEmail},
		{"mpid", identity.PolicyMPID},
		{"MPID", identity.PolicyMPID},
		{"deviceApplicationStamp", identity.PolicyDeviceStamp},
		{"deviceapplicationstamp", identity.PolicyDeviceStamp},
		{"", identity.PolicyUnset},
		{"phone", identity.PolicyUnset},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.ParsePolicy(tt.in))
		})
	}
}

func TestPolicy_StringRoundTrip(t *testing.T) {
	for _, p := range allPolicies[1:] {
		assert.Equal(t, p, identity.ParsePolicy(p.String()))
	}
	assert.Equal(t, "unset", identity.PolicyUnset.String())
}

func TestResolver_Resolve(t *testing.T) {
	user := &host.StaticUser{
		MPID: 42,
		UserIdentities: map[host.IdentityType]string{
			host.IdentityCustomerID: "cust-7",
			host.IdentityEmail:      "a@example.com",
		},
	}
	stamps := &host.StaticHost{Stamp: stamp}

	tests := []struct {
		name   string
		policy identity.Policy
		user   host.User
		want   string
	}{
		{"customer id", identity.PolicyCustomerID, user, "cust-7"},
		{"email", identity.PolicyEmail, user, "a@example.com"},
		{"mpid", identity.PolicyMPID, user, "42"},
		{"device stamp", identity.PolicyDeviceStamp, user, stamp},
		{"unset", identity.PolicyUnset, user, stamp},
		{"missing customer id falls back", identity.PolicyCustomerID, &host.StaticUser{MPID: 1}, stamp},
		{"empty email falls back", identity.PolicyEmail, &host.StaticUser{
			UserIdentities: map[host.IdentityType]string{host.IdentityEmail: ""},
		}, stamp},
		{"nil user", identity.PolicyMPID, nil, stamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := identity.NewResolver(tt.policy, stamps, nil)
			assert.Equal(t, tt.want, r.Resolve(tt.user))
		})
	}
}

func TestResolver_NeverEmpty(t *testing.T) {
	faker := gofakeit.New(7)
	stamps := &host.StaticHost{Stamp: faker.UUID()}

	for i := 0; i < 200; i++ {
		identities := map[host.IdentityType]string{}
		if faker.Bool() {
			identities[host.IdentityCustomerID] = faker.UUID()
		}
		if faker.Bool() {
			identities[host.IdentityEmail] = faker.Email()
		}
		user := &host.StaticUser{MPID: faker.Int64(), UserIdentities: identities}

		for _, p := range allPolicies {
			r := identity.NewResolver(p, stamps, nil)
			assert.NotEmpty(t, r.Resolve(user), "policy %s", p)
			assert.Equal(t, stamps.Stamp, r.Resolve(nil), "nil user, policy %s", p)
		}
	}
}

func TestResolver_MPIDIsDecimal(t *testing.T) {
	r := identity.NewResolver(identity.PolicyMPID, &host.StaticHost{Stamp: stamp}, nil)
	user := &host.StaticUser{MPID: -8675309}
	assert.Equal(t, strconv.FormatInt(-8675309, 10), r.Resolve(user))
}

func TestResolver_LogsFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := identity.NewResolver(identity.PolicyEmail, &host.StaticHost{Stamp: stamp}, logger)
	assert.Equal(t, stamp, r.Resolve(&host.StaticUser{}))
	assert.Contains(t, buf.String(), "using device application stamp")

	buf.Reset()
	r = identity.NewResolver(identity.PolicyUnset, &host.StaticHost{Stamp: stamp}, logger)
	r.Resolve(&host.StaticUser{})
	assert.Empty(t, buf.String(), "unset policy uses the stamp without logging")
}

func TestSnapshotter_Snapshot(t *testing.T) {
	s := identity.NewSnapshotter()
	ctx := context.Background()

	t.Run("nil user yields empty map", func(t *testing.T) {
		got, err := s.Snapshot(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("flattens values", func(t *testing.T) {
		user := &host.StaticUser{UserAttributes: map[string]any{
			"name":    "Ada",
			"age":     36,
			"score":   1.5,
			"premium": true,
			"missing": nil,
		}}

		got, err := s.Snapshot(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"name":    "Ada",
			"age":     "36",
			"score":   "1.5",
			"premium": "true",
		}, got)
		_, present := got["missing"]
		assert.False(t, present, "nil values are omitted, not empty")
	})

	t.Run("waits for asynchronous delivery", func(t *testing.T) {
		user := &host.StaticUser{
			UserAttributes: map[string]any{"plan": "pro"},
			Async:          true,
		}

		got, err := s.Snapshot(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"plan": "pro"}, got)
	})

	t.Run("first callback wins", func(t *testing.T) {
		got, err := s.Snapshot(ctx, doubleCallbackUser{})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"n": "1"}, got)
	})

	t.Run("context cancellation abandons the wait", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := s.Snapshot(ctx, silentUser{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// doubleCallbackUser invokes the listener twice.
type doubleCallbackUser struct{}

func (doubleCallbackUser) ID() int64                                { return 1 }
func (doubleCallbackUser) Identities() map[host.IdentityType]string { return nil }

func (doubleCallbackUser) GetUserAttributes(l host.AttributeListener) {
	l(map[string]any{"n": 1})
	l(map[string]any{"n": 2})
}

// silentUser never invokes the listener.
type silentUser struct{}

func (silentUser) ID() int64                                { return 2 }
func (silentUser) Identities() map[host.IdentityType]string { return nil }

func (silentUser) GetUserAttributes(host.AttributeListener) {}
