package gate

import "github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"

// Listener is notified once when a destination client becomes available.
type Listener interface {
	OnClientAvailable(c destination.Client)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c destination.Client)

// OnClientAvailable implements Listener.
func (f ListenerFunc) OnClientAvailable(c destination.Client) {
	f(c)
}

// Subscription is a registered listener.
type Subscription interface {
	// ID identifies the registration. Empty when the listener was invoked
	// immediately and never registered.
	ID() string

	// Unsubscribe removes the listener if it has not fired yet.
	Unsubscribe()
}

// subscription is a pending listener registration.
type subscription struct {
	id       string
	listener Listener
	gate     *Gate
}

// ID implements Subscription.
func (s *subscription) ID() string {
	return s.id
}

// Unsubscribe implements Subscription.
func (s *subscription) Unsubscribe() {
	s.gate.unsubscribe(s.id)
}

// firedSubscription is returned for listeners invoked at registration.
type firedSubscription struct{}

func (firedSubscription) ID() string   { return "" }
func (firedSubscription) Unsubscribe() {}
