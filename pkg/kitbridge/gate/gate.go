// Package gate holds the destination client, buffers records while it is
// unavailable, and notifies one-shot listeners when it becomes available.
//
// A Gate moves through these states:
//
//	Absent -> PinnedValid                       (SetExplicit with a valid client)
//	Absent -> ReceivedValid <-> ReceivedInvalid  (OnAsyncReady)
//	any    -> Destroyed                          (Teardown)
//
// Every operation runs its state decision and queue work under one mutex.
// On an availability transition the registered listeners are detached
// under that mutex and fired outside it, each at most once; the pending
// queue is drained through the client afterwards. Listeners still detached
// when Teardown runs are not fired.
package gate

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/queue"
)

// Outcome describes what Deliver did with a record.
type Outcome string

// Delivery outcomes.
const (
	Sent    Outcome = observability.OutcomeSent
	Queued  Outcome = observability.OutcomeQueued
	Dropped Outcome = observability.OutcomeDropped
	Failed  Outcome = observability.OutcomeFailed
)

// Config configures a Gate.
type Config struct {
	// Capacity bounds the pending queue.
	// Default: queue.DefaultCapacity (10)
	Capacity int

	// Logger receives gate logs. Nil disables logging.
	Logger *slog.Logger

	// Metrics records delivery metrics. Nil uses NoopMetrics.
	Metrics observability.MetricsRecorder
}

// Gate is the holder of the destination client.
type Gate struct {
	mu        sync.Mutex
	client    destination.Client
	pinned    bool
	destroyed bool
	listeners []*subscription
	pending   *queue.Pending

	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// New creates a Gate with no client.
func New(cfg Config) *Gate {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Gate{
		pending: queue.NewPending(cfg.Capacity),
		logger:  cfg.Logger,
		metrics: metrics,
	}
}

// SetExplicit pins c as the gate's client. The asynchronous path never
// replaces a pinned client. A valid c fires listeners and drains the
// pending queue; a nil or invalid c leaves the gate pinned but unavailable.
func (g *Gate) SetExplicit(c destination.Client) {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		observability.LogClientIgnored(g.logger, "gate torn down")
		return
	}
	g.pinned = true
	g.client = c
	if !destination.Valid(c) {
		g.mu.Unlock()
		return
	}
	fired := g.detachListenersLocked()
	g.mu.Unlock()

	g.becomeAvailable(c, fired, true)
}

// OnAsyncReady accepts a client produced by the destination SDK's own
// startup. It is ignored when a client is pinned or when c is nil or
// invalid.
func (g *Gate) OnAsyncReady(c destination.Client) {
	g.mu.Lock()
	switch {
	case g.destroyed:
		g.mu.Unlock()
		observability.LogClientIgnored(g.logger, "gate torn down")
		return
	case g.pinned:
		g.mu.Unlock()
		observability.LogClientIgnored(g.logger, "client pinned")
		return
	case !destination.Valid(c):
		g.mu.Unlock()
		observability.LogClientIgnored(g.logger, "client invalid")
		return
	}
	g.client = c
	fired := g.detachListenersLocked()
	g.mu.Unlock()

	g.becomeAvailable(c, fired, false)
}

// detachListenersLocked empties the registry and returns what it held.
// g.mu must be held.
func (g *Gate) detachListenersLocked() []*subscription {
	fired := g.listeners
	g.listeners = nil
	return fired
}

// becomeAvailable fires the detached listeners, then drains the pending
// queue. Both run after the transition's critical section, so listeners
// may call back into the gate. A Deliver that lands before the drain
// flushes the queue itself, which keeps delivery FIFO.
func (g *Gate) becomeAvailable(c destination.Client, fired []*subscription, pinned bool) {
	ctx := context.Background()

	notified := 0
	for _, sub := range fired {
		if g.Destroyed() {
			break
		}
		g.invoke(sub.listener, c)
		notified++
	}

	drained := g.drain(ctx)

	g.metrics.RecordListenersNotified(ctx, notified)
	g.metrics.RecordDrain(ctx, drained)
	observability.LogClientAvailable(g.logger, pinned, drained, notified)
}

// drain replays the pending queue through the current client, if it is
// still valid.
func (g *Gate) drain(ctx context.Context) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.client
	if g.destroyed || !destination.Valid(c) {
		return 0
	}
	return g.pending.DrainAll(func(rec *event.Record) {
		g.send(ctx, c, rec)
	})
}

func (g *Gate) invoke(l Listener, c destination.Client) {
	defer func() {
		if r := recover(); r != nil {
			observability.LogListenerPanic(g.logger, r)
		}
	}()
	l.OnClientAvailable(c)
}

// RegisterListener registers l to be notified once when a valid client
// becomes available. If one is already held, l is invoked immediately and
// not registered. After Teardown, l is never invoked.
func (g *Gate) RegisterListener(l Listener) Subscription {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return firedSubscription{}
	}
	if c := g.client; destination.Valid(c) {
		g.mu.Unlock()
		g.invoke(l, c)
		return firedSubscription{}
	}
	sub := &subscription{
		id:       uuid.NewString(),
		listener: l,
		gate:     g,
	}
	g.listeners = append(g.listeners, sub)
	g.mu.Unlock()
	return sub
}

func (g *Gate) unsubscribe(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = slices.DeleteFunc(g.listeners, func(s *subscription) bool {
		return s.id == id
	})
}

// Deliver sends rec through the client when it is valid and queues it
// otherwise. After Teardown, Deliver drops rec.
func (g *Gate) Deliver(ctx context.Context, rec *event.Record) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		observability.LogRecordDropped(g.logger, rec.Name, "gate torn down")
		g.metrics.RecordDelivery(ctx, observability.OutcomeDropped)
		return Dropped
	}

	if c := g.client; destination.Valid(c) {
		// Records still queued go first: a transition has not drained yet,
		// or the client became valid again on its own.
		if n := g.pending.DrainAll(func(r *event.Record) { g.send(ctx, c, r) }); n > 0 {
			g.metrics.RecordDrain(ctx, n)
		}
		return g.send(ctx, c, rec)
	}

	evicted, ok := g.pending.Enqueue(rec)
	if ok {
		observability.LogRecordEvicted(g.logger, evicted.ID, evicted.Name)
		g.metrics.RecordEviction(ctx)
	}
	observability.LogRecordQueued(g.logger, rec.ID, rec.Name, g.pending.Len())
	g.metrics.RecordDelivery(ctx, observability.OutcomeQueued)
	return Queued
}

// send hands rec to c. Failures are logged; the destination client owns
// retries.
func (g *Gate) send(ctx context.Context, c destination.Client, rec *event.Record) Outcome {
	var err error
	if rec.EventAttributes == nil {
		err = c.Track(rec.Name, rec.UserID, rec.UserAttributes)
	} else {
		err = c.TrackWithAttributes(rec.Name, rec.UserID, rec.UserAttributes, rec.EventAttributes.Interface())
	}
	if err != nil {
		observability.LogTrackFailed(g.logger, rec.ID, rec.Name, err)
		g.metrics.RecordDelivery(ctx, observability.OutcomeFailed)
		return Failed
	}
	observability.LogRecordSent(g.logger, rec.ID, rec.Name)
	g.metrics.RecordDelivery(ctx, observability.OutcomeSent)
	return Sent
}

// Teardown clears the client, the pinned flag, the listeners and the
// pending queue. The gate accepts nothing afterwards.
func (g *Gate) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.client = nil
	g.pinned = false
	g.listeners = nil
	g.pending.Clear()
	g.destroyed = true
}

// Client returns the held client, which may be nil or invalid.
func (g *Gate) Client() destination.Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.client
}

// Available reports whether a valid client is held.
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return destination.Valid(g.client)
}

// Pinned reports whether the client was set explicitly.
func (g *Gate) Pinned() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pinned
}

// Destroyed reports whether Teardown was called.
func (g *Gate) Destroyed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destroyed
}

// Pending returns the number of queued records.
func (g *Gate) Pending() int {
	return g.pending.Len()
}

// Listeners returns the number of registered listeners awaiting a client.
func (g *Gate) Listeners() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.listeners)
}
