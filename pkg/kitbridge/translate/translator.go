// Package translate converts host events into destination records.
//
// A generic event becomes at most one record. A commerce event is expanded
// into ordered atomic events and each becomes at most one record; the
// aggregate purchase or refund item also carries revenue in cents and the
// event name override.
package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/identity"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// Config configures a Translator.
type Config struct {
	// Resolver picks the user id. Required.
	Resolver *identity.Resolver

	// Snapshotter fetches user attributes.
	// Default: identity.NewSnapshotter()
	Snapshotter *identity.Snapshotter

	// Expander decomposes commerce events.
	// Default: host.DefaultExpander{}
	Expander host.Expander

	// Logger receives translation logs. Nil disables logging.
	Logger *slog.Logger

	// Metrics records skipped overrides. Nil uses NoopMetrics.
	Metrics observability.MetricsRecorder
}

// Translator builds destination records from host events.
type Translator struct {
	resolver    *identity.Resolver
	snapshotter *identity.Snapshotter
	expander    host.Expander
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
}

// New creates a Translator. It panics if cfg.Resolver is nil.
func New(cfg Config) *Translator {
	if cfg.Resolver == nil {
		panic("translate: nil resolver")
	}
	t := &Translator{
		resolver:    cfg.Resolver,
		snapshotter: cfg.Snapshotter,
		expander:    cfg.Expander,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if t.snapshotter == nil {
		t.snapshotter = identity.NewSnapshotter()
	}
	if t.expander == nil {
		t.expander = host.DefaultExpander{}
	}
	if t.metrics == nil {
		t.metrics = observability.NoopMetrics{}
	}
	return t
}

// Expander returns the commerce expander in use.
func (t *Translator) Expander() host.Expander {
	return t.expander
}

// TranslateOne builds the record for evt. It returns ErrUnresolvedUser when
// no user id is available. Unparseable overrides are logged and skipped.
func (t *Translator) TranslateOne(ctx context.Context, evt *host.Event, user host.User) (*event.Record, error) {
	rec, err := t.base(ctx, evt, user)
	if err != nil {
		return nil, err
	}

	if raw, ok := evt.Flag(FlagValue); ok {
		t.applyValue(ctx, rec, raw)
	}
	if raw, ok := evt.Flag(FlagUserID); ok {
		t.applyUserID(rec, raw)
	}
	return rec, nil
}

// TranslateMany builds records for the atomic events of ce, in expansion
// order. Items whose user id cannot be resolved are omitted. handled
// reports whether the expansion was non-empty, regardless of how many
// records were produced.
func (t *Translator) TranslateMany(ctx context.Context, ce *host.CommerceEvent, user host.User) (records []*event.Record, handled bool) {
	if ce == nil {
		return nil, false
	}
	items := t.expander.Expand(ce)
	if len(items) == 0 {
		return nil, false
	}

	var aggregate string
	if ce.ProductAction != "" {
		aggregate = t.expander.AggregateName(ce.ProductAction)
	}
	nameOverride, _ := ce.Flag(FlagEventName)
	userOverride, _ := ce.Flag(FlagUserID)

	records = make([]*event.Record, 0, len(items))
	for _, item := range items {
		rec, err := t.base(ctx, item, user)
		if err != nil {
			name := ""
			if item != nil {
				name = item.Name
			}
			observability.LogRecordDropped(t.logger, name, err.Error())
			continue
		}

		if aggregate != "" && item.Name == aggregate {
			if total, ok := item.CustomAttributes[host.AttrTotalAmount]; ok {
				t.applyRevenue(ctx, rec, total)
			}
			t.applyName(rec, nameOverride)
		}
		t.applyUserID(rec, userOverride)

		records = append(records, rec)
	}
	return records, true
}

// base resolves identity and attributes and copies the event's name and
// custom attributes into a new record.
func (t *Translator) base(ctx context.Context, evt *host.Event, user host.User) (*event.Record, error) {
	if evt == nil {
		return nil, ErrNilEvent
	}

	userID := t.resolver.Resolve(user)
	if userID == "" {
		return nil, ErrUnresolvedUser
	}

	userAttrs, err := t.snapshotter.Snapshot(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("snapshot user attributes: %w", err)
	}

	rec, err := event.NewRecord(evt.Name, userID, userAttrs)
	if err != nil {
		return nil, err
	}

	if len(evt.CustomAttributes) > 0 {
		rec.EventAttributes = make(event.Attributes, len(evt.CustomAttributes))
		for k, v := range evt.CustomAttributes {
			rec.EventAttributes[k] = event.String(v)
		}
	}
	return rec, nil
}
