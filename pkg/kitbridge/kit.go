package kitbridge

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/config"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/gate"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/identity"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/translate"
)

// Name is the kit name reported to the host.
const Name = "Optimizely"

// Kit forwards host events to the destination client.
type Kit struct {
	host host.Host
	cfg  kitConfig
	gate *gate.Gate

	mu         sync.RWMutex
	translator *translate.Translator
	settings   config.Settings
	destroyed  bool
}

// New creates a kit reading users and the device stamp from h.
//
// The gate exists from construction, so SetClient and OnClientAvailable
// may be called before Create. Until Create runs, identity resolution uses
// the device application stamp.
func New(h host.Host, opts ...Option) *Kit {
	cfg := defaultKitConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	g := cfg.gate
	if g == nil {
		g = gate.New(gate.Config{
			Capacity: cfg.capacity,
			Logger:   cfg.logger,
			Metrics:  cfg.metrics,
		})
	}

	k := &Kit{host: h, cfg: cfg, gate: g}
	k.translator = k.newTranslator(identity.PolicyUnset)
	return k
}

func (k *Kit) newTranslator(policy identity.Policy) *translate.Translator {
	return translate.New(translate.Config{
		Resolver: identity.NewResolver(policy, k.host, k.cfg.logger),
		Expander: k.cfg.expander,
		Logger:   k.cfg.logger,
		Metrics:  k.cfg.metrics,
	})
}

// Name returns the kit name.
func (k *Kit) Name() string {
	return Name
}

// Create applies host settings and, unless a client is already pinned or
// available, starts the destination client. The started client reaches
// the gate through its asynchronous ready callback.
//
// Recognized settings: userIdField, eventInterval, datafileInterval,
// projectId. Unparseable intervals are logged and ignored.
func (k *Kit) Create(ctx context.Context, settings map[string]string) error {
	k.mu.Lock()
	if k.destroyed {
		k.mu.Unlock()
		return ErrKitDestroyed
	}
	parsed := config.ParseSettings(config.FromStrings(settings), k.cfg.logger)
	k.settings = parsed
	k.translator = k.newTranslator(parsed.Policy)
	k.mu.Unlock()

	if k.gate.Pinned() || k.gate.Available() {
		return nil
	}
	if parsed.ProjectKey == "" {
		return ErrMissingProjectKey
	}
	if k.cfg.starter == nil {
		return ErrNoStarter
	}
	if err := k.cfg.starter.Start(ctx, parsed.Destination(), k.gate.OnAsyncReady); err != nil {
		return fmt.Errorf("start destination client: %w", err)
	}
	return nil
}

// Destroy tears down the gate: the client, pinned flag, listeners and
// pending records are discarded. Logging calls afterwards return nil.
func (k *Kit) Destroy() {
	k.mu.Lock()
	k.destroyed = true
	k.mu.Unlock()
	k.gate.Teardown()
}

// Settings returns the settings parsed by the last Create.
func (k *Kit) Settings() config.Settings {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.settings
}

// Gate returns the kit's gate.
func (k *Kit) Gate() *gate.Gate {
	return k.gate
}

// SetClient pins c as the destination client. A pinned client is never
// replaced by the destination SDK's own startup.
func (k *Kit) SetClient(c destination.Client) {
	k.gate.SetExplicit(c)
}

// Client returns the current destination client, which may be nil.
func (k *Kit) Client() destination.Client {
	return k.gate.Client()
}

// OnClientAvailable registers a one-shot listener for client availability.
// If a valid client is already held the listener runs immediately.
func (k *Kit) OnClientAvailable(l gate.Listener) gate.Subscription {
	return k.gate.RegisterListener(l)
}

// current returns the translator, or nil after Destroy.
func (k *Kit) current() *translate.Translator {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.destroyed {
		return nil
	}
	return k.translator
}

// LogEvent translates evt into a record and delivers it. It returns one
// reporting message when a record was produced and nil otherwise. It
// never panics.
func (k *Kit) LogEvent(ctx context.Context, evt *host.Event) (msgs []ReportingMessage) {
	name := ""
	if evt != nil {
		name = evt.Name
	}
	logger := observability.EnrichLogger(k.cfg.logger, Name, name)

	ctx, span := k.cfg.spans.StartLogSpan(ctx, observability.SpanLogEvent, name)
	var spanErr error
	defer func() {
		k.cfg.spans.EndSpanWithError(span, spanErr)
	}()
	defer func() {
		if r := recover(); r != nil {
			spanErr = k.recovered("LogEvent", r)
			msgs = nil
		}
	}()

	t := k.current()
	if t == nil {
		spanErr = ErrKitDestroyed
		observability.LogRecordDropped(logger, name, ErrKitDestroyed.Error())
		return nil
	}

	done := observability.TimedOperation()
	rec, err := t.TranslateOne(ctx, evt, k.host.CurrentUser())
	if err != nil {
		k.cfg.metrics.RecordTranslation(ctx, observability.SpanLogEvent, 0, done())
		observability.LogRecordDropped(logger, name, err.Error())
		spanErr = err
		return nil
	}
	k.cfg.metrics.RecordTranslation(ctx, observability.SpanLogEvent, 1, done())

	k.deliver(ctx, rec)
	return []ReportingMessage{newReportingMessage(MessageTypeEvent, name)}
}

// LogCommerceEvent expands ce, translates every atomic event and delivers
// the records in expansion order. It returns one reporting message when
// the expansion was non-empty, even if some items produced no record, and
// nil otherwise. It never panics.
func (k *Kit) LogCommerceEvent(ctx context.Context, ce *host.CommerceEvent) (msgs []ReportingMessage) {
	name := ""
	if ce != nil {
		name = ce.DisplayName()
	}
	logger := observability.EnrichLogger(k.cfg.logger, Name, name)

	ctx, span := k.cfg.spans.StartLogSpan(ctx, observability.SpanLogCommerceEvent, name)
	var spanErr error
	defer func() {
		k.cfg.spans.EndSpanWithError(span, spanErr)
	}()
	defer func() {
		if r := recover(); r != nil {
			spanErr = k.recovered("LogCommerceEvent", r)
			msgs = nil
		}
	}()

	t := k.current()
	if t == nil {
		spanErr = ErrKitDestroyed
		observability.LogRecordDropped(logger, name, ErrKitDestroyed.Error())
		return nil
	}

	done := observability.TimedOperation()
	recs, handled := t.TranslateMany(ctx, ce, k.host.CurrentUser())
	k.cfg.metrics.RecordTranslation(ctx, observability.SpanLogCommerceEvent, len(recs), done())

	for _, rec := range recs {
		k.deliver(ctx, rec)
	}
	if !handled {
		observability.LogRecordDropped(logger, name, "commerce event expanded to no events")
		return nil
	}
	return []ReportingMessage{newReportingMessage(MessageTypeCommerceEvent, name)}
}

func (k *Kit) deliver(ctx context.Context, rec *event.Record) {
	outcome := k.gate.Deliver(ctx, rec)
	k.cfg.spans.AddSpanEvent(ctx, "record."+string(outcome),
		attribute.String("record.id", rec.ID),
		attribute.String("event.name", rec.Name),
	)
}

func (k *Kit) recovered(entry string, r any) error {
	err := &PanicError{
		Entry: entry,
		Value: r,
		Stack: string(debug.Stack()),
	}
	observability.LogEntryPanic(k.cfg.logger, entry, err)
	return err
}

// SetOptOut is a no-op.
func (k *Kit) SetOptOut(bool) []ReportingMessage {
	return nil
}

// LeaveBreadcrumb is a no-op.
func (k *Kit) LeaveBreadcrumb(string) []ReportingMessage {
	return nil
}

// LogError is a no-op.
func (k *Kit) LogError(string, map[string]string) []ReportingMessage {
	return nil
}

// LogException is a no-op.
func (k *Kit) LogException(error, string, map[string]string) []ReportingMessage {
	return nil
}

// LogScreen is a no-op.
func (k *Kit) LogScreen(string, map[string]string) []ReportingMessage {
	return nil
}

// LogLtvIncrease is a no-op.
func (k *Kit) LogLtvIncrease(float64, float64, string, map[string]string) []ReportingMessage {
	return nil
}
