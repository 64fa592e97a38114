package translate

import (
	"context"
	"math"
	"strconv"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// Reserved custom flag keys read from host events.
const (
	// FlagValue carries a numeric value sent as the "value" event attribute.
	FlagValue = "Optimizely.Value"

	// FlagEventName renames the aggregate record of a commerce event.
	// An empty value is ignored.
	FlagEventName = "Optimizely.EventName"

	// FlagUserID replaces the resolved user id.
	FlagUserID = "Optimizely.UserId"
)

// parseValue parses a value override.
func parseValue(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &OverrideError{Override: FlagValue, Raw: raw, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &OverrideError{Override: FlagValue, Raw: raw, Err: ErrNotFinite}
	}
	return f, nil
}

// parseRevenue converts a decimal total to cents, truncating toward zero.
// Totals whose cents fall outside the int64 range are rejected.
func parseRevenue(raw string) (int64, error) {
	total, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &OverrideError{Override: event.AttrRevenue, Raw: raw, Err: err}
	}
	cents := total * 100
	switch {
	case math.IsNaN(cents) || math.IsInf(cents, 0):
		return 0, &OverrideError{Override: event.AttrRevenue, Raw: raw, Err: ErrNotFinite}
	case cents >= math.MaxInt64 || cents < math.MinInt64:
		// float64(MaxInt64) rounds up to 2^63, which is itself out of range.
		return 0, &OverrideError{Override: event.AttrRevenue, Raw: raw, Err: ErrRevenueOutOfRange}
	}
	return int64(cents), nil
}

// applyValue sets the "value" attribute from a raw flag value. An empty
// raw value is ignored.
func (t *Translator) applyValue(ctx context.Context, rec *event.Record, raw string) {
	if raw == "" {
		return
	}
	f, err := parseValue(raw)
	if err != nil {
		t.skip(ctx, FlagValue, raw, err)
		return
	}
	rec.SetAttribute(event.AttrValue, event.Float(f))
	observability.LogOverrideApplied(t.logger, FlagValue, raw)
}

// applyRevenue sets the "revenue" attribute from the aggregate total.
func (t *Translator) applyRevenue(ctx context.Context, rec *event.Record, raw string) {
	cents, err := parseRevenue(raw)
	if err != nil {
		t.skip(ctx, event.AttrRevenue, raw, err)
		return
	}
	rec.SetAttribute(event.AttrRevenue, event.Int(cents))
}

// applyName renames rec when raw is non-empty.
func (t *Translator) applyName(rec *event.Record, raw string) {
	if raw == "" {
		return
	}
	rec.Name = raw
	observability.LogOverrideApplied(t.logger, FlagEventName, raw)
}

// applyUserID replaces rec's user id when raw is non-empty.
func (t *Translator) applyUserID(rec *event.Record, raw string) {
	if raw == "" {
		return
	}
	rec.UserID = raw
	observability.LogOverrideApplied(t.logger, FlagUserID, raw)
}

func (t *Translator) skip(ctx context.Context, override, raw string, err error) {
	observability.LogOverrideSkipped(t.logger, override, raw, err)
	t.metrics.RecordOverrideSkipped(ctx, override)
}
