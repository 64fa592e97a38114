package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
)

// Snapshotter fetches a user's attributes as a flat string map.
type Snapshotter struct{}

// NewSnapshotter creates a Snapshotter.
func NewSnapshotter() *Snapshotter {
	return &Snapshotter{}
}

// Snapshot fetches user's attributes once and flattens every value to its
// string form. Attributes with nil values are omitted.
//
// The host may deliver attributes on another goroutine; Snapshot blocks
// until they arrive or ctx is done. A nil user yields an empty map.
func (s *Snapshotter) Snapshot(ctx context.Context, user host.User) (map[string]string, error) {
	if user == nil {
		return map[string]string{}, nil
	}

	f := newFuture()
	user.GetUserAttributes(f.complete)

	select {
	case <-f.done:
		return flatten(f.attrs), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// future is completed by the first attribute callback; later ones are ignored.
type future struct {
	once  sync.Once
	done  chan struct{}
	attrs map[string]any
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) complete(attrs map[string]any) {
	f.once.Do(func() {
		f.attrs = attrs
		close(f.done)
	})
}

func flatten(attrs map[string]any) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if v == nil {
			continue
		}
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
