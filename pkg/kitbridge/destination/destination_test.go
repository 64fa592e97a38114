package destination_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
)

func TestValid(t *testing.T) {
	assert.False(t, destination.Valid(nil))

	c := destination.NewMemoryClient()
	assert.True(t, destination.Valid(c))

	c.SetValid(false)
	assert.False(t, destination.Valid(c))
}

func TestMemoryClient(t *testing.T) {
	t.Run("records both overloads in order", func(t *testing.T) {
		c := destination.NewMemoryClient()

		require.NoError(t, c.Track("a", "u1", map[string]string{"plan": "pro"}))
		require.NoError(t, c.TrackWithAttributes("b", "u2", nil, map[string]any{"value": 1.5}))
		require.NoError(t, c.TrackWithAttributes("c", "u3", nil, nil))

		calls := c.Calls()
		require.Len(t, calls, 3)
		assert.Equal(t, []string{"a", "b", "c"}, c.Names())

		assert.False(t, calls[0].WithAttributes())
		assert.Equal(t, "pro", calls[0].UserAttributes["plan"])
		assert.Equal(t, int64(1), calls[0].Sequence)

		assert.True(t, calls[1].WithAttributes())
		assert.Equal(t, 1.5, calls[1].EventAttributes["value"])

		assert.True(t, calls[2].WithAttributes(), "empty attributes still use the attributes overload")
		assert.Empty(t, calls[2].EventAttributes)
	})

	t.Run("invalid client refuses calls", func(t *testing.T) {
		c := destination.NewMemoryClient()
		c.SetValid(false)

		err := c.Track("a", "u1", nil)
		assert.ErrorIs(t, err, destination.ErrClientInvalid)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("injected error is returned after recording", func(t *testing.T) {
		c := destination.NewMemoryClient()
		boom := errors.New("dispatch failed")
		c.SetError(boom)

		assert.ErrorIs(t, c.Track("a", "u1", nil), boom)
		assert.Equal(t, 1, c.Len())

		c.SetError(nil)
		assert.NoError(t, c.Track("b", "u1", nil))
	})

	t.Run("caller maps are copied", func(t *testing.T) {
		c := destination.NewMemoryClient()
		ua := map[string]string{"k": "v"}
		ea := map[string]any{"n": 1}
		require.NoError(t, c.TrackWithAttributes("a", "u1", ua, ea))

		ua["k"] = "changed"
		ea["n"] = 2

		call := c.Calls()[0]
		assert.Equal(t, "v", call.UserAttributes["k"])
		assert.Equal(t, 1, call.EventAttributes["n"])
	})

	t.Run("reset", func(t *testing.T) {
		c := destination.NewMemoryClient()
		require.NoError(t, c.Track("a", "u1", nil))
		c.Reset()
		assert.Equal(t, 0, c.Len())
	})
}

func TestSQLiteClient(t *testing.T) {
	t.Run("track and list", func(t *testing.T) {
		c, err := destination.NewSQLiteClient(":memory:")
		require.NoError(t, err)
		defer c.Close()

		assert.True(t, c.IsValid())
		require.NoError(t, c.Track("signup", "u1", map[string]string{"plan": "pro"}))
		require.NoError(t, c.TrackWithAttributes("purchase", "u1", nil, map[string]any{"revenue": int64(4550)}))
		require.NoError(t, c.TrackWithAttributes("empty", "u2", nil, map[string]any{}))

		events, err := c.List()
		require.NoError(t, err)
		require.Len(t, events, 3)

		assert.Equal(t, "signup", events[0].Name)
		assert.Equal(t, "pro", events[0].UserAttributes["plan"])
		assert.Nil(t, events[0].EventAttributes)
		assert.False(t, events[0].WithAttributes())

		assert.Equal(t, "purchase", events[1].Name)
		assert.Equal(t, float64(4550), events[1].EventAttributes["revenue"])
		assert.NotNil(t, events[1].UserAttributes)

		assert.True(t, events[2].WithAttributes())
		assert.Empty(t, events[2].EventAttributes)

		assert.Less(t, events[0].Sequence, events[1].Sequence)
		assert.False(t, events[0].Timestamp.IsZero())

		n, err := c.Count()
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("persistence", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "events.db")

		c1, err := destination.NewSQLiteClient(dbPath)
		require.NoError(t, err)
		require.NoError(t, c1.Track("a", "u1", nil))
		require.NoError(t, c1.Close())

		c2, err := destination.NewSQLiteClient(dbPath)
		require.NoError(t, err)
		defer c2.Close()

		n, err := c2.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("closed client is invalid", func(t *testing.T) {
		c, err := destination.NewSQLiteClient(":memory:")
		require.NoError(t, err)

		require.NoError(t, c.Close())
		assert.NoError(t, c.Close(), "close is idempotent")
		assert.False(t, c.IsValid())
		assert.ErrorIs(t, c.Track("a", "u1", nil), destination.ErrClientClosed)

		_, err = c.List()
		assert.ErrorIs(t, err, destination.ErrClientClosed)
		_, err = c.Count()
		assert.ErrorIs(t, err, destination.ErrClientClosed)
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := destination.NewSQLiteClient("/nonexistent/path/events.db")
		assert.Error(t, err)
	})

	t.Run("concurrent tracking", func(t *testing.T) {
		c, err := destination.NewSQLiteClient(":memory:")
		require.NoError(t, err)
		defer c.Close()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					assert.NoError(t, c.Track("e", "u", nil))
				}
			}()
		}
		wg.Wait()

		n, err := c.Count()
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	})
}

func TestManualStarter(t *testing.T) {
	s := &destination.ManualStarter{}
	assert.ErrorIs(t, s.Fire(destination.NewMemoryClient()), destination.ErrNotStarted)

	var got destination.Client
	settings := destination.Settings{ProjectKey: "proj", EventDispatchInterval: 30 * time.Second}
	require.NoError(t, s.Start(context.Background(), settings, func(c destination.Client) { got = c }))

	assert.Equal(t, 1, s.Starts())
	assert.Equal(t, settings, s.Settings())

	c := destination.NewMemoryClient()
	require.NoError(t, s.Fire(c))
	assert.Same(t, c, got)
}

func TestStarterFunc(t *testing.T) {
	var called bool
	s := destination.StarterFunc(func(_ context.Context, settings destination.Settings, ready destination.ReadyFunc) error {
		called = settings.ProjectKey == "p"
		ready(nil)
		return nil
	})

	require.NoError(t, s.Start(context.Background(), destination.Settings{ProjectKey: "p"}, func(destination.Client) {}))
	assert.True(t, called)
}

func TestDeferredStarter(t *testing.T) {
	t.Run("requires build", func(t *testing.T) {
		s := &destination.DeferredStarter{}
		err := s.Start(context.Background(), destination.Settings{}, func(destination.Client) {})
		assert.ErrorIs(t, err, destination.ErrNoBuild)
	})

	t.Run("builds then calls ready", func(t *testing.T) {
		want := destination.NewMemoryClient()
		s := &destination.DeferredStarter{
			Build: func(_ context.Context, settings destination.Settings) (destination.Client, error) {
				assert.Equal(t, "proj", settings.ProjectKey)
				return want, nil
			},
			Delay: 5 * time.Millisecond,
		}

		got := make(chan destination.Client, 1)
		require.NoError(t, s.Start(context.Background(), destination.Settings{ProjectKey: "proj"}, func(c destination.Client) {
			got <- c
		}))

		select {
		case c := <-got:
			assert.Same(t, want, c)
		case <-time.After(time.Second):
			t.Fatal("ready not called")
		}
	})

	t.Run("build error skips ready", func(t *testing.T) {
		built := make(chan struct{})
		s := &destination.DeferredStarter{
			Build: func(context.Context, destination.Settings) (destination.Client, error) {
				defer close(built)
				return nil, errors.New("no datafile")
			},
		}

		called := make(chan struct{}, 1)
		require.NoError(t, s.Start(context.Background(), destination.Settings{}, func(destination.Client) {
			called <- struct{}{}
		}))

		<-built
		select {
		case <-called:
			t.Fatal("ready called after build error")
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("cancelled context skips build", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &destination.DeferredStarter{
			Build: func(context.Context, destination.Settings) (destination.Client, error) {
				t.Error("build should not run")
				return nil, nil
			},
			Delay: time.Hour,
		}
		require.NoError(t, s.Start(ctx, destination.Settings{}, func(destination.Client) {}))
		time.Sleep(10 * time.Millisecond)
	})
}
