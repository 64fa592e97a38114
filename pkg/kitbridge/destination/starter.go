package destination

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Settings configure a destination client start.
// Zero intervals mean "not configured"; the client keeps its defaults.
type Settings struct {
	ProjectKey               string
	EventDispatchInterval    time.Duration
	DatafileDownloadInterval time.Duration
}

// ReadyFunc receives the started client. It may be called on any goroutine.
type ReadyFunc func(Client)

// Starter starts a destination client and reports it through ready once
// it is initialized.
type Starter interface {
	Start(ctx context.Context, settings Settings, ready ReadyFunc) error
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(ctx context.Context, settings Settings, ready ReadyFunc) error

// Start implements Starter.
func (f StarterFunc) Start(ctx context.Context, settings Settings, ready ReadyFunc) error {
	return f(ctx, settings, ready)
}

// ErrNotStarted is returned by ManualStarter.Fire before Start was called.
var ErrNotStarted = errors.New("starter not started")

// ManualStarter records the ready callback and fires it when told to.
// Useful for tests and for hosts that build the client themselves.
type ManualStarter struct {
	mu       sync.Mutex
	ready    ReadyFunc
	settings Settings
	starts   int
}

// Compile-time interface check.
var _ Starter = (*ManualStarter)(nil)

// Start implements Starter.
func (s *ManualStarter) Start(_ context.Context, settings Settings, ready ReadyFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
	s.settings = settings
	s.starts++
	return nil
}

// Fire passes c to the most recent ready callback.
func (s *ManualStarter) Fire(c Client) error {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()

	if ready == nil {
		return ErrNotStarted
	}
	ready(c)
	return nil
}

// Settings returns the settings of the most recent Start.
func (s *ManualStarter) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Starts returns how many times Start was called.
func (s *ManualStarter) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// BuildFunc builds a destination client.
type BuildFunc func(ctx context.Context, settings Settings) (Client, error)

// DeferredStarter builds the client on a new goroutine after Delay and
// then calls ready, the way SDKs that download a datafile first behave.
type DeferredStarter struct {
	Build  BuildFunc
	Delay  time.Duration
	Logger *slog.Logger
}

// Compile-time interface check.
var _ Starter = (*DeferredStarter)(nil)

// ErrNoBuild is returned when a DeferredStarter has no Build function.
var ErrNoBuild = errors.New("deferred starter requires a build function")

// Start implements Starter. If ctx is done before the client is built,
// ready is never called.
func (s *DeferredStarter) Start(ctx context.Context, settings Settings, ready ReadyFunc) error {
	if s.Build == nil {
		return ErrNoBuild
	}

	go func() {
		if s.Delay > 0 {
			timer := time.NewTimer(s.Delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			}
		}

		c, err := s.Build(ctx, settings)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Error("destination client build failed",
					slog.String("project_key", settings.ProjectKey),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		ready(c)
	}()
	return nil
}
