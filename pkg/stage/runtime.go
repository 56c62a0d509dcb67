package stage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/readiness/internal/config"
	"github.com/aretw0/readiness/internal/logging"
	"github.com/aretw0/readiness/pkg/adapters/file"
	"github.com/aretw0/readiness/pkg/ports"
)

// ErrNoCapturer is reported by probes when no Capturer is configured.
var ErrNoCapturer = errors.New("no probe capturer configured")

// Observer is notified after every stage report is written.
type Observer func(Result)

// Runtime carries the collaborators shared by every stage of a run.
type Runtime struct {
	store     ports.ArtifactStore
	capturer  ports.Capturer
	clock     func() time.Time
	logger    *slog.Logger
	env       config.Env
	observers []Observer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStore sets the artifact store. Defaults to the filesystem relative to
// the working directory.
func WithStore(store ports.ArtifactStore) Option {
	return func(rt *Runtime) {
		rt.store = store
	}
}

// WithCapturer sets the probe runner used by stages that query external CLIs.
func WithCapturer(c ports.Capturer) Option {
	return func(rt *Runtime) {
		rt.capturer = c
	}
}

// WithClock sets the clock used for generated_at.
func WithClock(clock func() time.Time) Option {
	return func(rt *Runtime) {
		rt.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithEnv sets the environment toggles rendered by stages that report them.
func WithEnv(env config.Env) Option {
	return func(rt *Runtime) {
		rt.env = env
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observers = append(rt.observers, o)
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		store:  file.New(""),
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Env returns the environment toggles.
func (rt *Runtime) Env() config.Env { return rt.env }

// Capture runs a probe through the configured Capturer.
func (rt *Runtime) Capture(ctx context.Context, target string, args ...string) ports.CaptureResult {
	if rt.capturer == nil {
		return ports.CaptureResult{ExitCode: 1, Err: ErrNoCapturer}
	}
	res := rt.capturer.Capture(ctx, target, args...)
	rt.logger.Debug("probe finished", "target", target, "exit_code", res.ExitCode, "err", res.Err)
	return res
}

func (rt *Runtime) now() time.Time { return rt.clock() }

func (rt *Runtime) notify(res Result) {
	for _, o := range rt.observers {
		o(res)
	}
}
