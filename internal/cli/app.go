// Package cli wires the collaborators behind the readiness commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/readiness/internal/config"
	"github.com/aretw0/readiness/internal/logging"
	"github.com/aretw0/readiness/internal/presentation/tui"
	"github.com/aretw0/readiness/pkg/adapters/file"
	"github.com/aretw0/readiness/pkg/adapters/process"
	"github.com/aretw0/readiness/pkg/orchestrator"
	"github.com/aretw0/readiness/pkg/persistence/middleware"
	"github.com/aretw0/readiness/pkg/plan"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/aretw0/readiness/pkg/stage"
	"github.com/muesli/termenv"
)

// DefaultTargetsFile is the target registry read from the working directory.
const DefaultTargetsFile = "targets.yaml"

// Options are the process-wide settings shared by every command.
type Options struct {
	Dir         string
	LogLevel    string
	TargetsFile string
	MetricsOut  string
	Stdout      io.Writer
	Stderr      io.Writer
	// Executable runs this binary's own subcommands. Defaults to os.Executable.
	Executable string
	// Store overrides the filesystem store rooted at Dir. Written reports
	// are redacted either way.
	Store  ports.ArtifactStore
	Clock  func() time.Time
	Output []termenv.OutputOption
}

// App holds the collaborators of one command invocation.
type App struct {
	Dir     string
	Store   ports.ArtifactStore
	Logger  *slog.Logger
	Env     config.Env
	Metrics *orchestrator.Metrics
	Printer *tui.Printer
	Stdout  io.Writer

	opts Options
}

// NewApp validates opts and builds the shared collaborators.
func NewApp(opts Options) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "info"
	}
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = file.New(opts.Dir)
	}
	redact, err := middleware.NewRedaction(middleware.DefaultSecretPatterns)
	if err != nil {
		return nil, err
	}
	store = middleware.Chain(store, redact)

	return &App{
		Dir:     opts.Dir,
		Store:   store,
		Logger:  logging.NewWithWriter(opts.Stderr, level),
		Env:     config.Load(),
		Metrics: orchestrator.NewMetrics(),
		Printer: tui.NewPrinter(opts.Stdout, opts.Output...),
		Stdout:  opts.Stdout,
		opts:    opts,
	}, nil
}

// Runtime builds the stage runtime. capturer may be nil for stages that
// never probe external CLIs.
func (a *App) Runtime(capturer ports.Capturer) *stage.Runtime {
	opts := []stage.Option{
		stage.WithStore(a.Store),
		stage.WithLogger(a.Logger),
		stage.WithEnv(a.Env),
		stage.WithClock(a.opts.Clock),
		stage.WithObserver(func(res stage.Result) {
			a.Metrics.ObserveVerdict(res.StageID, res.Outcome.Verdict)
		}),
	}
	if capturer != nil {
		opts = append(opts, stage.WithCapturer(capturer))
	}
	return stage.NewRuntime(opts...)
}

func (a *App) targetsPath() (string, error) {
	path := a.opts.TargetsFile
	if path == "" {
		path = filepath.Join(a.Dir, DefaultTargetsFile)
	}
	return filepath.Abs(path)
}

// Launcher builds the process runner for external targets and this binary's
// own subcommands. Processes run inside Dir.
func (a *App) Launcher(timeout time.Duration) (*process.Runner, error) {
	targetsPath, err := a.targetsPath()
	if err != nil {
		return nil, err
	}
	targets, err := process.LoadTargets(targetsPath)
	if err != nil {
		return nil, err
	}

	r := process.NewRunner(
		process.WithRegistry(targets),
		process.WithBaseDir(a.Dir),
		process.WithTimeout(timeout),
		process.WithOutput(a.Stdout, a.opts.Stderr),
		process.WithLogger(a.Logger),
	)
	if !r.Has(stage.GHTarget) {
		r.Register(stage.GHTarget, "gh")
	}
	if !r.Has(plan.SelfTarget) {
		exe := a.opts.Executable
		if exe == "" {
			if exe, err = os.Executable(); err != nil {
				return nil, fmt.Errorf("failed to resolve own executable: %w", err)
			}
		}
		args, err := a.selfArgs(targetsPath, timeout)
		if err != nil {
			return nil, err
		}
		r.Register(plan.SelfTarget, exe, args...)
	}
	return r, nil
}

// selfArgs are the global flags handed to nested runs of this binary. A
// nested plan gets the same per-step timeout, and its metrics go to a
// sibling textfile so the outer flush does not overwrite them.
func (a *App) selfArgs(targetsPath string, timeout time.Duration) ([]string, error) {
	args := []string{"--targets", targetsPath, "--log-level", a.opts.LogLevel}
	if timeout > 0 {
		args = append(args, "--step-timeout", timeout.String())
	}
	if a.opts.MetricsOut != "" {
		out, err := filepath.Abs(NestedMetricsPath(a.opts.MetricsOut))
		if err != nil {
			return nil, err
		}
		args = append(args, "--metrics-out", out)
	}
	return args, nil
}

// NestedMetricsPath returns the textfile a nested run writes its metrics
// to: "metrics.prom" becomes "metrics.nested.prom".
func NestedMetricsPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".nested" + ext
}

// RunStage runs st, prints its verdict and maps it to an exit status.
func (a *App) RunStage(ctx context.Context, st stage.Stage, capturer ports.Capturer) error {
	res, err := a.runStage(ctx, st, capturer)
	if err != nil {
		return err
	}
	return exitFor(res.ExitCode, res.Outcome.Verdict)
}

func (a *App) runStage(ctx context.Context, st stage.Stage, capturer ports.Capturer) (stage.Result, error) {
	res, err := st.Run(ctx, a.Runtime(capturer))
	if err != nil {
		return res, err
	}
	a.Printer.Verdict(res.StageID, res.Outcome.Verdict, res.Output)
	return res, a.FlushMetrics()
}

// FlushMetrics writes the metrics textfile when one was requested.
func (a *App) FlushMetrics() error {
	if a.opts.MetricsOut == "" {
		return nil
	}
	if err := a.Metrics.WriteTextfile(a.opts.MetricsOut); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
