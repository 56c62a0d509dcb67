package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"time"

	"github.com/aretw0/readiness/internal/logging"
	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
)

// KillGrace is how long a cancelled process group gets to exit after
// SIGTERM before it is killed and its output pipes are closed.
const KillGrace = 2 * time.Second

// Runner launches registered targets as local processes.
// It follows a Strict Registry pattern: a step can only name a target,
// never a raw command line.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
	timeout  time.Duration
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

var (
	_ ports.Launcher = (*Runner)(nil)
	_ ports.Capturer = (*Runner)(nil)
)

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string // Prepended to the step arguments
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(targets map[string]TargetConfig) RunnerOption {
	return func(r *Runner) {
		for name, t := range targets {
			r.registry[name] = RegisteredProcess{
				Command: t.Command,
				Args:    t.Args,
				Env:     t.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each launched process. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithOutput sets where launched processes write. Captured probes ignore it.
func WithOutput(stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		stdout:   io.Discard,
		stderr:   io.Discard,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Targets returns the registered target names, sorted.
func (r *Runner) Targets() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether target is registered.
func (r *Runner) Has(target string) bool {
	_, ok := r.registry[target]
	return ok
}

// Launch runs the step's target with the step arguments, streaming output.
// A process that exits non-zero is not an error; a process that cannot be
// started (or is killed by the timeout) returns exit code 1 and the cause.
func (r *Runner) Launch(ctx context.Context, step domain.Step) (int, error) {
	proc, ok := r.registry[step.Target]
	if !ok {
		return 1, fmt.Errorf("%w: %s", domain.ErrTargetNotRegistered, step.Target)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := r.command(ctx, proc, step.Args)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Debug("launching step", "step", step.ID, "target", step.Target, "args", step.Args)
	return exitStatus(ctx, run(cmd))
}

// Capture runs target and returns its combined output.
// Unregistered targets report exit code 1 with ErrTargetNotRegistered.
func (r *Runner) Capture(ctx context.Context, target string, args ...string) ports.CaptureResult {
	proc, ok := r.registry[target]
	if !ok {
		return ports.CaptureResult{
			ExitCode: 1,
			Err:      fmt.Errorf("%w: %s", domain.ErrTargetNotRegistered, target),
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := r.command(ctx, proc, args)
	cmd.Stdout = &out
	cmd.Stderr = &out

	code, err := exitStatus(ctx, run(cmd))
	r.logger.Debug("captured probe", "target", target, "exit_code", code)
	return ports.CaptureResult{ExitCode: code, Output: out.String(), Err: err}
}

func (r *Runner) command(ctx context.Context, proc RegisteredProcess, args []string) *exec.Cmd {
	full := make([]string, 0, len(proc.Args)+len(args))
	full = append(full, proc.Args...)
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, proc.Command, full...)
	cmd.Dir = r.baseDir
	if len(proc.Env) > 0 {
		env := cmd.Environ()
		for k, v := range proc.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	setProcessGroup(cmd)
	cmd.WaitDelay = KillGrace
	return cmd
}

// run runs cmd and then kills any process it left behind in its group, so
// nothing a step started keeps writing after the step is over.
func run(cmd *exec.Cmd) error {
	err := cmd.Run()
	killGroup(cmd)
	return err
}

// exitStatus maps the result of cmd.Run to (exit code, launch error).
func exitStatus(ctx context.Context, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 1, fmt.Errorf("process timed out: %w", ctx.Err())
	}
	if ctx.Err() != nil {
		return 1, fmt.Errorf("process cancelled: %w", ctx.Err())
	}
	// The process exited zero but a leftover child held its output open
	// until the grace period closed it.
	if errors.Is(err, exec.ErrWaitDelay) {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("process failed to start: %w", err)
}
