// Package orchestrator executes command plans.
//
// Steps run one at a time in plan order, since later steps read files
// written by earlier ones. A failed critical-gate step halts the plan;
// any other failure is recorded and the run continues.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/readiness/internal/logging"
	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
)

// ErrLocked is returned when the run lock could not be acquired.
var ErrLocked = errors.New("output directory is locked by another run")

// Result is the outcome of one plan execution.
type Result struct {
	Plan       []domain.Step
	Executions []domain.Execution
	// HaltedBy is the id of the critical gate that stopped the run.
	HaltedBy string
}

// Halted reports whether a critical gate stopped the run.
func (r Result) Halted() bool { return r.HaltedBy != "" }

// OK reports whether every required step has a successful execution.
// Required steps that never ran count as failures.
func (r Result) OK() bool {
	ran := make(map[string]bool, len(r.Executions))
	for _, e := range r.Executions {
		ran[e.Step.ID] = e.OK
	}
	for _, s := range r.Plan {
		if s.Required && !ran[s.ID] {
			return false
		}
	}
	return true
}

// ExitCode maps OK to a process exit status.
func (r Result) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// State returns the final state of a planned step.
func (r Result) State(id string) domain.StepState {
	for _, e := range r.Executions {
		if e.Step.ID == id {
			if e.OK {
				return domain.StepSucceeded
			}
			return domain.StepFailed
		}
	}
	return domain.StepPending
}

// Lock configures the optional run lock.
type Lock struct {
	Locker ports.Locker
	Key    string
	TTL    time.Duration
}

// Runner executes plans through a Launcher.
type Runner struct {
	launcher ports.Launcher
	logger   *slog.Logger
	hooks    domain.StepHooks
	metrics  *Metrics
	clock    func() time.Time
	lock     *Lock
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks observes step transitions.
func WithHooks(h domain.StepHooks) Option {
	return func(r *Runner) {
		r.hooks = h
	}
}

// WithMetrics records step durations and failures.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithLock serializes runs sharing the same key.
func WithLock(l Lock) Option {
	return func(r *Runner) {
		r.lock = &l
	}
}

// New creates a Runner.
func New(launcher ports.Launcher, opts ...Option) *Runner {
	r := &Runner{
		launcher: launcher,
		logger:   logging.NewNop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes plan. Step failures are part of the Result; the error is
// only set when the run lock could not be acquired or released, or when ctx
// was cancelled between steps.
func (r *Runner) Run(ctx context.Context, plan []domain.Step) (res Result, err error) {
	res = Result{Plan: plan, Executions: make([]domain.Execution, 0, len(plan))}

	if r.lock != nil && r.lock.Locker != nil {
		unlock, lockErr := r.lock.Locker.Lock(ctx, r.lock.Key, r.lock.TTL)
		if lockErr != nil {
			return res, fmt.Errorf("%w: %w", ErrLocked, lockErr)
		}
		defer func() {
			if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil && err == nil {
				err = fmt.Errorf("failed to release run lock: %w", unlockErr)
			}
		}()
	}

	for _, step := range plan {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.logger.Warn("plan interrupted", "next_step", step.ID, "err", ctxErr)
			return res, ctxErr
		}
		exec := r.runStep(ctx, step)
		res.Executions = append(res.Executions, exec)

		if !exec.OK && step.CriticalGate {
			res.HaltedBy = step.ID
			r.logger.Warn("critical gate failed, halting plan",
				"step", step.ID,
				"remaining", len(plan)-len(res.Executions),
			)
			break
		}
	}

	r.logger.Info("plan finished",
		"steps", len(plan),
		"executed", len(res.Executions),
		"ok", res.OK(),
		"halted_by", res.HaltedBy,
	)
	return res, nil
}

func (r *Runner) runStep(ctx context.Context, step domain.Step) domain.Execution {
	start := r.clock()
	if r.hooks.OnStepStart != nil {
		r.hooks.OnStepStart(ctx, &domain.StepEvent{Timestamp: start, Step: step, State: domain.StepRunning})
	}
	r.logger.Info("step started", "step", step.ID, "target", step.Target, "required", step.Required)

	code, launchErr := r.launcher.Launch(ctx, step)
	exec := domain.Execution{Step: step, ExitCode: code, OK: launchErr == nil && code == 0}
	if launchErr != nil {
		exec.Error = launchErr.Error()
	} else if code != 0 {
		exec.Error = fmt.Sprintf("exit status %d", code)
	}

	end := r.clock()
	if r.metrics != nil {
		r.metrics.ObserveStep(exec, end.Sub(start).Seconds())
	}

	state := domain.StepSucceeded
	if !exec.OK {
		state = domain.StepFailed
		r.logger.Error("step failed", "step", step.ID, "exit_code", code, "err", exec.Error)
	} else {
		r.logger.Info("step succeeded", "step", step.ID, "duration", end.Sub(start))
	}
	if r.hooks.OnStepFinish != nil {
		r.hooks.OnStepFinish(ctx, &domain.StepEvent{
			Timestamp: end,
			Step:      step,
			State:     state,
			ExitCode:  code,
			Err:       exec.Error,
		})
	}
	return exec
}
