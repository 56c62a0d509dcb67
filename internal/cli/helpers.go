package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/readiness/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// ExitError carries a non-zero exit status that is not a failure of the
// command itself, such as a BLOCKED verdict.
type ExitError struct {
	Code    int
	Verdict domain.Verdict
}

func (e *ExitError) Error() string {
	if e.Verdict != "" {
		return fmt.Sprintf("verdict %s (exit status %d)", e.Verdict, e.Code)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func exitFor(code int, v domain.Verdict) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code, Verdict: v}
}

func (a *App) stepHooks() domain.StepHooks {
	return domain.StepHooks{
		OnStepStart: func(_ context.Context, e *domain.StepEvent) {
			a.Logger.Debug("Step Start", "step", e.Step.ID, "target", e.Step.Target)
			a.Printer.Step(e.Step.ID, e.State)
		},
		OnStepFinish: func(_ context.Context, e *domain.StepEvent) {
			if e.State == domain.StepFailed {
				a.Logger.Debug("Step Finish (Failed)", "step", e.Step.ID, "exit_code", e.ExitCode, "err", e.Err)
			} else {
				a.Logger.Debug("Step Finish", "step", e.Step.ID)
			}
			a.Printer.Step(e.Step.ID, e.State)
		},
	}
}
