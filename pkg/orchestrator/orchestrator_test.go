package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	codes map[string]int
	errs  map[string]error
	calls []string
}

func (f *fakeLauncher) Launch(_ context.Context, step domain.Step) (int, error) {
	f.calls = append(f.calls, step.ID)
	if err, ok := f.errs[step.ID]; ok {
		return 127, err
	}
	return f.codes[step.ID], nil
}

type fakeLocker struct {
	err      error
	locked   []string
	released int
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, key)
	return func(context.Context) error {
		f.released++
		return nil
	}, nil
}

func triagePlan() []domain.Step {
	return []domain.Step{
		{ID: "auth-check", Target: "readiness", Required: true, CriticalGate: true},
		{ID: "ci-artifacts", Target: "ci-artifacts", Required: true},
		{ID: "workflow-lint", Target: "workflow-lint"},
		{ID: "startup-unblock-status", Target: "readiness", Required: true},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Run("all steps succeed", func(t *testing.T) {
		l := &fakeLauncher{}
		res, err := New(l).Run(context.Background(), triagePlan())
		require.NoError(t, err)

		assert.Equal(t, []string{"auth-check", "ci-artifacts", "workflow-lint", "startup-unblock-status"}, l.calls)
		assert.True(t, res.OK())
		assert.False(t, res.Halted())
		assert.Equal(t, 0, res.ExitCode())
		assert.Equal(t, domain.StepSucceeded, res.State("ci-artifacts"))
	})

	t.Run("optional failure keeps run ok", func(t *testing.T) {
		l := &fakeLauncher{codes: map[string]int{"workflow-lint": 1}}
		res, err := New(l).Run(context.Background(), triagePlan())
		require.NoError(t, err)

		assert.Len(t, l.calls, 4)
		assert.True(t, res.OK())
		assert.Equal(t, domain.StepFailed, res.State("workflow-lint"))
		assert.Equal(t, "exit status 1", res.Executions[2].Error)
	})

	t.Run("required failure continues but fails run", func(t *testing.T) {
		l := &fakeLauncher{codes: map[string]int{"ci-artifacts": 2}}
		res, err := New(l).Run(context.Background(), triagePlan())
		require.NoError(t, err)

		assert.Len(t, l.calls, 4)
		assert.False(t, res.OK())
		assert.Equal(t, 1, res.ExitCode())
	})

	t.Run("critical gate halts plan", func(t *testing.T) {
		l := &fakeLauncher{codes: map[string]int{"auth-check": 1}}
		res, err := New(l).Run(context.Background(), triagePlan())
		require.NoError(t, err)

		assert.Equal(t, []string{"auth-check"}, l.calls)
		assert.True(t, res.Halted())
		assert.Equal(t, "auth-check", res.HaltedBy)
		assert.False(t, res.OK())
		assert.Equal(t, domain.StepPending, res.State("startup-unblock-status"))
	})

	t.Run("launch error is recorded", func(t *testing.T) {
		l := &fakeLauncher{errs: map[string]error{"ci-artifacts": domain.ErrTargetNotRegistered}}
		res, err := New(l).Run(context.Background(), triagePlan())
		require.NoError(t, err)

		exec := res.Executions[1]
		assert.False(t, exec.OK)
		assert.Equal(t, 127, exec.ExitCode)
		assert.Contains(t, exec.Error, "target not registered")
	})
}

func TestRunner_Hooks(t *testing.T) {
	var events []domain.StepState
	hooks := domain.StepHooks{
		OnStepStart: func(_ context.Context, e *domain.StepEvent) {
			events = append(events, e.State)
		},
		OnStepFinish: func(_ context.Context, e *domain.StepEvent) {
			events = append(events, e.State)
		},
	}
	l := &fakeLauncher{codes: map[string]int{"b": 3}}
	_, err := New(l, WithHooks(hooks)).Run(context.Background(), []domain.Step{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	assert.Equal(t, []domain.StepState{
		domain.StepRunning, domain.StepSucceeded,
		domain.StepRunning, domain.StepFailed,
	}, events)
}

func TestRunner_Lock(t *testing.T) {
	t.Run("acquires and releases", func(t *testing.T) {
		locker := &fakeLocker{}
		r := New(&fakeLauncher{}, WithLock(Lock{Locker: locker, Key: "out", TTL: time.Minute}))
		_, err := r.Run(context.Background(), triagePlan())
		require.NoError(t, err)

		assert.Equal(t, []string{"out"}, locker.locked)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("lock failure skips every step", func(t *testing.T) {
		l := &fakeLauncher{}
		locker := &fakeLocker{err: errors.New("timeout")}
		res, err := New(l, WithLock(Lock{Locker: locker, Key: "out"})).Run(context.Background(), triagePlan())

		require.ErrorIs(t, err, ErrLocked)
		assert.Empty(t, l.calls)
		assert.Empty(t, res.Executions)
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	tick := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	l := &fakeLauncher{codes: map[string]int{"workflow-lint": 1}}
	_, err := New(l, WithMetrics(m), WithClock(clock)).Run(context.Background(), triagePlan())
	require.NoError(t, err)

	m.ObserveVerdict("phase5-blockers", domain.VerdictBlocked)
	m.ObserveVerdict("phase5-blockers", domain.VerdictBlocked)
	m.ObserveVerdict("phase5-closure-status", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("workflow-lint")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stepFailures))
	assert.Equal(t, 4, testutil.CollectAndCount(m.stepDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageVerdicts.WithLabelValues("phase5-blockers", "BLOCKED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageVerdicts.WithLabelValues("phase5-closure-status", "unknown")))

	t.Run("textfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "readiness.prom")
		require.NoError(t, m.WriteTextfile(path))
		n, err := testutil.GatherAndCount(m.Registry(), "readiness_step_failures_total")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.FileExists(t, path)
	})
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := &fakeLauncher{}
	res, err := New(l).Run(ctx, triagePlan())

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, l.calls)
	assert.False(t, res.OK())
}
