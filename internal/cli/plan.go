package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/readiness/pkg/adapters/redis"
	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/orchestrator"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/aretw0/readiness/pkg/stage"
)

// LockTTL bounds how long a crashed run can keep an output directory locked.
const LockTTL = 30 * time.Minute

// PlanRun describes one orchestrated command plan and the run report it produces.
type PlanRun struct {
	Report stage.RunReportOptions
	DryRun bool

	StepTimeout time.Duration
	// LockRedis is a redis:// URL; empty disables locking.
	LockRedis string
	// LockKey identifies the shared output directory.
	LockKey string

	// Launcher overrides the process runner, for tests.
	Launcher ports.Launcher
}

// PrintPlan writes the plan as a numbered list of command lines.
func (a *App) PrintPlan(steps []domain.Step) {
	for i, step := range steps {
		var flags []string
		if step.Required {
			flags = append(flags, "required")
		}
		if step.CriticalGate {
			flags = append(flags, "critical-gate")
		}
		if len(flags) == 0 {
			flags = append(flags, "optional")
		}
		a.Printer.Line("%d. [%s] %s: %s", i+1, strings.Join(flags, ", "), step.ID, stage.CommandLine(step))
	}
}

// RunPlan executes p.Report.Plan, then writes its run report. The exit status
// follows the orchestration result.
func (a *App) RunPlan(ctx context.Context, p PlanRun) error {
	steps := p.Report.Plan
	if p.DryRun {
		a.PrintPlan(steps)
		return nil
	}

	launcher := p.Launcher
	if launcher == nil {
		runner, err := a.Launcher(p.StepTimeout)
		if err != nil {
			return err
		}
		launcher = runner
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.Logger),
		orchestrator.WithMetrics(a.Metrics),
		orchestrator.WithHooks(a.stepHooks()),
	}
	if p.LockRedis != "" {
		locker, err := redis.NewFromURL(p.LockRedis, "readiness:")
		if err != nil {
			return err
		}
		defer locker.Close()

		key := p.LockKey
		if key == "" {
			key = a.lockKey(p.Report.Output)
		}
		opts = append(opts, orchestrator.WithLock(orchestrator.Lock{Locker: locker, Key: key, TTL: LockTTL}))
	}

	res, err := orchestrator.New(launcher, opts...).Run(ctx, steps)
	if err != nil {
		return err
	}

	report := p.Report
	report.Executions = res.Executions
	if _, err := a.runStage(ctx, stage.RunReport(report), nil); err != nil {
		return err
	}
	if res.Halted() {
		a.Logger.Warn("plan halted by critical gate", "step", res.HaltedBy)
	}
	if code := res.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func (a *App) lockKey(output string) string {
	dir := filepath.Dir(filepath.Join(a.Dir, output))
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return fmt.Sprintf("outdir:%s", dir)
}
