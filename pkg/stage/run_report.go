package stage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/verdict"
)

// Stage ids of the orchestrated run reports.
const (
	IDConsumerStartupTriage = "consumer-startup-triage"
	IDClosureRunReport      = "phase5-execution-closure-run-report"
)

// RunReportOptions configures a report over an orchestrated command plan.
type RunReportOptions struct {
	ID         string
	Title      string
	Output     string
	Repo       string
	Plan       []domain.Step
	Executions []domain.Execution
	Next       report.NextActions
}

type runSignals struct {
	Plan       []domain.Step
	Executions []domain.Execution
}

func (s runSignals) execution(id string) (domain.Execution, bool) {
	for _, e := range s.Executions {
		if e.Step.ID == id {
			return e, true
		}
	}
	return domain.Execution{}, false
}

func (s runSignals) stepFailures(required bool) []string {
	var out []string
	for _, step := range s.Plan {
		if step.Required != required {
			continue
		}
		kind := "Optional"
		if required {
			kind = "Required"
		}
		e, ran := s.execution(step.ID)
		switch {
		case !ran:
			if required {
				out = append(out, fmt.Sprintf("%s step `%s` did not run", kind, step.ID))
			}
		case !e.OK:
			out = append(out, fmt.Sprintf("%s step `%s` failed (exit %d)", kind, step.ID, e.ExitCode))
		}
	}
	return out
}

// RunReport renders the executions of a command plan. The verdict is READY
// only when every required step has a successful execution.
func RunReport(opts RunReportOptions) *Definition[runSignals] {
	var inputs []Input
	for _, step := range opts.Plan {
		for i, path := range step.OutputFiles {
			key := step.ID
			if i > 0 {
				key = step.ID + "#" + strconv.Itoa(i+1)
			}
			inputs = append(inputs, Input{Key: key, Label: step.ID, Path: path})
		}
	}

	next := opts.Next
	if next.Ready == nil && next.NotReady == nil {
		next = report.NextActions{
			Ready: []string{"All required steps succeeded; downstream stages can consume the generated reports."},
			NotReady: []string{
				"Resolve the failed required steps listed above.",
				"Re-run the command plan to refresh this report.",
			},
		}
	}

	return &Definition[runSignals]{
		Name:   opts.ID,
		Title:  opts.Title,
		Output: opts.Output,
		Inputs: inputs,
		Extract: func(context.Context, *Runtime, Inputs) (runSignals, error) {
			return runSignals{Plan: opts.Plan, Executions: opts.Executions}, nil
		},
		Resolver: verdict.Resolver[runSignals]{
			Rules:      []verdict.Rule[runSignals]{func(s runSignals) []string { return s.stepFailures(true) }},
			Advisories: []verdict.Rule[runSignals]{func(s runSignals) []string { return s.stepFailures(false) }},
		},
		Present: func(s runSignals, _ Inputs, _ domain.Outcome) Presentation {
			failed := 0
			for _, e := range s.Executions {
				if !e.OK {
					failed++
				}
			}

			rows := make([][]string, 0, len(s.Executions))
			for _, e := range s.Executions {
				errText := e.Error
				if errText == "" {
					errText = "-"
				}
				rows = append(rows, []string{
					e.Step.ID,
					signalYesNo(e.Step.Required),
					strconv.Itoa(e.ExitCode),
					signalYesNo(e.OK),
					errText,
				})
			}

			plan := make([]string, 0, len(s.Plan))
			for i, step := range s.Plan {
				plan = append(plan, fmt.Sprintf("%d. `%s`: `%s`", i+1, step.ID, CommandLine(step)))
			}

			return Presentation{
				Metadata: []report.KV{{Key: "target_repo", Value: "`" + opts.Repo + "`"}},
				Signals: []report.KV{
					{Key: "planned_steps", Value: strconv.Itoa(len(s.Plan))},
					{Key: "executed_steps", Value: strconv.Itoa(len(s.Executions))},
					{Key: "failed_steps", Value: strconv.Itoa(failed)},
					{Key: "halted", Value: signalYesNo(len(s.Executions) < len(s.Plan))},
				},
				Sections: []report.Section{
					{Title: "Executions", Lines: executionsTable(rows)},
					{Title: "Command Plan", Lines: plan},
				},
			}
		},
		Next: next,
	}
}

func executionsTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	return report.Table([]string{"step", "required", "exit_code", "ok", "error"}, rows)
}

// CommandLine renders a step as `target args...`.
func CommandLine(step domain.Step) string {
	return strings.TrimSpace(step.Target + " " + strings.Join(step.Args, " "))
}

func signalYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
