package stage

import (
	"context"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDAdapterReadiness is the adapter readiness stage.
const IDAdapterReadiness = "adapter-readiness"

// AdapterReadinessOptions configures the adapter readiness stage.
type AdapterReadinessOptions struct {
	Output        string
	AdapterReport string
}

type adapterReadinessSignals struct {
	Session signal.AdapterSession
}

func (s adapterReadinessSignals) validation() string {
	return s.Session.ValidationResult.OrUnknown()
}

// AdapterReadiness summarizes the adapter real-session report. It repeats
// the validation lines so downstream stages can parse it the same way.
func AdapterReadiness(opts AdapterReadinessOptions) *Definition[adapterReadinessSignals] {
	return &Definition[adapterReadinessSignals]{
		Name:   IDAdapterReadiness,
		Title:  "Adapter Readiness",
		Output: opts.Output,
		Inputs: []Input{
			{Key: "adapter_report", Path: opts.AdapterReport, Required: true, Missing: "Missing adapter real-session report"},
		},
		Extract: func(_ context.Context, _ *Runtime, in Inputs) (adapterReadinessSignals, error) {
			s, _ := Parse(in.Get("adapter_report"), signal.ParseAdapterSession)
			return adapterReadinessSignals{Session: s}, nil
		},
		Resolver: verdict.Resolver[adapterReadinessSignals]{
			Rules: []verdict.Rule[adapterReadinessSignals]{
				verdict.Whenf(func(s adapterReadinessSignals) bool { return s.Session.ValidationResult != domain.VerdictPass },
					func(s adapterReadinessSignals) string { return "Adapter validation is " + s.validation() }),
				verdict.When(func(s adapterReadinessSignals) bool { return s.Session.NodeCommandNotFound },
					"Adapter runtime reports `node: command not found`"),
			},
		},
		Present: func(s adapterReadinessSignals, in Inputs, out domain.Outcome) Presentation {
			status := "PASS"
			notes := "Adapter diagnostics are healthy."
			switch {
			case !in.Has("adapter_report"):
				status, notes = "MISSING", "No adapter diagnostics report was provided."
			case len(out.Blockers) > 0:
				status, notes = "FAIL", strings.Join(out.Blockers, "; ")
			}

			return Presentation{
				Signals: []report.KV{
					{Key: signal.LabelValidationResult, Value: s.validation()},
					{Key: signal.LabelNodeNotFound, Value: signal.YesNo(s.Session.NodeCommandNotFound)},
				},
				Sections: []report.Section{
					{Title: "Adapters", Lines: report.Table(
						[]string{"adapter", "status", "notes"},
						[][]string{{"adapter", status, notes}},
					)},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{"Adapter diagnostics are ready for Phase 5 blockers readiness."},
			MissingInputs: []string{
				"Generate the adapter real-session report: `readiness adapter-real-session-report`.",
				"Re-run `readiness adapter-readiness`.",
			},
			NotReady: []string{
				"Resolve the adapter blockers in a real session and regenerate the adapter reports.",
			},
		},
	}
}
