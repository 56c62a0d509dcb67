package stage

import (
	"context"
	"strconv"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDPhase5Blockers is the Phase 5 blockers readiness stage.
const IDPhase5Blockers = "phase5-blockers-readiness"

// BlockersOptions configures the Phase 5 blockers readiness stage.
type BlockersOptions struct {
	Output               string
	AdapterReport        string
	ConsumerTriageReport string
	RequireAdapterReport bool
}

type blockersSignals struct {
	// Adapter is nil when the adapter report is absent.
	Adapter         *signal.AdapterSession
	Triage          signal.TriageReport
	AdapterRequired bool
}

func (s blockersSignals) adapterIssues() []string {
	if s.Adapter == nil {
		return nil
	}
	var out []string
	if s.Adapter.ValidationResult != domain.VerdictPass {
		out = append(out, "Adapter real-session validation is "+s.Adapter.ValidationResult.OrUnknown())
	}
	if s.Adapter.NodeCommandNotFound {
		out = append(out, "Adapter runtime still reports node command resolution failures")
	}
	return out
}

// Phase5Blockers combines the consumer triage report with the optional
// adapter readiness report. Adapter problems block only when the adapter
// report is required; otherwise they are reported as warnings.
func Phase5Blockers(opts BlockersOptions) *Definition[blockersSignals] {
	return &Definition[blockersSignals]{
		Name:         IDPhase5Blockers,
		Title:        "Phase 5 Blockers Readiness",
		SignalsTitle: "Signals",
		Output:       opts.Output,
		Inputs: []Input{
			{Key: "adapter_report", Path: opts.AdapterReport, Required: opts.RequireAdapterReport, Missing: "Missing adapter readiness report"},
			{Key: "consumer_triage_report", Path: opts.ConsumerTriageReport, Required: true, Missing: "Missing consumer startup triage report"},
		},
		Extract: func(_ context.Context, _ *Runtime, in Inputs) (blockersSignals, error) {
			s := blockersSignals{AdapterRequired: opts.RequireAdapterReport}
			if a, ok := Parse(in.Get("adapter_report"), signal.ParseAdapterSession); ok {
				s.Adapter = &a
			}
			s.Triage, _ = Parse(in.Get("consumer_triage_report"), signal.ParseTriage)
			return s, nil
		},
		Resolver: verdict.Resolver[blockersSignals]{
			Rules: []verdict.Rule[blockersSignals]{
				func(s blockersSignals) []string {
					if !s.AdapterRequired {
						return nil
					}
					return s.adapterIssues()
				},
				verdict.Whenf(func(s blockersSignals) bool { return s.Triage.Verdict != domain.VerdictReady },
					func(s blockersSignals) string {
						return "Consumer startup triage verdict is " + s.Triage.Verdict.OrUnknown()
					}),
				verdict.Each(func(s blockersSignals) []string { return s.Triage.RequiredFailedSteps },
					"Consumer triage required step failed: %s"),
				verdict.Each(func(s blockersSignals) []string { return s.Triage.RequiredSkippedSteps },
					"Consumer triage required step did not run: %s"),
			},
			Advisories: []verdict.Rule[blockersSignals]{
				func(s blockersSignals) []string {
					if s.AdapterRequired {
						return nil
					}
					var out []string
					for _, issue := range s.adapterIssues() {
						out = append(out, issue+" (not required in current mode)")
					}
					return out
				},
			},
		},
		Present: func(s blockersSignals, _ Inputs, _ domain.Outcome) Presentation {
			adapterValidation := domain.Unknown
			if s.Adapter != nil {
				adapterValidation = s.Adapter.ValidationResult.OrUnknown()
			}
			return Presentation{
				InputNotes: []report.KV{{Key: "adapter_required", Value: signal.YesNo(s.AdapterRequired)}},
				Signals: []report.KV{
					{Key: "adapter_validation_result", Value: adapterValidation},
					{Key: "consumer_triage_verdict", Value: s.Triage.Verdict.OrUnknown()},
					{Key: "consumer_required_failed_steps", Value: strconv.Itoa(len(s.Triage.RequiredFailedSteps))},
					{Key: "consumer_required_skipped_steps", Value: strconv.Itoa(len(s.Triage.RequiredSkippedSteps))},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{
				"Phase 5 blockers are clear for execution closure.",
				"Attach this report to release/rollout notes.",
			},
			MissingInputs: []string{
				"Generate the consumer triage report: `readiness triage --repo <owner>/<repo>`.",
				"Generate the adapter readiness report when it is required: `readiness adapter-readiness`.",
			},
			NotReady: []string{
				"Resolve failed consumer triage steps and rerun `readiness triage` to refresh status.",
				"Execute the adapter hook runtime validation in a real session and regenerate the adapter reports.",
			},
		},
	}
}
