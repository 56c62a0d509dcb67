package stage

import (
	"context"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDPhase5ClosureStatus is the Phase 5 execution closure status stage.
const IDPhase5ClosureStatus = "phase5-execution-closure-status"

// ClosureStatusOptions configures the Phase 5 execution closure status stage.
type ClosureStatusOptions struct {
	Output                  string
	BlockersReport          string
	UnblockReport           string
	AdapterReadinessReport  string
	RequireAdapterReadiness bool
}

type closureStatusSignals struct {
	Blockers        signal.VerdictOnly
	Unblock         signal.VerdictOnly
	Adapter         signal.VerdictOnly
	HasAdapter      bool
	AdapterRequired bool
}

// Phase5ClosureStatus checks the upstream verdicts required to close Phase 5.
func Phase5ClosureStatus(opts ClosureStatusOptions) *Definition[closureStatusSignals] {
	return &Definition[closureStatusSignals]{
		Name:         IDPhase5ClosureStatus,
		Title:        "Phase 5 Execution Closure Status",
		SignalsTitle: "Parsed Verdicts",
		Output:       opts.Output,
		Inputs: []Input{
			{Key: "phase5_blockers_report", Path: opts.BlockersReport, Required: true, Missing: "Missing Phase 5 blockers readiness report"},
			{Key: "consumer_unblock_report", Path: opts.UnblockReport, Required: true, Missing: "Missing consumer startup unblock status report"},
			{Key: "adapter_readiness_report", Path: opts.AdapterReadinessReport, Required: opts.RequireAdapterReadiness, Missing: "Missing adapter readiness report"},
		},
		Extract: func(_ context.Context, _ *Runtime, in Inputs) (closureStatusSignals, error) {
			s := closureStatusSignals{AdapterRequired: opts.RequireAdapterReadiness}
			s.Blockers, _ = Parse(in.Get("phase5_blockers_report"), signal.ParseVerdictOnly)
			s.Unblock, _ = Parse(in.Get("consumer_unblock_report"), signal.ParseVerdictOnly)
			s.Adapter, s.HasAdapter = Parse(in.Get("adapter_readiness_report"), signal.ParseVerdictOnly)
			return s, nil
		},
		Resolver: verdict.Resolver[closureStatusSignals]{
			Rules: []verdict.Rule[closureStatusSignals]{
				verdict.Whenf(func(s closureStatusSignals) bool { return s.Blockers.Verdict != domain.VerdictReady },
					func(s closureStatusSignals) string {
						return "Phase 5 blockers readiness verdict is " + s.Blockers.OrUnknown()
					}),
				verdict.Whenf(func(s closureStatusSignals) bool { return s.Unblock.Verdict != domain.VerdictReadyForRetest },
					func(s closureStatusSignals) string {
						return "Consumer startup unblock verdict is " + s.Unblock.OrUnknown()
					}),
				verdict.Whenf(func(s closureStatusSignals) bool {
					return s.AdapterRequired && s.Adapter.Verdict != domain.VerdictReady
				}, func(s closureStatusSignals) string {
					return "Adapter readiness verdict is " + s.Adapter.OrUnknown()
				}),
			},
			Advisories: []verdict.Rule[closureStatusSignals]{
				verdict.Whenf(func(s closureStatusSignals) bool {
					return !s.AdapterRequired && s.HasAdapter && s.Adapter.Verdict != domain.VerdictReady
				}, func(s closureStatusSignals) string {
					return "Adapter readiness is " + s.Adapter.OrUnknown() + " (not required in current mode)"
				}),
			},
		},
		Present: func(s closureStatusSignals, _ Inputs, _ domain.Outcome) Presentation {
			return Presentation{
				InputNotes: []report.KV{{Key: "adapter_readiness_required", Value: signal.YesNo(s.AdapterRequired)}},
				Signals: []report.KV{
					{Key: "phase5_blockers", Value: s.Blockers.OrUnknown()},
					{Key: "consumer_unblock", Value: s.Unblock.OrUnknown()},
					{Key: "adapter_readiness", Value: s.Adapter.OrUnknown()},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{
				"Phase 5 execution closure criteria are satisfied.",
				"Archive generated reports and update rollout tracker references.",
			},
			MissingInputs: []string{
				"Generate missing reports first, then re-run this status command.",
				"Re-run: `readiness phase5-execution-closure-status`.",
			},
			NotReady: []string{
				"Resolve blockers from report inputs and regenerate reports.",
				"Re-run: `readiness phase5-execution-closure-status`.",
			},
		},
	}
}
