package stage

import (
	"context"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDPhase5ExternalHandoff is the Phase 5 external handoff stage.
const IDPhase5ExternalHandoff = "phase5-external-handoff"

// HandoffOptions configures the Phase 5 external handoff stage.
type HandoffOptions struct {
	Output              string
	Repo                string
	ClosureStatusReport string
	BlockersReport      string
	UnblockReport       string
	MockABReport        string
	RunReport           string
	ArtifactURLs        []string
	RequireArtifactURLs bool
	RequireMockABReport bool
}

type handoffSignals struct {
	Status       signal.VerdictOnly
	Blockers     signal.VerdictOnly
	Unblock      signal.VerdictOnly
	MockAB       signal.VerdictOnly
	HasMockAB    bool
	Run          signal.VerdictOnly
	HasRun       bool
	ArtifactURLs []string

	RequireArtifactURLs bool
	RequireMockAB       bool
}

// Phase5ExternalHandoff decides whether Phase 5 evidence can be handed to
// an external reviewer.
func Phase5ExternalHandoff(opts HandoffOptions) *Definition[handoffSignals] {
	return &Definition[handoffSignals]{
		Name:         IDPhase5ExternalHandoff,
		Title:        "Phase 5 External Handoff",
		SignalsTitle: "Parsed Verdicts",
		Output:       opts.Output,
		Inputs: []Input{
			{Key: "phase5_status_report", Path: opts.ClosureStatusReport, Required: true, Missing: "Missing Phase 5 execution closure status report"},
			{Key: "phase5_blockers_report", Path: opts.BlockersReport, Required: true, Missing: "Missing Phase 5 blockers readiness report"},
			{Key: "consumer_unblock_report", Path: opts.UnblockReport, Required: true, Missing: "Missing consumer startup unblock status report"},
			{Key: "mock_ab_report", Path: opts.MockABReport, Required: opts.RequireMockABReport, Missing: "Missing mock consumer A/B report"},
			{Key: "run_report", Path: opts.RunReport},
		},
		Extract: func(_ context.Context, _ *Runtime, in Inputs) (handoffSignals, error) {
			s := handoffSignals{
				ArtifactURLs:        domain.Dedupe(opts.ArtifactURLs),
				RequireArtifactURLs: opts.RequireArtifactURLs,
				RequireMockAB:       opts.RequireMockABReport,
			}
			s.Status, _ = Parse(in.Get("phase5_status_report"), signal.ParseVerdictOnly)
			s.Blockers, _ = Parse(in.Get("phase5_blockers_report"), signal.ParseVerdictOnly)
			s.Unblock, _ = Parse(in.Get("consumer_unblock_report"), signal.ParseVerdictOnly)
			s.MockAB, s.HasMockAB = Parse(in.Get("mock_ab_report"), signal.ParseVerdictOnly)
			s.Run, s.HasRun = Parse(in.Get("run_report"), signal.ParseVerdictOnly)
			return s, nil
		},
		Resolver: verdict.Resolver[handoffSignals]{
			Rules: []verdict.Rule[handoffSignals]{
				verdict.Whenf(func(s handoffSignals) bool { return s.Status.Verdict != domain.VerdictReady },
					func(s handoffSignals) string {
						return "Phase 5 execution closure status verdict is " + s.Status.OrUnknown()
					}),
				verdict.Whenf(func(s handoffSignals) bool { return s.Blockers.Verdict != domain.VerdictReady },
					func(s handoffSignals) string {
						return "Phase 5 blockers readiness verdict is " + s.Blockers.OrUnknown()
					}),
				verdict.Whenf(func(s handoffSignals) bool { return s.Unblock.Verdict != domain.VerdictReadyForRetest },
					func(s handoffSignals) string {
						return "Consumer startup unblock verdict is " + s.Unblock.OrUnknown()
					}),
				verdict.Whenf(func(s handoffSignals) bool { return s.RequireMockAB && s.MockAB.Verdict != domain.VerdictReady },
					func(s handoffSignals) string { return "Mock consumer A/B verdict is " + s.MockAB.OrUnknown() }),
				verdict.When(func(s handoffSignals) bool { return s.RequireArtifactURLs && len(s.ArtifactURLs) == 0 },
					"No artifact URLs were provided"),
			},
			Advisories: []verdict.Rule[handoffSignals]{
				verdict.Whenf(func(s handoffSignals) bool {
					return !s.RequireMockAB && s.HasMockAB && s.MockAB.Verdict != domain.VerdictReady
				}, func(s handoffSignals) string {
					return "Mock consumer A/B verdict is " + s.MockAB.OrUnknown() + " (not required in current mode)"
				}),
				verdict.Whenf(func(s handoffSignals) bool { return s.HasRun && s.Run.Verdict != domain.VerdictReady },
					func(s handoffSignals) string { return "Phase 5 closure run report verdict is " + s.Run.OrUnknown() }),
				verdict.When(func(s handoffSignals) bool { return !s.RequireArtifactURLs && len(s.ArtifactURLs) == 0 },
					"No artifact URLs were provided (recommended before external handoff)"),
			},
		},
		Present: func(s handoffSignals, _ Inputs, _ domain.Outcome) Presentation {
			return Presentation{
				Metadata: []report.KV{
					{Key: "target_repo", Value: "`" + opts.Repo + "`"},
					{Key: "require_artifact_urls", Value: signal.YesNo(s.RequireArtifactURLs)},
					{Key: "require_mock_ab_report", Value: signal.YesNo(s.RequireMockAB)},
				},
				Signals: []report.KV{
					{Key: "phase5_status", Value: s.Status.OrUnknown()},
					{Key: "phase5_blockers", Value: s.Blockers.OrUnknown()},
					{Key: "consumer_unblock", Value: s.Unblock.OrUnknown()},
					{Key: "mock_consumer_ab", Value: s.MockAB.OrUnknown()},
					{Key: "run_report", Value: s.Run.OrUnknown()},
				},
				Sections: []report.Section{
					{Title: "Artifact URLs", Lines: nonEmptyBullets(s.ArtifactURLs)},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{
				"Share this handoff report and the listed artifact URLs with the external reviewer.",
				"Record the handoff in the rollout tracker.",
			},
			MissingInputs: []string{
				"Run `readiness closure --repo <owner>/<repo>` to generate the missing reports.",
				"Re-run `readiness handoff`.",
			},
			NotReady: []string{
				"Resolve the blockers above and regenerate the Phase 5 reports.",
				"Re-run `readiness handoff` with `--artifact-url` for each published artifact.",
			},
		},
	}
}
