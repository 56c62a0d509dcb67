package stage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDConsumerStartupUnblock is the consumer startup unblock status stage.
const IDConsumerStartupUnblock = "consumer-startup-unblock-status"

// UnblockOptions configures the consumer startup unblock status stage.
type UnblockOptions struct {
	Output             string
	Repo               string
	SupportBundle      string
	AuthReport         string
	WorkflowLintReport string
}

type unblockSignals struct {
	Bundle signal.SupportBundle
	Auth   signal.AuthReport
	// Lint is nil when the optional lint report is absent.
	Lint *signal.WorkflowLint
}

func (s unblockSignals) stuckBeforeJobGraph() bool {
	b := s.Bundle
	return b.JobsCount != nil && *b.JobsCount == 0 &&
		b.ArtifactsCount != nil && *b.ArtifactsCount == 0 &&
		len(b.RunURLs) > 0 &&
		b.StartupFailureRuns != nil && *b.StartupFailureRuns == 0
}

func unblockRules() []verdict.Rule[unblockSignals] {
	return []verdict.Rule[unblockSignals]{
		verdict.Count(func(s unblockSignals) *int { return s.Bundle.StartupFailureRuns },
			"Startup failures still present (%d)",
			"Unable to determine startup failure runs from support bundle"),
		verdict.Count(func(s unblockSignals) *int { return s.Bundle.StartupStalledRuns },
			"Startup runs remain queued/stalled (%d)", ""),
		verdict.Whenf(func(s unblockSignals) bool { return s.Auth.Verdict != domain.VerdictReady },
			func(s unblockSignals) string {
				return "Consumer CI auth verdict is " + s.Auth.Verdict.OrUnknown()
			}),
		verdict.When(func(s unblockSignals) bool { return s.Auth.MissingUserScope },
			"GitHub CLI token is missing `user` scope"),
		func(s unblockSignals) []string {
			if s.Lint == nil || s.Lint.FindingsCount == 0 {
				return nil
			}
			return []string{fmt.Sprintf("Workflow lint reports %d finding(s)", s.Lint.FindingsCount)}
		},
		verdict.When(func(s unblockSignals) bool { return s.stuckBeforeJobGraph() },
			"Startup runs appear stuck before job graph creation (jobs=0, artifacts=0)"),
	}
}

// ConsumerStartupUnblock decides whether the consumer repository is ready
// for a startup re-test, from the support bundle, the auth check and the
// optional workflow lint report.
func ConsumerStartupUnblock(opts UnblockOptions) *Definition[unblockSignals] {
	return &Definition[unblockSignals]{
		Name:   IDConsumerStartupUnblock,
		Title:  "Consumer Startup Failure Unblock Status",
		Output: opts.Output,
		Inputs: []Input{
			{Key: "support_bundle", Path: opts.SupportBundle, Required: true, Missing: "Missing support bundle report"},
			{Key: "auth_report", Path: opts.AuthReport, Required: true, Missing: "Missing consumer CI auth report"},
			{Key: "workflow_lint_report", Path: opts.WorkflowLintReport},
		},
		Extract: func(_ context.Context, _ *Runtime, in Inputs) (unblockSignals, error) {
			var s unblockSignals
			s.Bundle, _ = Parse(in.Get("support_bundle"), signal.ParseSupportBundle)
			s.Auth, _ = Parse(in.Get("auth_report"), signal.ParseAuth)
			if lint, ok := Parse(in.Get("workflow_lint_report"), signal.ParseWorkflowLint); ok {
				s.Lint = &lint
			}
			return s, nil
		},
		Resolver: verdict.Resolver[unblockSignals]{
			Ready: domain.VerdictReadyForRetest,
			Rules: unblockRules(),
			Advisories: []verdict.Rule[unblockSignals]{
				verdict.Whenf(func(s unblockSignals) bool { return s.Auth.BillingError != "" },
					func(s unblockSignals) string { return "Billing probe reported: " + s.Auth.BillingError }),
			},
		},
		Present: func(s unblockSignals, _ Inputs, _ domain.Outcome) Presentation {
			lintCount := domain.Unknown
			if s.Lint != nil {
				lintCount = strconv.Itoa(s.Lint.FindingsCount)
			}
			missingUser := "no"
			if s.Auth.MissingUserScope {
				missingUser = "yes"
			}

			return Presentation{
				Metadata: []report.KV{{Key: "target_repo", Value: "`" + opts.Repo + "`"}},
				Signals: []report.KV{
					{Key: "startup_failure_runs", Value: signal.FormatCount(s.Bundle.StartupFailureRuns)},
					{Key: "startup_stalled_runs", Value: signal.FormatCount(s.Bundle.StartupStalledRuns)},
					{Key: "jobs_count", Value: signal.FormatCount(s.Bundle.JobsCount)},
					{Key: "artifacts_count", Value: signal.FormatCount(s.Bundle.ArtifactsCount)},
					{Key: "auth_verdict", Value: s.Auth.Verdict.OrUnknown()},
					{Key: "missing_user_scope", Value: missingUser},
					{Key: "lint_findings_count", Value: lintCount},
				},
				Sections: []report.Section{
					{Title: "Run URLs", Lines: nonEmptyBullets(s.Bundle.RunURLs)},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{
				"Re-run the consumer startup workflow and confirm jobs are created.",
				"Attach this report to the Phase 5 blockers readiness run.",
			},
			MissingInputs: []string{
				"Generate the missing reports with `readiness triage --repo <owner>/<repo>`.",
				"Re-run `readiness consumer-startup-unblock-status`.",
			},
			NotReady: []string{
				"Resolve the blockers above (auth scopes, workflow lint, startup failures).",
				"Regenerate the support bundle and re-run `readiness consumer-startup-unblock-status`.",
			},
		},
	}
}

func nonEmptyBullets(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return report.Bullets(items)
}
