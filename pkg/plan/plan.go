// Package plan builds the ordered command plans run by the orchestrator.
//
// Builders are pure. Invalid option combinations are returned as
// configuration errors so that a bad plan never reaches process execution.
package plan

import (
	"strconv"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/pipeline"
)

// SelfTarget is the registered target that runs this binary's own subcommands.
const SelfTarget = "readiness"

// External targets, declared in the target registry.
const (
	TargetCIArtifacts        = "ci-artifacts"
	TargetWorkflowLint       = "workflow-lint"
	TargetSupportBundle      = "support-bundle"
	TargetSupportTicketDraft = "support-ticket-draft"
	TargetMockConsumerAB     = "mock-consumer-ab-report"
	TargetMockTriage         = "mock-consumer-startup-triage"
)

// Step ids of the triage plan.
const (
	StepAuthCheck            = "auth-check"
	StepCIArtifacts          = "ci-artifacts"
	StepWorkflowLint         = "workflow-lint"
	StepSupportBundle        = "support-bundle"
	StepSupportTicketDraft   = "support-ticket-draft"
	StepStartupUnblockStatus = "startup-unblock-status"
)

// Step ids of the closure plan.
const (
	StepAdapterSessionStatus  = "adapter-session-status"
	StepAdapterRealSession    = "adapter-real-session-report"
	StepAdapterReadiness      = "adapter-readiness"
	StepConsumerAuthPreflight = "consumer-auth-preflight"
	StepMockConsumerAB        = "mock-consumer-ab-report"
	StepConsumerTriage        = "consumer-startup-triage"
	StepPhase5Blockers        = "phase5-blockers-readiness"
	StepPhase5ClosureStatus   = "phase5-execution-closure-status"
)

// DefaultLimit is the number of recent CI runs inspected by triage.
const DefaultLimit = 20

// LintOptions enable the optional workflow lint step.
type LintOptions struct {
	RunWorkflowLint bool
	RepoPath        string `flag:"repo-path"`
	ActionlintBin   string `flag:"actionlint-bin"`
}

func (l LintOptions) check() []error {
	if !l.RunWorkflowLint || (l.RepoPath != "" && l.ActionlintBin != "") {
		return nil
	}
	return []error{domain.NewConfigError("repo-path",
		"workflow lint requires --repo-path and --actionlint-bin (or use --skip-workflow-lint)")}
}

// TriageOptions configure the consumer startup triage plan.
type TriageOptions struct {
	Repo   string `flag:"repo" validate:"required,ownerrepo"`
	Limit  int    `flag:"limit" validate:"gt=0"`
	OutDir string `flag:"out-dir" validate:"required"`
	LintOptions
	SkipAuthCheck bool
}

// BuildTriage returns the consumer startup triage plan. The auth check is
// the only critical gate.
func BuildTriage(opts TriageOptions) ([]domain.Step, error) {
	errs := check(opts)
	errs = append(errs, opts.LintOptions.check()...)
	if err := joinErrors(errs); err != nil {
		return nil, err
	}

	out := pipeline.ResolveOutputs(opts.OutDir)
	limit := strconv.Itoa(opts.Limit)
	var steps []domain.Step

	if !opts.SkipAuthCheck {
		steps = append(steps, domain.Step{
			ID:           StepAuthCheck,
			Description:  "Check GitHub auth/scopes and billing probe",
			Target:       SelfTarget,
			Args:         []string{"consumer-ci-auth", "--repo", opts.Repo, "--out", out.ConsumerCIAuth},
			Required:     true,
			CriticalGate: true,
			OutputFiles:  []string{out.ConsumerCIAuth},
		})
	}

	steps = append(steps, domain.Step{
		ID:          StepCIArtifacts,
		Description: "Collect recent CI runs and artifact status",
		Target:      TargetCIArtifacts,
		Args:        []string{"--repo", opts.Repo, "--limit", limit, "--out", out.CIArtifacts},
		Required:    true,
		OutputFiles: []string{out.CIArtifacts},
	})

	if opts.RunWorkflowLint {
		steps = append(steps, domain.Step{
			ID:          StepWorkflowLint,
			Description: "Run semantic workflow lint on consumer repository",
			Target:      TargetWorkflowLint,
			Args: []string{
				"--repo-path", opts.RepoPath,
				"--actionlint-bin", opts.ActionlintBin,
				"--out", out.WorkflowLint,
			},
			OutputFiles: []string{out.WorkflowLint},
		})
	}

	steps = append(steps,
		domain.Step{
			ID:          StepSupportBundle,
			Description: "Build startup-failure support bundle",
			Target:      TargetSupportBundle,
			Args:        []string{"--repo", opts.Repo, "--limit", limit, "--out", out.SupportBundle},
			Required:    true,
			OutputFiles: []string{out.SupportBundle},
		},
		domain.Step{
			ID:          StepSupportTicketDraft,
			Description: "Build support ticket draft from auth + support bundle",
			Target:      TargetSupportTicketDraft,
			Args: []string{
				"--repo", opts.Repo,
				"--support-bundle", out.SupportBundle,
				"--auth-report", out.ConsumerCIAuth,
				"--out", out.SupportTicketDraft,
			},
			Required:    true,
			OutputFiles: []string{out.SupportTicketDraft},
		},
		domain.Step{
			ID:          StepStartupUnblockStatus,
			Description: "Build consolidated startup-unblock status report",
			Target:      SelfTarget,
			Args: []string{
				"consumer-startup-unblock-status",
				"--repo", opts.Repo,
				"--support-bundle", out.SupportBundle,
				"--auth-report", out.ConsumerCIAuth,
				"--workflow-lint-report", out.WorkflowLint,
				"--out", out.ConsumerStartupUnblock,
			},
			Required:    true,
			OutputFiles: []string{out.ConsumerStartupUnblock},
		},
	)
	return steps, nil
}

// ClosureOptions configure the Phase 5 execution closure plan.
type ClosureOptions struct {
	Repo   string `flag:"repo" validate:"required,ownerrepo"`
	Limit  int    `flag:"limit" validate:"gt=0"`
	OutDir string `flag:"out-dir" validate:"required"`
	LintOptions
	IncludeAuthPreflight    bool
	IncludeAdapter          bool
	RequireAdapterReadiness bool
	UseMockConsumer         bool
}

// BuildClosure returns the Phase 5 execution closure plan. The consumer
// auth preflight, when present, is the only critical gate.
func BuildClosure(opts ClosureOptions) ([]domain.Step, error) {
	errs := check(opts)
	if !opts.UseMockConsumer {
		errs = append(errs, opts.LintOptions.check()...)
	}
	if opts.RequireAdapterReadiness && !opts.IncludeAdapter {
		errs = append(errs, domain.NewConfigError("require-adapter-readiness",
			"cannot require adapter readiness when adapter flow is disabled (--skip-adapter)"))
	}
	if err := joinErrors(errs); err != nil {
		return nil, err
	}

	out := pipeline.ResolveOutputs(opts.OutDir)
	var steps []domain.Step

	if opts.IncludeAdapter {
		steps = append(steps,
			domain.Step{
				ID:          StepAdapterSessionStatus,
				Description: "Generate adapter session status report",
				Target:      SelfTarget,
				Args:        []string{"adapter-session-status", "--out", out.AdapterSessionStatus},
				Required:    opts.RequireAdapterReadiness,
				OutputFiles: []string{out.AdapterSessionStatus},
			},
			domain.Step{
				ID:          StepAdapterRealSession,
				Description: "Generate adapter real-session report",
				Target:      SelfTarget,
				Args: []string{
					"adapter-real-session-report",
					"--status-report", out.AdapterSessionStatus,
					"--out", out.AdapterRealSessionReport,
				},
				Required:    opts.RequireAdapterReadiness,
				OutputFiles: []string{out.AdapterRealSessionReport},
			},
			domain.Step{
				ID:          StepAdapterReadiness,
				Description: "Generate adapter readiness report",
				Target:      SelfTarget,
				Args: []string{
					"adapter-readiness",
					"--adapter-report", out.AdapterRealSessionReport,
					"--out", out.AdapterReadiness,
				},
				Required:    opts.RequireAdapterReadiness,
				OutputFiles: []string{out.AdapterReadiness},
			},
		)
	}

	if opts.IncludeAuthPreflight && !opts.UseMockConsumer {
		steps = append(steps, domain.Step{
			ID:           StepConsumerAuthPreflight,
			Description:  "Preflight GitHub auth/scopes and billing probe",
			Target:       SelfTarget,
			Args:         []string{"consumer-ci-auth", "--repo", opts.Repo, "--out", out.ConsumerCIAuth},
			Required:     true,
			CriticalGate: true,
			OutputFiles:  []string{out.ConsumerCIAuth},
		})
	}

	triage := domain.Step{
		ID:          StepConsumerTriage,
		Description: "Generate consumer startup triage bundle",
		Target:      SelfTarget,
		Args:        []string{"triage", "--repo", opts.Repo, "--out-dir", opts.OutDir},
		Required:    true,
		OutputFiles: []string{out.ConsumerStartupTriage, out.ConsumerStartupUnblock},
	}
	if opts.UseMockConsumer {
		steps = append(steps, domain.Step{
			ID:          StepMockConsumerAB,
			Description: "Generate mock consumer A/B validation report",
			Target:      TargetMockConsumerAB,
			Args:        []string{"--repo", opts.Repo, "--out", out.MockConsumerAB},
			Required:    true,
			OutputFiles: []string{out.MockConsumerAB},
		})
		triage.Target = TargetMockTriage
		triage.Args = []string{"--repo", opts.Repo, "--out-dir", opts.OutDir}
	} else {
		triage.Args = append(triage.Args, "--limit", strconv.Itoa(opts.Limit))
		if opts.RunWorkflowLint {
			triage.Args = append(triage.Args, "--repo-path", opts.RepoPath, "--actionlint-bin", opts.ActionlintBin)
		} else {
			triage.Args = append(triage.Args, "--skip-workflow-lint")
		}
		if opts.IncludeAuthPreflight {
			triage.Args = append(triage.Args, "--skip-auth-check")
		}
	}
	steps = append(steps, triage)

	blockersArgs := []string{
		"phase5-blockers-readiness",
		"--consumer-triage-report", out.ConsumerStartupTriage,
		"--out", out.Phase5Blockers,
	}
	if opts.IncludeAdapter {
		blockersArgs = append(blockersArgs, "--adapter-report", out.AdapterReadiness)
	}
	if opts.RequireAdapterReadiness {
		blockersArgs = append(blockersArgs, "--require-adapter-report")
	}
	steps = append(steps, domain.Step{
		ID:          StepPhase5Blockers,
		Description: "Generate Phase 5 blockers readiness report",
		Target:      SelfTarget,
		Args:        blockersArgs,
		Required:    true,
		OutputFiles: []string{out.Phase5Blockers},
	})

	statusArgs := []string{
		"phase5-execution-closure-status",
		"--phase5-blockers-report", out.Phase5Blockers,
		"--consumer-unblock-report", out.ConsumerStartupUnblock,
		"--out", out.Phase5ClosureStatus,
	}
	if opts.IncludeAdapter {
		statusArgs = append(statusArgs, "--adapter-readiness-report", out.AdapterReadiness)
	}
	if opts.RequireAdapterReadiness {
		statusArgs = append(statusArgs, "--require-adapter-readiness")
	}
	steps = append(steps, domain.Step{
		ID:          StepPhase5ClosureStatus,
		Description: "Generate Phase 5 execution closure status snapshot",
		Target:      SelfTarget,
		Args:        statusArgs,
		Required:    true,
		OutputFiles: []string{out.Phase5ClosureStatus},
	})

	return steps, nil
}
