package plan

import (
	"errors"
	"testing"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(steps []domain.Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.ID)
	}
	return out
}

func find(t *testing.T, steps []domain.Step, id string) domain.Step {
	t.Helper()
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("step %q not in plan %v", id, ids(steps))
	return domain.Step{}
}

func configFields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	var agg *domain.AggregateError
	require.True(t, errors.As(err, &agg))
	var fields []string
	for _, e := range agg.Errors {
		var ce *domain.ConfigError
		require.True(t, errors.As(e, &ce))
		fields = append(fields, ce.Field)
	}
	return fields
}

func TestBuildTriage(t *testing.T) {
	base := TriageOptions{Repo: "acme/app", Limit: 20, OutDir: ".audit-reports/consumer-triage"}

	t.Run("Default Plan", func(t *testing.T) {
		steps, err := BuildTriage(base)
		require.NoError(t, err)
		assert.Equal(t, []string{
			StepAuthCheck, StepCIArtifacts, StepSupportBundle, StepSupportTicketDraft, StepStartupUnblockStatus,
		}, ids(steps))

		auth := steps[0]
		assert.True(t, auth.Required)
		assert.True(t, auth.CriticalGate)
		assert.Equal(t, SelfTarget, auth.Target)
		assert.Equal(t, []string{".audit-reports/consumer-triage/consumer-ci-auth-check.md"}, auth.OutputFiles)

		for _, s := range steps[1:] {
			assert.False(t, s.CriticalGate, s.ID)
			assert.True(t, s.Required, s.ID)
		}

		bundle := find(t, steps, StepSupportBundle)
		assert.Equal(t, []string{
			"--repo", "acme/app", "--limit", "20",
			"--out", ".audit-reports/consumer-triage/consumer-startup-failure-support-bundle.md",
		}, bundle.Args)
	})

	t.Run("Workflow Lint Is Optional", func(t *testing.T) {
		opts := base
		opts.LintOptions = LintOptions{RunWorkflowLint: true, RepoPath: "../app", ActionlintBin: "/usr/bin/actionlint"}
		steps, err := BuildTriage(opts)
		require.NoError(t, err)

		lint := find(t, steps, StepWorkflowLint)
		assert.False(t, lint.Required)
		assert.Equal(t, TargetWorkflowLint, lint.Target)
		assert.Equal(t, StepCIArtifacts, steps[1].ID)
		assert.Equal(t, StepWorkflowLint, steps[2].ID)
	})

	t.Run("Skip Auth Check", func(t *testing.T) {
		opts := base
		opts.SkipAuthCheck = true
		steps, err := BuildTriage(opts)
		require.NoError(t, err)
		assert.NotContains(t, ids(steps), StepAuthCheck)
		for _, s := range steps {
			assert.False(t, s.CriticalGate)
		}
	})

	t.Run("Configuration Errors", func(t *testing.T) {
		tests := []struct {
			name   string
			opts   TriageOptions
			fields []string
		}{
			{"Missing Repo", TriageOptions{Limit: 1, OutDir: "out"}, []string{"repo"}},
			{"Bad Repo", TriageOptions{Repo: "acme", Limit: 1, OutDir: "out"}, []string{"repo"}},
			{"Bad Limit And Out Dir", TriageOptions{Repo: "acme/app"}, []string{"limit", "out-dir"}},
			{
				"Lint Without Paths",
				TriageOptions{Repo: "acme/app", Limit: 1, OutDir: "out", LintOptions: LintOptions{RunWorkflowLint: true}},
				[]string{"repo-path"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				steps, err := BuildTriage(tt.opts)
				assert.Nil(t, steps)
				assert.Equal(t, tt.fields, configFields(t, err))
			})
		}
	})
}

func TestBuildClosure(t *testing.T) {
	base := ClosureOptions{Repo: "acme/app", Limit: 20, OutDir: "out"}

	t.Run("Minimal Plan", func(t *testing.T) {
		steps, err := BuildClosure(base)
		require.NoError(t, err)
		assert.Equal(t, []string{StepConsumerTriage, StepPhase5Blockers, StepPhase5ClosureStatus}, ids(steps))

		triage := steps[0]
		assert.Equal(t, []string{
			"triage", "--repo", "acme/app", "--out-dir", "out", "--limit", "20", "--skip-workflow-lint",
		}, triage.Args)
		assert.Equal(t, []string{"out/consumer-startup-triage-report.md", "out/consumer-startup-unblock-status.md"}, triage.OutputFiles)

		assert.Equal(t, []string{
			"phase5-blockers-readiness",
			"--consumer-triage-report", "out/consumer-startup-triage-report.md",
			"--out", "out/phase5-blockers-readiness.md",
		}, steps[1].Args)
	})

	t.Run("Full Plan", func(t *testing.T) {
		opts := base
		opts.IncludeAdapter = true
		opts.RequireAdapterReadiness = true
		opts.IncludeAuthPreflight = true
		steps, err := BuildClosure(opts)
		require.NoError(t, err)

		assert.Equal(t, []string{
			StepAdapterSessionStatus, StepAdapterRealSession, StepAdapterReadiness,
			StepConsumerAuthPreflight, StepConsumerTriage, StepPhase5Blockers, StepPhase5ClosureStatus,
		}, ids(steps))

		for _, s := range steps[:3] {
			assert.True(t, s.Required, s.ID)
		}
		gate := find(t, steps, StepConsumerAuthPreflight)
		assert.True(t, gate.CriticalGate)

		assert.Contains(t, find(t, steps, StepConsumerTriage).Args, "--skip-auth-check")
		assert.Subset(t, find(t, steps, StepPhase5Blockers).Args,
			[]string{"--adapter-report", "out/adapter-readiness.md", "--require-adapter-report"})
		assert.Subset(t, find(t, steps, StepPhase5ClosureStatus).Args,
			[]string{"--adapter-readiness-report", "--require-adapter-readiness"})
	})

	t.Run("Adapter Included But Optional", func(t *testing.T) {
		opts := base
		opts.IncludeAdapter = true
		steps, err := BuildClosure(opts)
		require.NoError(t, err)

		assert.False(t, find(t, steps, StepAdapterReadiness).Required)
		assert.NotContains(t, find(t, steps, StepPhase5ClosureStatus).Args, "--require-adapter-readiness")
		assert.Contains(t, find(t, steps, StepPhase5ClosureStatus).Args, "--adapter-readiness-report")
	})

	t.Run("Mock Consumer", func(t *testing.T) {
		opts := base
		opts.UseMockConsumer = true
		opts.IncludeAuthPreflight = true
		opts.LintOptions = LintOptions{RunWorkflowLint: true}
		steps, err := BuildClosure(opts)
		require.NoError(t, err)

		assert.Equal(t, []string{StepMockConsumerAB, StepConsumerTriage, StepPhase5Blockers, StepPhase5ClosureStatus}, ids(steps))
		triage := find(t, steps, StepConsumerTriage)
		assert.Equal(t, TargetMockTriage, triage.Target)
		assert.Equal(t, []string{"--repo", "acme/app", "--out-dir", "out"}, triage.Args)
	})

	t.Run("Adapter Required But Disabled", func(t *testing.T) {
		opts := base
		opts.RequireAdapterReadiness = true
		_, err := BuildClosure(opts)
		assert.Equal(t, []string{"require-adapter-readiness"}, configFields(t, err))
		assert.ErrorContains(t, err, "--skip-adapter")
	})
}
