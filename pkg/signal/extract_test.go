package signal

import (
	"testing"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusReport = "# Adapter Session Status\n\n" +
	"- generated_at: 2026-01-01T00:00:00Z\n" +
	"- verdict: NEEDS_REAL_SESSION\n\n" +
	"## Commands\n\n" +
	"| step | command | exit_code |\n" +
	"| --- | --- | --- |\n" +
	"| verify-adapter-hooks-runtime | `verify-adapter-hooks-runtime` | 0 |\n" +
	"| assess-adapter-hooks-session | `assess-adapter-hooks-session` | 1 |\n" +
	"| assess-adapter-hooks-session:any | `assess-adapter-hooks-session --any` | 0 |\n\n" +
	"## Command Output\n\n" +
	"### assess-adapter-hooks-session\n\n```text\nsession-assessment=FAIL\n```\n\n" +
	"### assess-adapter-hooks-session:any\n\n```text\nsession-assessment=PASS\n```\n"

func TestParseAdapterStatus(t *testing.T) {
	got := ParseAdapterStatus(statusReport)
	want := AdapterStatus{
		Verdict:              domain.VerdictNeedsRealSession,
		VerifyExitCode:       Ptr(0),
		StrictExitCode:       Ptr(1),
		AnyExitCode:          Ptr(0),
		StrictAssessmentPass: false,
		AnyAssessmentPass:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseAdapterStatus mismatch (-want +got):\n%s", diff)
	}

	empty := ParseAdapterStatus("garbage")
	assert.Nil(t, empty.VerifyExitCode)
	assert.False(t, empty.StrictAssessmentPass)
}

func TestParseAdapterSession(t *testing.T) {
	t.Run("Explicit Lines", func(t *testing.T) {
		s := ParseAdapterSession("- verdict: READY\n- Validation result: pass\n- Re-test required: NO\n- Any `bash: node: command not found`: NO\n")
		assert.Equal(t, domain.VerdictReady, s.Verdict)
		assert.Equal(t, domain.VerdictPass, s.ValidationResult)
		assert.Equal(t, Ptr(false), s.ReTestRequired)
		assert.False(t, s.NodeCommandNotFound)
	})

	t.Run("Falls Back To Scan", func(t *testing.T) {
		s := ParseAdapterSession("log:\nbash: node: command not found\n- Validation result: MAYBE\n")
		assert.True(t, s.NodeCommandNotFound)
		assert.Empty(t, s.ValidationResult, "only PASS/FAIL are accepted")
		assert.Nil(t, s.ReTestRequired)
	})
}

func TestParseRuntime(t *testing.T) {
	corpus := "pre_write_code fired\nnode_bin = /usr/bin/node\npost_write_code fired\n"
	hook := "ALLOWED: src/a.ts\n"
	got := ParseRuntime(corpus+hook, hook)
	assert.True(t, got.PreWriteObserved)
	assert.True(t, got.PostWriteObserved)
	assert.True(t, got.NodeBinResolved)
	assert.False(t, got.NodeCommandMissing)
	assert.True(t, got.NormalWriteTriggered)
	assert.False(t, got.BlockedWriteTriggered)
}

func TestParseAuth(t *testing.T) {
	content := `# Consumer CI Auth Check

- missing_scopes: user, workflow
- verdict: BLOCKED

## Billing Probe

- error: HTTP 404 needs user scope

## Remediation

- error: not this one
`
	got := ParseAuth(content)
	assert.Equal(t, domain.VerdictBlocked, got.Verdict)
	assert.Equal(t, []string{"user", "workflow"}, got.MissingScopes)
	assert.True(t, got.MissingUserScope)
	assert.Equal(t, "HTTP 404 needs user scope", got.BillingError)

	clean := ParseAuth("- missing_scopes: (none)\n- verdict: READY\n")
	assert.Empty(t, clean.MissingScopes)
	assert.False(t, clean.MissingUserScope)
	assert.Empty(t, clean.BillingError)
}

func TestParseSupportBundle(t *testing.T) {
	content := `# Consumer Startup Failure Support Bundle

- startup_failure_runs: 2
- startup_stalled_runs: unknown

### Run 1

- url: https://github.com/owner/repo/actions/runs/123
- jobs.total_count: 0
- artifacts.total_count: 0

### Run 2

- url: https://github.com/owner/repo/actions/runs/456

- https://github.com/owner/repo/actions/runs/123
`
	got := ParseSupportBundle(content)
	assert.Equal(t, Ptr(2), got.StartupFailureRuns)
	assert.Nil(t, got.StartupStalledRuns)
	assert.Equal(t, Ptr(0), got.JobsCount)
	assert.Equal(t, Ptr(0), got.ArtifactsCount)
	assert.Equal(t, []string{
		"https://github.com/owner/repo/actions/runs/123",
		"https://github.com/owner/repo/actions/runs/456",
	}, got.RunURLs)
}

func TestParseWorkflowLint(t *testing.T) {
	got := ParseWorkflowLint(`
# Consumer Workflow Lint Report

- exit_code: 1

## Raw Output

apps/.github/workflows/ci.yml:10:3: label "macos-13" is unknown [runner-label]
apps/.github/workflows/lighthouse.yml:20:5: input "assertions" is not defined [action]
`)
	assert.Equal(t, Ptr(1), got.ExitCode)
	assert.Equal(t, 2, got.FindingsCount)
	assert.Len(t, got.Findings, 2)
}

func TestParseTriage(t *testing.T) {
	got := ParseTriage("- verdict: BLOCKED\n\n## Blockers\n\n- Required step `ci-artifacts` failed (exit 1)\n- Required step `support-bundle` did not run\n- Required step `ci-artifacts` failed (exit 1)\n")
	assert.Equal(t, domain.VerdictBlocked, got.Verdict)
	assert.Equal(t, []string{"ci-artifacts"}, got.RequiredFailedSteps)
	assert.Equal(t, []string{"support-bundle"}, got.RequiredSkippedSteps)

	assert.Empty(t, ParseTriage("- verdict: PASS\n").Verdict, "triage only reports READY or BLOCKED")
}

func TestParseHeader(t *testing.T) {
	h := ParseHeader("# Phase 5 External Handoff\n\n- generated_at: 2026-01-01T00:00:00Z\n- target_repo: `owner/repo`\n- verdict: READY\n- require_artifact_urls: NO\n\n## Inputs\n\n- verdict: BLOCKED\n")
	assert.Equal(t, "Phase 5 External Handoff", h.Title)
	assert.Equal(t, "2026-01-01T00:00:00Z", h.GeneratedAt)
	assert.Equal(t, "owner/repo", h.TargetRepo)
	assert.Equal(t, "READY", h.Verdict)
	assert.Equal(t, "NO", h.Extra["require_artifact_urls"])

	v, ok := h.ParsedVerdict()
	require.True(t, ok)
	assert.Equal(t, domain.VerdictReady, v)
}

func TestParseVerdictOnly(t *testing.T) {
	assert.Equal(t, VerdictOnly{Verdict: domain.VerdictReadyForRetest, Raw: "READY_FOR_RETEST"},
		ParseVerdictOnly("# T\n\n- verdict: READY_FOR_RETEST\n"))

	odd := ParseVerdictOnly("# T\n\n- verdict: PENDING\n")
	assert.Empty(t, odd.Verdict)
	assert.Equal(t, "PENDING", odd.OrUnknown())

	assert.Equal(t, Unknown, ParseVerdictOnly("nothing here").OrUnknown())
}

func TestExtract(t *testing.T) {
	got := Extract(KindSupportBundle, "- startup_failure_runs: 4\n")
	require.NotNil(t, got)
	assert.Equal(t, KindSupportBundle, got.Kind())
	assert.Equal(t, Ptr(4), got.(SupportBundle).StartupFailureRuns)

	assert.Nil(t, Extract(Kind("nope"), "x"))
	assert.Contains(t, Kinds(), KindVerdict)
}

func TestExtractorsAreTotal(t *testing.T) {
	inputs := []string{"", "\x00\xff", "- : \n|||\n```", "# only title", "- verdict:"}
	for _, kind := range Kinds() {
		for _, in := range inputs {
			assert.NotPanics(t, func() { Extract(kind, in) }, "kind=%s", kind)
		}
	}
}

func TestParseTokenScopes(t *testing.T) {
	out := "github.com\n  ✓ Logged in to github.com account octo (keyring)\n  - Active account: true\n  - Token scopes: 'gist', 'read:org', 'repo', 'workflow'\n"
	assert.Equal(t, []string{"gist", "read:org", "repo", "workflow"}, ParseTokenScopes(out))
	assert.Empty(t, ParseTokenScopes("not logged in"))
}
