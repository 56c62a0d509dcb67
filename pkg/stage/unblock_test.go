package stage

import (
	"testing"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bundlePath = "support-bundle.md"
	authPath   = "consumer-ci-auth.md"
	lintPath   = "workflow-lint.md"
)

func bundleReport(failures, stalled string) string {
	return "# Consumer Startup Failure Support Bundle\n\n" +
		"- startup_failure_runs: " + failures + "\n" +
		"- startup_stalled_runs: " + stalled + "\n" +
		"- jobs.total_count: 4\n" +
		"- artifacts.total_count: 2\n\n" +
		"## Runs\n\n" +
		"- https://github.com/acme/app/actions/runs/101\n" +
		"- https://github.com/acme/app/actions/runs/101\n" +
		"- https://github.com/acme/app/actions/runs/102\n"
}

func authReport(v, missing string) string {
	return "# Consumer CI Auth Check\n\n" +
		"- generated_at: 2026-05-01T11:00:00.000Z\n" +
		"- missing_scopes: " + missing + "\n" +
		"- verdict: " + v + "\n"
}

func lintReport(findings ...string) string {
	out := "# Workflow Lint\n\n- exit_code: 1\n\n## Raw Output\n\n```text\n"
	for _, f := range findings {
		out += f + "\n"
	}
	return out + "```\n"
}

func unblockStage() *Definition[unblockSignals] {
	return ConsumerStartupUnblock(UnblockOptions{
		Output:             "unblock.md",
		Repo:               "acme/app",
		SupportBundle:      bundlePath,
		AuthReport:         authPath,
		WorkflowLintReport: lintPath,
	})
}

func TestConsumerStartupUnblock(t *testing.T) {
	t.Run("No Artifacts", func(t *testing.T) {
		rt, _ := newTestRuntime(nil)
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictMissingInputs, res.Outcome.Verdict)
		assert.Len(t, res.Outcome.MissingInputs, 2)
		assert.Equal(t, res.Outcome.MissingInputs, res.Outcome.Blockers)
		assert.Equal(t, 1, res.ExitCode)
	})

	t.Run("Clean Signals Are Ready For Retest", func(t *testing.T) {
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("0", "0"),
			authPath:   authReport("READY", "(none)"),
			lintPath:   lintReport(),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictReadyForRetest, res.Outcome.Verdict)
		assert.Empty(t, res.Outcome.Blockers)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Content, "- startup_failure_runs: 0\n")
		assert.Contains(t, res.Content, "- lint_findings_count: 0\n")
		assert.Contains(t, res.Content, "## Run URLs\n\n"+
			"- https://github.com/acme/app/actions/runs/101\n"+
			"- https://github.com/acme/app/actions/runs/102\n")
	})

	t.Run("Lint Findings Block", func(t *testing.T) {
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("0", "0"),
			authPath:   authReport("READY", "(none)"),
			lintPath: lintReport(
				".github/workflows/ci.yml:3:5: unknown key",
				".github/workflows/ci.yml:9:1: bad expression",
				".github/workflows/ci.yml:12:7: missing runs-on",
				".github/workflows/ci.yml:20:3: shellcheck SC2086",
			),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictBlocked, res.Outcome.Verdict)
		require.Len(t, res.Outcome.Blockers, 1)
		assert.Contains(t, res.Outcome.Blockers[0], "4")
	})

	t.Run("Independent Rules Are All Reported", func(t *testing.T) {
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("2", "0"),
			authPath:   authReport("BLOCKED", "user"),
			lintPath:   lintReport(),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictBlocked, res.Outcome.Verdict)
		assert.Equal(t, []string{
			"Startup failures still present (2)",
			"Consumer CI auth verdict is BLOCKED",
			"GitHub CLI token is missing `user` scope",
		}, res.Outcome.Blockers)
	})

	t.Run("Optional Lint Report Absent", func(t *testing.T) {
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("0", "0"),
			authPath:   authReport("READY", "(none)"),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictReadyForRetest, res.Outcome.Verdict)
		assert.Empty(t, res.Outcome.MissingInputs)
		assert.Contains(t, res.Content, "- workflow_lint_report: `workflow-lint.md` (missing, optional)\n")
		assert.Contains(t, res.Content, "- lint_findings_count: unknown\n")
	})

	t.Run("Unknown Failure Count", func(t *testing.T) {
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("n/a", "1"),
			authPath:   authReport("READY", "(none)"),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, []string{
			"Unable to determine startup failure runs from support bundle",
			"Startup runs remain queued/stalled (1)",
		}, res.Outcome.Blockers)
		assert.Contains(t, res.Content, "- startup_failure_runs: unknown\n")
	})

	t.Run("Stuck Before Job Graph", func(t *testing.T) {
		bundle := "- startup_failure_runs: 0\n- startup_stalled_runs: 0\n" +
			"- jobs.total_count: 0\n- artifacts.total_count: 0\n" +
			"- run: https://github.com/acme/app/actions/runs/7\n"
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundle,
			authPath:   authReport("READY", "(none)"),
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, []string{
			"Startup runs appear stuck before job graph creation (jobs=0, artifacts=0)",
		}, res.Outcome.Blockers)
	})

	t.Run("Billing Error Is A Warning", func(t *testing.T) {
		auth := authReport("READY", "(none)") + "\n## Billing Probe\n\n- error: HTTP 404\n"
		rt, _ := newTestRuntime(map[string]string{
			bundlePath: bundleReport("0", "0"),
			authPath:   auth,
		})
		res := runStage(t, rt, unblockStage())

		assert.Equal(t, domain.VerdictReadyForRetest, res.Outcome.Verdict)
		assert.Equal(t, []string{"Billing probe reported: HTTP 404"}, res.Outcome.Warnings)
	})
}
