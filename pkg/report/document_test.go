package report

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.FixedZone("X", 3600))

func sampleDocument() Document {
	return Document{
		Title:       "Consumer Startup Failure Unblock Status",
		GeneratedAt: fixedTime,
		Metadata:    []KV{{"target_repo", "`owner/repo`"}},
		Inputs: []KV{
			Input("support_bundle", domain.Artifact{Path: "a.md", Exists: true}, false),
			Input("workflow_lint_report", domain.Artifact{Path: "lint.md"}, true),
		},
		Signals: []KV{
			{"startup_failure_runs", signal.FormatCount(signal.Ptr(3))},
			{"startup_stalled_runs", signal.FormatCount(nil)},
		},
		Sections: []Section{{Title: "Run URLs", Lines: nil}},
		Outcome: domain.Outcome{
			Verdict:  domain.VerdictBlocked,
			Blockers: []string{"Startup failures still present (3)"},
		},
		NextActions: []string{"Fix it."},
	}
}

func TestRender_Layout(t *testing.T) {
	want := "# Consumer Startup Failure Unblock Status\n" +
		"\n" +
		"- generated_at: 2026-03-04T04:06:07.008Z\n" +
		"- target_repo: `owner/repo`\n" +
		"- verdict: BLOCKED\n" +
		"\n" +
		"## Inputs\n\n" +
		"- support_bundle: `a.md` (found)\n" +
		"- workflow_lint_report: `lint.md` (missing, optional)\n\n" +
		"## Parsed Signals\n\n" +
		"- startup_failure_runs: 3\n" +
		"- startup_stalled_runs: unknown\n\n" +
		"## Run URLs\n\n" +
		"- none\n\n" +
		"## Missing Inputs\n\n- none\n\n" +
		"## Blockers\n\n- Startup failures still present (3)\n\n" +
		"## Warnings\n\n- none\n\n" +
		"## Next Actions\n\n- Fix it.\n"

	assert.Equal(t, want, Render(sampleDocument()))
}

func TestRender_Idempotent(t *testing.T) {
	a := Render(sampleDocument())
	b := Render(sampleDocument())
	assert.Equal(t, a, b)
	assert.True(t, strings.HasSuffix(a, "\n"))
	assert.False(t, strings.HasSuffix(a, "\n\n"))
}

func TestRender_ReparsesThroughSignals(t *testing.T) {
	out := Render(sampleDocument())

	h := signal.ParseHeader(out)
	assert.Equal(t, "BLOCKED", h.Verdict)
	assert.Equal(t, "owner/repo", h.TargetRepo)

	raw, ok := signal.Field(out, "startup_failure_runs")
	require.True(t, ok)
	assert.Equal(t, signal.Ptr(3), signal.ParseCount(raw))

	raw, ok = signal.Field(out, "startup_stalled_runs")
	require.True(t, ok)
	assert.Nil(t, signal.ParseCount(raw))

	body, ok := signal.Section(out, "Blockers")
	require.True(t, ok)
	assert.Equal(t, []string{"Startup failures still present (3)"}, signal.Bullets(body))
}

func TestRender_EmptyDocument(t *testing.T) {
	out := Render(Document{Title: "T", GeneratedAt: fixedTime})
	assert.Contains(t, out, "- verdict: unknown\n")
	assert.Contains(t, out, "## Inputs\n\n- none\n")
	assert.Contains(t, out, "## Next Actions\n\n- none\n")
}

func TestNextActions_For(t *testing.T) {
	n := NextActions{Ready: []string{"r"}, MissingInputs: []string{"m"}, NotReady: []string{"b"}}
	assert.Equal(t, []string{"r"}, n.For(domain.VerdictReadyForRetest))
	assert.Equal(t, []string{"r"}, n.For(domain.VerdictPass))
	assert.Equal(t, []string{"m"}, n.For(domain.VerdictMissingInputs))
	assert.Equal(t, []string{"b"}, n.For(domain.VerdictBlocked))
	assert.Equal(t, []string{"b"}, n.For(domain.VerdictNeedsRealSession))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []string{"- none"}, Bullets(nil))
	assert.Equal(t, []string{"```text", "(empty)", "```"}, Fence("text", "  \n"))
	assert.Equal(t, []string{
		"| step | exit_code |",
		"| --- | --- |",
		"| a\\|b | 0 |",
	}, Table([]string{"step", "exit_code"}, [][]string{{"a|b", "0"}}))

	log := domain.Artifact{Path: "x", Exists: true, Content: "1\r\n2\n3\n"}
	assert.Equal(t, "2\n3", Tail(log, 2))
	assert.Equal(t, "1\n2\n3", Tail(log, 10))
	assert.Equal(t, "(missing)", Tail(domain.Artifact{}, 3))
	assert.Equal(t, "(empty)", Tail(domain.Artifact{Exists: true, Content: "\n\n"}, 3))
}
