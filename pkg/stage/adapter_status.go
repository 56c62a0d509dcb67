package stage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDAdapterSessionStatus is the adapter session status stage.
const IDAdapterSessionStatus = "adapter-session-status"

// Exit codes of the adapter session status stage.
const (
	ExitNeedsRealSession = 2
)

// AdapterStatusOptions configures the adapter session status stage.
type AdapterStatusOptions struct {
	Output     string
	HookLog    string
	WritesLog  string
	RuntimeLog string
	SmokeLog   string
	TailLines  int
}

type probeRun struct {
	Label    string
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (p probeRun) text() string {
	out := strings.TrimSpace(p.Output)
	if p.Err != nil {
		if out != "" {
			out += "\n"
		}
		out += "error: " + p.Err.Error()
	}
	return out
}

var adapterProbes = []struct {
	label  string
	target string
	args   []string
}{
	{signal.ProbeVerify, signal.ProbeVerify, nil},
	{signal.ProbeStrictAssess, signal.ProbeStrictAssess, nil},
	{signal.ProbeAnyAssess, signal.ProbeAnyAssess, nil},
}

type adapterStatusSignals struct {
	Probes []probeRun
	Tails  []logTail
}

func (s adapterStatusSignals) probe(label string) (probeRun, bool) {
	for _, p := range s.Probes {
		if p.Label == label {
			return p, true
		}
	}
	return probeRun{}, false
}

func (s adapterStatusSignals) assessmentPass(label string) bool {
	p, ok := s.probe(label)
	return ok && p.ExitCode == 0 && strings.Contains(p.Output, signal.AssessmentPassMarker)
}

type logTail struct {
	Key  string
	Path string
	Body string
}

// AdapterSessionStatus runs the adapter hook probes and tails the hook logs.
// PASS exits 0, NEEDS_REAL_SESSION exits 2 and BLOCKED exits 1.
func AdapterSessionStatus(opts AdapterStatusOptions) *Definition[adapterStatusSignals] {
	logs := []Input{
		{Key: "hook_log", Path: opts.HookLog},
		{Key: "writes_log", Path: opts.WritesLog},
		{Key: "runtime_log", Path: opts.RuntimeLog},
		{Key: "smoke_log", Path: opts.SmokeLog},
	}

	return &Definition[adapterStatusSignals]{
		Name:   IDAdapterSessionStatus,
		Title:  "Adapter Session Status",
		Output: opts.Output,
		Inputs: logs,
		Extract: func(ctx context.Context, rt *Runtime, in Inputs) (adapterStatusSignals, error) {
			var s adapterStatusSignals
			for _, p := range adapterProbes {
				res := rt.Capture(ctx, p.target, p.args...)
				s.Probes = append(s.Probes, probeRun{
					Label:    p.label,
					Command:  strings.TrimSpace(p.target + " " + strings.Join(p.args, " ")),
					ExitCode: res.ExitCode,
					Output:   res.Output,
					Err:      res.Err,
				})
			}
			for _, l := range logs {
				s.Tails = append(s.Tails, logTail{Key: l.Key, Path: l.Path, Body: report.Tail(in.Get(l.Key), opts.TailLines)})
			}
			return s, nil
		},
		Resolver: verdict.Resolver[adapterStatusSignals]{
			Rules: []verdict.Rule[adapterStatusSignals]{
				func(s adapterStatusSignals) []string {
					p, ok := s.probe(signal.ProbeVerify)
					if ok && p.ExitCode == 0 {
						return nil
					}
					return []string{fmt.Sprintf("`%s` exited with code %d", signal.ProbeVerify, p.ExitCode)}
				},
			},
			ReadyVerdict: func(s adapterStatusSignals) domain.Verdict {
				if s.assessmentPass(signal.ProbeStrictAssess) {
					return domain.VerdictPass
				}
				return domain.VerdictNeedsRealSession
			},
		},
		Present: func(s adapterStatusSignals, in Inputs, out domain.Outcome) Presentation {
			rows := make([][]string, 0, len(s.Probes))
			output := []string{}
			for _, p := range s.Probes {
				rows = append(rows, []string{p.Label, "`" + p.Command + "`", strconv.Itoa(p.ExitCode)})
				output = append(output, "### "+p.Label, "")
				output = append(output, report.Fence("text", p.text())...)
				output = append(output, "")
			}

			tails := []string{}
			for _, t := range s.Tails {
				title := t.Path
				if title == "" {
					title = t.Key
				}
				tails = append(tails, "### "+title, "")
				tails = append(tails, report.Fence("text", t.Body)...)
				tails = append(tails, "")
			}

			return Presentation{
				Metadata: []report.KV{{Key: "tail_lines", Value: strconv.Itoa(opts.TailLines)}},
				Signals: []report.KV{
					{Key: "verify_exit_code", Value: exitCodeOf(s, signal.ProbeVerify)},
					{Key: "strict_assessment", Value: passFail(s.assessmentPass(signal.ProbeStrictAssess))},
					{Key: "any_assessment", Value: passFail(s.assessmentPass(signal.ProbeAnyAssess))},
				},
				Sections: []report.Section{
					{Title: "Commands", Lines: report.Table([]string{"step", "command", "exit_code"}, rows)},
					{Title: "Command Output", Lines: trimTrailingBlank(output)},
					{Title: "Log Tails", Lines: trimTrailingBlank(tails)},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{
				"Strict session assessment passed.",
				"Generate the real-session report: `readiness adapter-real-session-report`.",
			},
			NotReady: []string{
				"Run a real adapter session (normal write, blocked write, strict-node write) with `READINESS_HOOK_DIAGNOSTIC=1`.",
				"Re-run `readiness adapter-session-status` to refresh this report.",
			},
		},
		ExitCode: func(v domain.Verdict) int {
			switch v {
			case domain.VerdictPass:
				return 0
			case domain.VerdictNeedsRealSession:
				return ExitNeedsRealSession
			}
			return 1
		},
	}
}

func exitCodeOf(s adapterStatusSignals, label string) string {
	p, ok := s.probe(label)
	if !ok {
		return domain.Unknown
	}
	return strconv.Itoa(p.ExitCode)
}

func passFail(b bool) string {
	if b {
		return string(domain.VerdictPass)
	}
	return string(domain.VerdictFail)
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
