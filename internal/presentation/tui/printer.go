package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes colored one-line summaries.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer; the color profile is detected from w.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

func (p *Printer) verdict(v domain.Verdict) termenv.Style {
	s := p.out.String(v.OrUnknown()).Bold()
	switch {
	case v.IsReadyClass():
		return s.Foreground(p.out.Color("#22c55e"))
	case v == domain.VerdictMissingInputs || v == domain.VerdictNeedsRealSession:
		return s.Foreground(p.out.Color("#eab308"))
	default:
		return s.Foreground(p.out.Color("#ef4444"))
	}
}

// Verdict prints the outcome of a written stage report.
func (p *Printer) Verdict(stageID string, v domain.Verdict, path string) {
	fmt.Fprintf(p.out, "%s: %s (%s)\n", stageID, p.verdict(v), path)
}

// Step prints the state of one orchestrated step.
func (p *Printer) Step(id string, state domain.StepState) {
	color := "#a78bfa"
	switch state {
	case domain.StepSucceeded:
		color = "#22c55e"
	case domain.StepFailed:
		color = "#ef4444"
	}
	fmt.Fprintf(p.out, ">>> %s %s\n", p.out.String(string(state)).Foreground(p.out.Color(color)), id)
}

// Line prints plain text.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
