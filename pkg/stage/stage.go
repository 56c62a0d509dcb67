// Package stage runs pipeline stages.
//
// A stage is described by one Definition: its inputs, how signals are
// extracted from them, the verdict rules and how the result is presented.
// Definition.Run loads the inputs through the artifact store, resolves the
// outcome, renders the report and writes it to the stage's output path.
package stage

import (
	"context"
	"fmt"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/verdict"
)

// Stage is a pipeline node that renders exactly one artifact.
type Stage interface {
	ID() string
	OutputPath() string
	Run(ctx context.Context, rt *Runtime) (Result, error)
}

// Result is what a stage run produced.
type Result struct {
	StageID  string
	Output   string
	Outcome  domain.Outcome
	Content  string
	ExitCode int
}

// Input declares one artifact a stage reads.
type Input struct {
	// Key identifies the input inside the stage; it is also the rendered
	// label unless Label is set.
	Key      string
	Label    string
	Path     string
	Required bool
	// Missing is the missing-input message used when Required and absent.
	Missing string
}

func (i Input) label() string {
	if i.Label != "" {
		return i.Label
	}
	return i.Key
}

// Inputs are the loaded artifacts of a stage, by key.
type Inputs map[string]domain.Artifact

// Get returns the artifact for key, or a missing artifact.
func (in Inputs) Get(key string) domain.Artifact {
	return in[key]
}

// Has reports whether the artifact for key exists.
func (in Inputs) Has(key string) bool {
	return in[key].Exists
}

// Parse runs fn on the artifact content only when it exists.
func Parse[T any](a domain.Artifact, fn func(string) T) (T, bool) {
	var zero T
	if !a.Exists {
		return zero, false
	}
	return fn(a.Content), true
}

// Presentation is the stage-specific part of the rendered report.
type Presentation struct {
	Metadata   []report.KV
	InputNotes []report.KV
	Signals    []report.KV
	Sections   []report.Section
}

// Definition configures a stage over its signal record S.
type Definition[S any] struct {
	Name         string
	Title        string
	SignalsTitle string
	Output       string
	Inputs       []Input

	// Extract builds the signal record. It is only handed artifacts that
	// were loaded; absent ones are left for the resolver to report.
	Extract  func(ctx context.Context, rt *Runtime, in Inputs) (S, error)
	Resolver verdict.Resolver[S]
	Present  func(s S, in Inputs, out domain.Outcome) Presentation
	Next     report.NextActions
	// ExitCode maps the verdict to a process exit code. Defaults to
	// 0 for ready-class verdicts and 1 otherwise.
	ExitCode func(domain.Verdict) int
}

var _ Stage = (*Definition[struct{}])(nil)

// ID returns the stage name.
func (d *Definition[S]) ID() string { return d.Name }

// OutputPath returns where the stage writes its report.
func (d *Definition[S]) OutputPath() string { return d.Output }

// Evaluate loads inputs, extracts signals and resolves the outcome without
// rendering anything.
func (d *Definition[S]) Evaluate(ctx context.Context, rt *Runtime) (S, Inputs, domain.Outcome, error) {
	var signals S

	in := make(Inputs, len(d.Inputs))
	reqs := make([]verdict.Requirement, 0, len(d.Inputs))
	for _, input := range d.Inputs {
		if _, dup := in[input.Key]; dup {
			return signals, nil, domain.Outcome{}, fmt.Errorf("stage %s: duplicate input key %q", d.Name, input.Key)
		}
		art := domain.MissingArtifact(input.Path)
		if input.Path != "" {
			var err error
			art, err = rt.store.Read(ctx, input.Path)
			if err != nil {
				return signals, nil, domain.Outcome{}, fmt.Errorf("stage %s: %w", d.Name, err)
			}
		}
		in[input.Key] = art
		reqs = append(reqs, verdict.Requirement{
			Missing:  input.Missing,
			Required: input.Required,
			Present:  art.Exists,
		})
	}

	if d.Extract != nil {
		var err error
		signals, err = d.Extract(ctx, rt, in)
		if err != nil {
			return signals, nil, domain.Outcome{}, fmt.Errorf("stage %s: %w", d.Name, err)
		}
	}
	return signals, in, d.Resolver.Resolve(reqs, signals), nil
}

// Render builds the report for an evaluated stage.
func (d *Definition[S]) Render(rt *Runtime, signals S, in Inputs, out domain.Outcome) string {
	var p Presentation
	if d.Present != nil {
		p = d.Present(signals, in, out)
	}

	inputs := make([]report.KV, 0, len(d.Inputs)+len(p.InputNotes))
	for _, input := range d.Inputs {
		inputs = append(inputs, report.Input(input.label(), in.Get(input.Key), !input.Required))
	}
	inputs = append(inputs, p.InputNotes...)

	return report.Render(report.Document{
		Title:        d.Title,
		GeneratedAt:  rt.now(),
		Metadata:     p.Metadata,
		Inputs:       inputs,
		SignalsTitle: d.SignalsTitle,
		Signals:      p.Signals,
		Sections:     p.Sections,
		Outcome:      out,
		NextActions:  d.Next.For(out.Verdict),
	})
}

// Run evaluates the stage, renders its report and writes it.
func (d *Definition[S]) Run(ctx context.Context, rt *Runtime) (Result, error) {
	if d.Output == "" {
		return Result{}, domain.NewConfigError("out", fmt.Sprintf("stage %s has no output path", d.Name))
	}

	signals, in, out, err := d.Evaluate(ctx, rt)
	if err != nil {
		return Result{}, err
	}

	content := d.Render(rt, signals, in, out)
	if err := rt.store.Write(ctx, d.Output, content); err != nil {
		return Result{}, fmt.Errorf("stage %s: failed to write report: %w", d.Name, err)
	}

	res := Result{
		StageID:  d.Name,
		Output:   d.Output,
		Outcome:  out,
		Content:  content,
		ExitCode: d.exitCode(out.Verdict),
	}
	rt.logger.Info("stage report written",
		"stage", d.Name,
		"out", d.Output,
		"verdict", out.Verdict,
		"blockers", len(out.Blockers),
		"missing_inputs", len(out.MissingInputs),
		"warnings", len(out.Warnings),
	)
	rt.notify(res)
	return res, nil
}

func (d *Definition[S]) exitCode(v domain.Verdict) int {
	if d.ExitCode != nil {
		return d.ExitCode(v)
	}
	if v.IsReadyClass() {
		return 0
	}
	return 1
}
