// Package verdict derives a stage outcome from input presence and extracted signals.
package verdict

import (
	"fmt"

	"github.com/aretw0/readiness/pkg/domain"
)

// Requirement declares one input of a stage and whether it was found.
// Optional inputs never produce a missing-input entry.
type Requirement struct {
	// Missing is the message reported when a required input is absent.
	Missing  string
	Required bool
	Present  bool
}

// Rule inspects signals and returns the reasons it was violated.
// Most rules return zero or one reason.
type Rule[S any] func(S) []string

// Resolver maps requirements and signals of type S to an Outcome.
type Resolver[S any] struct {
	// Ready is the verdict when nothing blocks. Defaults to READY.
	Ready domain.Verdict
	// ReadyVerdict, when set, replaces Ready for stages whose clean verdict
	// depends on the signals themselves.
	ReadyVerdict func(S) domain.Verdict
	// Blocked is the verdict when any rule fires. Defaults to BLOCKED.
	Blocked domain.Verdict
	// Rules produce blockers. They are all evaluated, in order.
	Rules []Rule[S]
	// Advisories produce warnings only.
	Advisories []Rule[S]
}

// Resolve computes the outcome.
//
// Missing required inputs short-circuit everything else: the verdict is
// MISSING_INPUTS, the blockers mirror the missing inputs and no rule runs.
func (r Resolver[S]) Resolve(reqs []Requirement, signals S) domain.Outcome {
	var missing []string
	for _, req := range reqs {
		if req.Required && !req.Present {
			missing = append(missing, req.Missing)
		}
	}
	if len(missing) > 0 {
		missing = domain.Dedupe(missing)
		return domain.Outcome{
			Verdict:       domain.VerdictMissingInputs,
			Blockers:      append([]string(nil), missing...),
			MissingInputs: missing,
			Warnings:      []string{},
		}
	}

	var blockers, warnings []string
	for _, rule := range r.Rules {
		blockers = append(blockers, rule(signals)...)
	}
	for _, rule := range r.Advisories {
		warnings = append(warnings, rule(signals)...)
	}

	out := domain.Outcome{
		Blockers:      domain.Dedupe(blockers),
		MissingInputs: []string{},
		Warnings:      domain.Dedupe(warnings),
	}
	switch {
	case len(out.Blockers) > 0 && r.Blocked != "":
		out.Verdict = r.Blocked
	case len(out.Blockers) > 0:
		out.Verdict = domain.VerdictBlocked
	case r.ReadyVerdict != nil:
		out.Verdict = r.ReadyVerdict(signals)
	case r.Ready != "":
		out.Verdict = r.Ready
	default:
		out.Verdict = domain.VerdictReady
	}
	return out
}

// When reports msg whenever cond holds.
func When[S any](cond func(S) bool, msg string) Rule[S] {
	return func(s S) []string {
		if cond(s) {
			return []string{msg}
		}
		return nil
	}
}

// Whenf is When with a message computed from the signals.
func Whenf[S any](cond func(S) bool, msg func(S) string) Rule[S] {
	return func(s S) []string {
		if cond(s) {
			return []string{msg(s)}
		}
		return nil
	}
}

// Count treats a positive count as a violation formatted with format (one %d verb).
// A nil count is reported as unable, unless unable is empty, in which case
// an unknown count passes.
func Count[S any](get func(S) *int, format, unable string) Rule[S] {
	return func(s S) []string {
		n := get(s)
		switch {
		case n == nil && unable != "":
			return []string{unable}
		case n != nil && *n > 0:
			return []string{fmt.Sprintf(format, *n)}
		}
		return nil
	}
}

// Each reports one reason per element returned by get.
func Each[S any](get func(S) []string, format string) Rule[S] {
	return func(s S) []string {
		var out []string
		for _, v := range get(s) {
			out = append(out, fmt.Sprintf(format, v))
		}
		return out
	}
}
