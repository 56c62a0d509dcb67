package domain

import "strings"

// Verdict is the overall classification a stage assigns to its inputs.
type Verdict string

const (
	VerdictReady            Verdict = "READY"
	VerdictReadyForRetest   Verdict = "READY_FOR_RETEST"
	VerdictBlocked          Verdict = "BLOCKED"
	VerdictMissingInputs    Verdict = "MISSING_INPUTS"
	VerdictPass             Verdict = "PASS"
	VerdictFail             Verdict = "FAIL"
	VerdictNeedsRealSession Verdict = "NEEDS_REAL_SESSION"
)

var knownVerdicts = map[Verdict]struct{}{
	VerdictReady:            {},
	VerdictReadyForRetest:   {},
	VerdictBlocked:          {},
	VerdictMissingInputs:    {},
	VerdictPass:             {},
	VerdictFail:             {},
	VerdictNeedsRealSession: {},
}

// ParseVerdict normalizes a raw token into a known Verdict.
// It reports false for empty or unrecognized values.
func ParseVerdict(raw string) (Verdict, bool) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownVerdicts[v]; !ok {
		return "", false
	}
	return v, true
}

// IsReadyClass reports whether the verdict lets downstream stages proceed.
func (v Verdict) IsReadyClass() bool {
	switch v {
	case VerdictReady, VerdictReadyForRetest, VerdictPass:
		return true
	}
	return false
}

// OrUnknown renders the verdict, or "unknown" when it was never determined.
func (v Verdict) OrUnknown() string {
	if v == "" {
		return Unknown
	}
	return string(v)
}

// Unknown is the placeholder rendered for any signal that could not be determined.
const Unknown = "unknown"
