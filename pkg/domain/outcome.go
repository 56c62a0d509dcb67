package domain

// Outcome is the resolved state of a stage.
//
// Invariants: MissingInputs wins over Blockers, and a ready-class verdict
// implies both lists are empty. When Verdict is VerdictMissingInputs the
// Blockers list mirrors MissingInputs.
type Outcome struct {
	Verdict       Verdict
	Blockers      []string
	MissingInputs []string
	Warnings      []string
}

// Dedupe removes repeated values, keeping the first occurrence of each.
// It never returns nil so rendered lists stay stable.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
