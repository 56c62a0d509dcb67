package report

import (
	"fmt"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
)

// InputValue renders an input line value: "`path` (found|missing[, optional])".
func InputValue(a domain.Artifact, optional bool) string {
	return fmt.Sprintf("`%s` (%s)", a.Path, a.FoundLabel(optional))
}

// Input builds an Inputs entry for an artifact.
func Input(key string, a domain.Artifact, optional bool) KV {
	return KV{Key: key, Value: InputValue(a, optional)}
}

// Bullets renders items as `- item` lines, or `- none` when empty.
func Bullets(items []string) []string {
	if len(items) == 0 {
		return []string{"- " + None}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, "- "+it)
	}
	return out
}

// Fence wraps body in a fenced block. Empty bodies render as "(empty)".
func Fence(lang, body string) []string {
	body = strings.TrimRight(strings.ReplaceAll(body, "\r\n", "\n"), "\n ")
	if body == "" {
		body = "(empty)"
	}
	out := []string{"```" + lang}
	out = append(out, strings.Split(body, "\n")...)
	return append(out, "```")
}

// Table renders a markdown table. Cells containing `|` are escaped.
func Table(header []string, rows [][]string) []string {
	out := []string{tableRow(header)}
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	out = append(out, tableRow(sep))
	for _, r := range rows {
		out = append(out, tableRow(r))
	}
	return out
}

func tableRow(cells []string) string {
	esc := make([]string, len(cells))
	for i, c := range cells {
		esc[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(esc, " | ") + " |"
}

// Tail returns the last n lines of content, "(missing)" when content is absent
// and "(empty)" when nothing but whitespace remains.
func Tail(a domain.Artifact, n int) string {
	if !a.Exists {
		return "(missing)"
	}
	content := strings.TrimRight(strings.ReplaceAll(a.Content, "\r\n", "\n"), "\n")
	rows := strings.Split(content, "\n")
	if n >= 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	out := strings.TrimRight(strings.Join(rows, "\n"), " \t\n")
	if out == "" {
		return "(empty)"
	}
	return out
}

// NextActions holds the prescriptive lines for each verdict class.
type NextActions struct {
	Ready         []string
	MissingInputs []string
	// NotReady covers BLOCKED, FAIL and any intermediate verdict.
	NotReady []string
}

// For picks the lines for v's class.
func (n NextActions) For(v domain.Verdict) []string {
	switch {
	case v.IsReadyClass():
		return n.Ready
	case v == domain.VerdictMissingInputs:
		return n.MissingInputs
	default:
		return n.NotReady
	}
}
