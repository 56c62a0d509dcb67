// Package report renders stage state as a deterministic markdown artifact.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/readiness/pkg/domain"
)

// TimestampLayout is the ISO-8601 UTC layout of generated_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultSignalsTitle heads the parsed signals section unless a stage renames it.
const DefaultSignalsTitle = "Parsed Signals"

// None is the sentinel rendered for an empty list.
const None = "none"

// KV is one `- key: value` line.
type KV struct {
	Key   string
	Value string
}

// Section is a stage-specific block rendered between the signals and the
// outcome lists. Lines are emitted verbatim.
type Section struct {
	Title string
	Lines []string
}

// Document is everything a stage renders.
type Document struct {
	Title       string
	GeneratedAt time.Time
	// Metadata is rendered after generated_at and before verdict.
	Metadata     []KV
	Inputs       []KV
	SignalsTitle string
	Signals      []KV
	Sections     []Section
	Outcome      domain.Outcome
	NextActions  []string
}

// Render serializes d. The same Document always renders the same bytes.
func Render(d Document) string {
	var b builder

	b.line("# " + d.Title)
	b.blank()
	b.kv(KV{"generated_at", d.GeneratedAt.UTC().Format(TimestampLayout)})
	for _, m := range d.Metadata {
		b.kv(m)
	}
	b.kv(KV{"verdict", d.Outcome.Verdict.OrUnknown()})
	b.blank()

	b.kvSection("Inputs", d.Inputs)

	title := d.SignalsTitle
	if title == "" {
		title = DefaultSignalsTitle
	}
	b.kvSection(title, d.Signals)

	for _, s := range d.Sections {
		b.heading(s.Title)
		if len(s.Lines) == 0 {
			b.line("- " + None)
		}
		for _, l := range s.Lines {
			b.line(l)
		}
		b.blank()
	}

	b.list("Missing Inputs", d.Outcome.MissingInputs)
	b.list("Blockers", d.Outcome.Blockers)
	b.list("Warnings", d.Outcome.Warnings)
	b.list("Next Actions", d.NextActions)

	return b.String()
}

type builder struct {
	lines []string
}

func (b *builder) line(s string) {
	b.lines = append(b.lines, strings.TrimRight(s, " \t\r"))
}

func (b *builder) blank() { b.lines = append(b.lines, "") }

func (b *builder) heading(title string) {
	b.line("## " + title)
	b.blank()
}

func (b *builder) kv(kv KV) {
	v := kv.Value
	if v == "" {
		v = domain.Unknown
	}
	b.line(fmt.Sprintf("- %s: %s", kv.Key, v))
}

func (b *builder) kvSection(title string, kvs []KV) {
	b.heading(title)
	if len(kvs) == 0 {
		b.line("- " + None)
	}
	for _, kv := range kvs {
		b.kv(kv)
	}
	b.blank()
}

func (b *builder) list(title string, items []string) {
	b.heading(title)
	b.bullets(items)
	b.blank()
}

func (b *builder) bullets(items []string) {
	if len(items) == 0 {
		b.line("- " + None)
		return
	}
	for _, it := range items {
		b.line("- " + it)
	}
}

func (b *builder) String() string {
	end := len(b.lines)
	for end > 0 && b.lines[end-1] == "" {
		end--
	}
	return strings.Join(b.lines[:end], "\n") + "\n"
}
