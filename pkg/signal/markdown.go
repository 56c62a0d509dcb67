package signal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
)

// normalize folds CRLF to LF so every scanner sees one line ending.
func normalize(content string) string {
	return strings.ReplaceAll(content, "\r\n", "\n")
}

func lines(content string) []string {
	return strings.Split(normalize(content), "\n")
}

// Field returns the value of the first `- key: value` line whose key matches exactly.
// Leading indentation and trailing whitespace are ignored.
func Field(content, key string) (string, bool) {
	prefix := "- " + key + ":"
	for _, line := range lines(content) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
	}
	return "", false
}

// Section returns the body of the `## heading` section, without the heading line.
// The body ends at the next heading of the same or higher level.
func Section(content, heading string) (string, bool) {
	return sectionAt(content, "## ", heading)
}

// Subsection returns the body of a `### heading` block.
func Subsection(content, heading string) (string, bool) {
	return sectionAt(content, "### ", heading)
}

func sectionAt(content, marker, heading string) (string, bool) {
	all := lines(content)
	level := len(strings.TrimSpace(marker))
	start := -1
	for i, line := range all {
		if strings.TrimRight(line, " \t") == marker+heading {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(all)
	inFence := false
	for i := start; i < len(all); i++ {
		if strings.HasPrefix(strings.TrimSpace(all[i]), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if n := headingLevel(all[i]); n > 0 && n <= level {
			end = i
			break
		}
	}
	return strings.Join(all[start:end], "\n"), true
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// Bullets returns the `- item` lines of content, outside fenced blocks.
func Bullets(content string) []string {
	var out []string
	inFence := false
	for _, line := range lines(content) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		out = append(out, strings.TrimSpace(strings.TrimPrefix(trimmed, "- ")))
	}
	return out
}

var tableSeparator = regexp.MustCompile(`^\|?\s*:?-{3,}`)

// TableRows returns the cells of every `|`-delimited row, skipping separator rows.
// The header row is included; callers match on cell content.
func TableRows(content string) [][]string {
	var rows [][]string
	for _, line := range lines(content) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") || tableSeparator.MatchString(trimmed) {
			continue
		}
		trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "|"), "|")
		cells := strings.Split(trimmed, "|")
		for i := range cells {
			cells[i] = strings.Trim(strings.TrimSpace(cells[i]), "`")
		}
		rows = append(rows, cells)
	}
	return rows
}

// FencedBlocks returns the bodies of every ``` fenced block, in order.
// An unterminated block runs to the end of content.
func FencedBlocks(content string) []string {
	var (
		blocks  []string
		current []string
		open    bool
	)
	for _, line := range lines(content) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if open {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			open = !open
			continue
		}
		if open {
			current = append(current, line)
		}
	}
	if open {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// ParseCount parses a non-negative integer. Anything else, including
// "unknown", yields nil.
func ParseCount(raw string) *int {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "`"))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// FormatCount renders an optional count, using "unknown" for nil.
func FormatCount(n *int) string {
	if n == nil {
		return Unknown
	}
	return strconv.Itoa(*n)
}

// ParseYesNo accepts YES/NO (any case). Anything else yields nil.
func ParseYesNo(raw string) *bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES":
		v := true
		return &v
	case "NO":
		v := false
		return &v
	}
	return nil
}

// YesNo renders b as YES or NO.
func YesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// Unknown is the placeholder rendered for absent signal values.
const Unknown = domain.Unknown

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
