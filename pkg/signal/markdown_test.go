package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	content := "# Title\r\n\r\n- generated_at: 2026-01-02T03:04:05Z  \r\n- verdict: BLOCKED\r\n  - nested: value\r\n"

	v, ok := Field(content, "verdict")
	require.True(t, ok)
	assert.Equal(t, "BLOCKED", v)

	v, ok = Field(content, "generated_at")
	require.True(t, ok)
	assert.Equal(t, "2026-01-02T03:04:05Z", v, "trailing whitespace and CR are dropped")

	v, ok = Field(content, "nested")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = Field(content, "absent")
	assert.False(t, ok)
}

func TestSection(t *testing.T) {
	content := `# R

## Inputs

- a

## Blockers

- one
- two
` + "```text\n## not a heading\n```\n" + `
### Detail

- three

## Next Actions

- go
`

	body, ok := Section(content, "Blockers")
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two", "three"}, Bullets(body))
	assert.Contains(t, body, "## not a heading", "headings inside fences do not end the section")

	sub, ok := Subsection(content, "Detail")
	require.True(t, ok)
	assert.Equal(t, []string{"three"}, Bullets(sub))

	_, ok = Section(content, "Warnings")
	assert.False(t, ok)
}

func TestTableRows(t *testing.T) {
	content := `| step | command | exit_code |
| --- | --- | --- |
| verify | ` + "`npm run verify`" + ` | 0 |
not a row
|a|b|`

	rows := TableRows(content)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"step", "command", "exit_code"}, rows[0])
	assert.Equal(t, []string{"verify", "npm run verify", "0"}, rows[1])
	assert.Equal(t, []string{"a", "b"}, rows[2])
}

func TestFencedBlocks(t *testing.T) {
	content := "intro\n```text\nline 1\nline 2\n```\nmiddle\n```\nunterminated"
	blocks := FencedBlocks(content)
	require.Len(t, blocks, 2)
	assert.Equal(t, "line 1\nline 2", blocks[0])
	assert.Equal(t, "unterminated", blocks[1])
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"3", Ptr(3)},
		{" 0 ", Ptr(0)},
		{"`12`", Ptr(12)},
		{"unknown", nil},
		{"-1", nil},
		{"1.5", nil},
		{"", nil},
		{"NaN", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.raw))
		})
	}
}

func TestCountRoundTrip(t *testing.T) {
	three := Ptr(3)
	line := "- startup_failure_runs: " + FormatCount(three) + "\n"
	raw, ok := Field(line, "startup_failure_runs")
	require.True(t, ok)
	assert.Equal(t, three, ParseCount(raw))

	line = "- startup_failure_runs: " + FormatCount(nil) + "\n"
	raw, ok = Field(line, "startup_failure_runs")
	require.True(t, ok)
	assert.Nil(t, ParseCount(raw), "unknown must never parse as zero")
}

func TestParseYesNo(t *testing.T) {
	assert.Equal(t, Ptr(true), ParseYesNo("yes"))
	assert.Equal(t, Ptr(false), ParseYesNo(" NO "))
	assert.Nil(t, ParseYesNo("maybe"))
	assert.Equal(t, "YES", YesNo(true))
	assert.Equal(t, "NO", YesNo(false))
}
