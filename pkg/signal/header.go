package signal

import (
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Header is the metadata block every report carries between its title and
// its first section.
type Header struct {
	Title       string            `mapstructure:"-"`
	GeneratedAt string            `mapstructure:"generated_at"`
	Verdict     string            `mapstructure:"verdict"`
	TargetRepo  string            `mapstructure:"target_repo"`
	Extra       map[string]string `mapstructure:",remain"`
}

// ParsedVerdict returns the header verdict when it is a known token.
func (h Header) ParsedVerdict() (domain.Verdict, bool) {
	return domain.ParseVerdict(h.Verdict)
}

// Metadata returns the `- key: value` pairs that precede the first `## ` heading.
func Metadata(content string) map[string]string {
	meta := make(map[string]string)
	for _, line := range lines(content) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			break
		}
		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(trimmed, "- "), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, seen := meta[key]; seen || key == "" {
			continue
		}
		meta[key] = strings.Trim(strings.TrimSpace(value), "`")
	}
	return meta
}

// ParseHeader decodes the metadata block. Malformed or absent metadata
// yields a zero Header.
func ParseHeader(content string) Header {
	var h Header
	for _, line := range lines(content) {
		if t := strings.TrimSpace(line); strings.HasPrefix(t, "# ") {
			h.Title = strings.TrimSpace(strings.TrimPrefix(t, "# "))
			break
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &h,
	})
	if err != nil {
		return h
	}
	if err := decoder.Decode(Metadata(content)); err != nil {
		return Header{Title: h.Title}
	}
	return h
}
