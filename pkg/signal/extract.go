package signal

import (
	"regexp"
	"sort"

	"github.com/aretw0/readiness/pkg/domain"
)

// Kind names an artifact dialect.
type Kind string

const (
	KindAdapterStatus    Kind = "adapter-session-status"
	KindAdapterSession   Kind = "adapter-real-session"
	KindAdapterReadiness Kind = "adapter-readiness"
	KindRuntimeLogs      Kind = "runtime-logs"
	KindAuth             Kind = "consumer-ci-auth"
	KindSupportBundle    Kind = "support-bundle"
	KindWorkflowLint     Kind = "workflow-lint"
	KindTriage           Kind = "consumer-startup-triage"
	KindVerdict          Kind = "verdict"
)

// Signals is the typed record extracted from one artifact.
type Signals interface {
	Kind() Kind
}

// VerdictOnly carries just the verdict of an upstream report.
// Raw keeps the token as written, so unrecognized verdicts still surface.
type VerdictOnly struct {
	Verdict domain.Verdict
	Raw     string
}

func (VerdictOnly) Kind() Kind { return KindVerdict }

// OrUnknown renders the raw verdict, or "unknown" when none was found.
func (v VerdictOnly) OrUnknown() string {
	if v.Raw == "" {
		return Unknown
	}
	return v.Raw
}

var verdictToken = regexp.MustCompile(`^[A-Z_]+`)

// ParseVerdictOnly reads the verdict from the metadata block, falling back
// to the first `- verdict:` line anywhere in the report.
func ParseVerdictOnly(content string) VerdictOnly {
	raw := ParseHeader(content).Verdict
	if raw == "" {
		raw, _ = Field(content, "verdict")
	}
	raw = verdictToken.FindString(raw)
	v, _ := domain.ParseVerdict(raw)
	return VerdictOnly{Verdict: v, Raw: raw}
}

var extractors = map[Kind]func(string) Signals{
	KindAdapterStatus:    func(c string) Signals { return ParseAdapterStatus(c) },
	KindAdapterSession:   func(c string) Signals { return ParseAdapterSession(c) },
	KindAdapterReadiness: func(c string) Signals { return ParseAdapterSession(c) },
	KindRuntimeLogs:      func(c string) Signals { return ParseRuntime(c, c) },
	KindAuth:             func(c string) Signals { return ParseAuth(c) },
	KindSupportBundle:    func(c string) Signals { return ParseSupportBundle(c) },
	KindWorkflowLint:     func(c string) Signals { return ParseWorkflowLint(c) },
	KindTriage:           func(c string) Signals { return ParseTriage(c) },
	KindVerdict:          func(c string) Signals { return ParseVerdictOnly(c) },
}

// Extract dispatches content to the extractor for kind.
// It returns nil for an unknown kind.
func Extract(kind Kind, content string) Signals {
	fn, ok := extractors[kind]
	if !ok {
		return nil
	}
	return fn(content)
}

// Kinds lists the supported artifact kinds, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(extractors))
	for k := range extractors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
