package signal

import (
	"regexp"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
)

// Probe labels used in the adapter session status report.
const (
	ProbeVerify       = "verify-adapter-hooks-runtime"
	ProbeStrictAssess = "assess-adapter-hooks-session"
	ProbeAnyAssess    = "assess-adapter-hooks-session:any"
)

// AssessmentPassMarker is printed by a session assessment that passed.
const AssessmentPassMarker = "session-assessment=PASS"

// Field labels shared by the adapter real-session and readiness reports.
const (
	LabelValidationResult = "Validation result"
	LabelReTestRequired   = "Re-test required"
	LabelNodeNotFound     = "Any `bash: node: command not found`"
)

// AdapterStatus holds the signals of an adapter session status report.
type AdapterStatus struct {
	Verdict              domain.Verdict
	VerifyExitCode       *int
	StrictExitCode       *int
	AnyExitCode          *int
	StrictAssessmentPass bool
	AnyAssessmentPass    bool
}

func (AdapterStatus) Kind() Kind { return KindAdapterStatus }

// ParseAdapterStatus extracts probe exit codes from the command table and
// assessment results from each probe's output block.
func ParseAdapterStatus(content string) AdapterStatus {
	s := AdapterStatus{}
	if raw, ok := Field(content, "verdict"); ok {
		s.Verdict, _ = domain.ParseVerdict(raw)
	}

	for _, row := range TableRows(content) {
		if len(row) < 3 {
			continue
		}
		switch row[0] {
		case ProbeVerify:
			s.VerifyExitCode = ParseCount(row[2])
		case ProbeStrictAssess:
			s.StrictExitCode = ParseCount(row[2])
		case ProbeAnyAssess:
			s.AnyExitCode = ParseCount(row[2])
		}
	}

	if body, ok := Subsection(content, ProbeStrictAssess); ok {
		s.StrictAssessmentPass = strings.Contains(body, AssessmentPassMarker)
	}
	if body, ok := Subsection(content, ProbeAnyAssess); ok {
		s.AnyAssessmentPass = strings.Contains(body, AssessmentPassMarker)
	}
	return s
}

// AdapterSession holds the signals of an adapter real-session report.
// The adapter readiness report repeats the same lines, plus its own verdict.
type AdapterSession struct {
	Verdict             domain.Verdict
	ValidationResult    domain.Verdict
	ReTestRequired      *bool
	NodeCommandNotFound bool
}

func (AdapterSession) Kind() Kind { return KindAdapterSession }

var nodeNotFound = regexp.MustCompile(`(?i)node:\s*command not found`)

// ParseAdapterSession extracts the validation result lines. Only PASS and
// FAIL are accepted as a validation result.
func ParseAdapterSession(content string) AdapterSession {
	s := AdapterSession{}
	if raw, ok := Field(content, "verdict"); ok {
		s.Verdict, _ = domain.ParseVerdict(raw)
	}
	if raw, ok := Field(content, LabelValidationResult); ok {
		if v, _ := domain.ParseVerdict(raw); v == domain.VerdictPass || v == domain.VerdictFail {
			s.ValidationResult = v
		}
	}
	if raw, ok := Field(content, LabelReTestRequired); ok {
		s.ReTestRequired = ParseYesNo(raw)
	}

	raw, _ := Field(content, LabelNodeNotFound)
	if b := ParseYesNo(raw); b != nil {
		s.NodeCommandNotFound = *b
	} else {
		s.NodeCommandNotFound = nodeNotFound.MatchString(content)
	}
	return s
}

// RuntimeSignals are observations scanned from raw hook runtime logs.
type RuntimeSignals struct {
	PreWriteObserved      bool
	PostWriteObserved     bool
	NodeBinResolved       bool
	NodeCommandMissing    bool
	NormalWriteTriggered  bool
	BlockedWriteTriggered bool
}

func (RuntimeSignals) Kind() Kind { return KindRuntimeLogs }

var (
	nodeBinMarker = regexp.MustCompile(`node_bin\s*=`)
	nodeMissing   = regexp.MustCompile(`(?:bash:\s*)?node:\s*command not found`)
)

// ParseRuntime scans the combined log corpus for hook events. Write
// decisions are only read from the hook log itself.
func ParseRuntime(corpus, hookLog string) RuntimeSignals {
	return RuntimeSignals{
		PreWriteObserved:      strings.Contains(corpus, "pre_write_code"),
		PostWriteObserved:     strings.Contains(corpus, "post_write_code"),
		NodeBinResolved:       nodeBinMarker.MatchString(corpus),
		NodeCommandMissing:    nodeMissing.MatchString(corpus),
		NormalWriteTriggered:  strings.Contains(hookLog, "ALLOWED:"),
		BlockedWriteTriggered: strings.Contains(hookLog, "BLOCKED:"),
	}
}
