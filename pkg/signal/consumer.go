package signal

import (
	"regexp"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
)

// AuthReport holds the signals of a consumer CI auth check.
type AuthReport struct {
	Verdict          domain.Verdict
	MissingScopes    []string
	MissingUserScope bool
	BillingError     string
}

func (AuthReport) Kind() Kind { return KindAuth }

// ParseAuth reads the verdict, the missing scopes list and the billing probe error.
func ParseAuth(content string) AuthReport {
	r := AuthReport{MissingScopes: []string{}}
	if raw, ok := Field(content, "verdict"); ok {
		r.Verdict, _ = domain.ParseVerdict(raw)
	}
	if raw, ok := Field(content, "missing_scopes"); ok {
		r.MissingScopes = splitList(raw)
	}
	for _, scope := range r.MissingScopes {
		if scope == "user" {
			r.MissingUserScope = true
		}
	}
	if body, ok := Section(content, "Billing Probe"); ok {
		r.BillingError, _ = Field(body, "error")
	}
	return r
}

// splitList parses "a, b" lists; "(none)" and empty values yield an empty list.
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "(none)" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), "'`")
		if part != "" {
			out = append(out, part)
		}
	}
	return domain.Dedupe(out)
}

// SupportBundle holds the counters of a startup-failure support bundle.
type SupportBundle struct {
	StartupFailureRuns *int
	StartupStalledRuns *int
	JobsCount          *int
	ArtifactsCount     *int
	RunURLs            []string
}

func (SupportBundle) Kind() Kind { return KindSupportBundle }

var runURL = regexp.MustCompile(`https?://[^\s)>\]` + "`" + `]+/actions/runs/\d+`)

// ParseSupportBundle reads the counters and collects every run URL.
func ParseSupportBundle(content string) SupportBundle {
	b := SupportBundle{}
	if raw, ok := Field(content, "startup_failure_runs"); ok {
		b.StartupFailureRuns = ParseCount(raw)
	}
	if raw, ok := Field(content, "startup_stalled_runs"); ok {
		b.StartupStalledRuns = ParseCount(raw)
	}
	if raw, ok := Field(content, "jobs.total_count"); ok {
		b.JobsCount = ParseCount(raw)
	}
	if raw, ok := Field(content, "artifacts.total_count"); ok {
		b.ArtifactsCount = ParseCount(raw)
	}
	b.RunURLs = domain.Dedupe(runURL.FindAllString(normalize(content), -1))
	return b
}

// WorkflowLint holds the result of a workflow lint run.
type WorkflowLint struct {
	ExitCode      *int
	Findings      []string
	FindingsCount int
}

func (WorkflowLint) Kind() Kind { return KindWorkflowLint }

var lintFinding = regexp.MustCompile(`^\S+:\d+:\d+:\s+.+`)

// ParseWorkflowLint counts `path:line:col: message` lines under Raw Output.
// Without that section the whole report is scanned.
func ParseWorkflowLint(content string) WorkflowLint {
	l := WorkflowLint{Findings: []string{}}
	if raw, ok := Field(content, "exit_code"); ok {
		l.ExitCode = ParseCount(raw)
	}
	body, ok := Section(content, "Raw Output")
	if !ok {
		body = content
	}
	for _, line := range lines(body) {
		line = strings.TrimSpace(line)
		if lintFinding.MatchString(line) {
			l.Findings = append(l.Findings, line)
		}
	}
	l.FindingsCount = len(l.Findings)
	return l
}

// TriageReport holds the signals of a consumer startup triage report.
type TriageReport struct {
	Verdict             domain.Verdict
	RequiredFailedSteps []string
	// RequiredSkippedSteps never ran because a critical gate halted the plan.
	RequiredSkippedSteps []string
}

func (TriageReport) Kind() Kind { return KindTriage }

var requiredStep = regexp.MustCompile("(?:Required step|Resolve failed required step) `([^`]+)`( did not run)?")

// ParseTriage reads the verdict and the ids of required steps that failed
// or did not run.
func ParseTriage(content string) TriageReport {
	r := TriageReport{}
	if raw, ok := Field(content, "verdict"); ok {
		if v, _ := domain.ParseVerdict(raw); v == domain.VerdictReady || v == domain.VerdictBlocked {
			r.Verdict = v
		}
	}
	var failed, skipped []string
	for _, m := range requiredStep.FindAllStringSubmatch(normalize(content), -1) {
		id := strings.TrimSpace(m[1])
		switch {
		case id == "":
		case m[2] != "":
			skipped = append(skipped, id)
		default:
			failed = append(failed, id)
		}
	}
	r.RequiredFailedSteps = domain.Dedupe(failed)
	r.RequiredSkippedSteps = domain.Dedupe(skipped)
	return r
}

// ParseTokenScopes reads the `- Token scopes: 'a', 'b'` line printed by
// `gh auth status`.
func ParseTokenScopes(authStatusOutput string) []string {
	raw, ok := Field(authStatusOutput, "Token scopes")
	if !ok {
		return []string{}
	}
	return splitList(strings.ReplaceAll(raw, "'", ""))
}
