package pipeline

import (
	"path"
	"strings"
)

// Outputs holds the artifact path of every pipeline node under one out dir.
type Outputs struct {
	AdapterSessionStatus     string
	AdapterRealSessionReport string
	AdapterReadiness         string
	ConsumerCIAuth           string
	CIArtifacts              string
	WorkflowLint             string
	SupportBundle            string
	SupportTicketDraft       string
	ConsumerStartupUnblock   string
	ConsumerStartupTriage    string
	MockConsumerAB           string
	Phase5Blockers           string
	Phase5ClosureStatus      string
	ClosureRunReport         string
	ExternalHandoff          string
}

// ResolveOutputs places every artifact directly under outDir.
func ResolveOutputs(outDir string) Outputs {
	join := func(leaf string) string {
		dir := strings.TrimRight(outDir, "/")
		if dir == "" {
			return leaf
		}
		return path.Join(dir, leaf)
	}
	return Outputs{
		AdapterSessionStatus:     join("adapter-session-status.md"),
		AdapterRealSessionReport: join("adapter-real-session-report.md"),
		AdapterReadiness:         join("adapter-readiness.md"),
		ConsumerCIAuth:           join("consumer-ci-auth-check.md"),
		CIArtifacts:              join("consumer-ci-artifacts-report.md"),
		WorkflowLint:             join("consumer-workflow-lint-report.md"),
		SupportBundle:            join("consumer-startup-failure-support-bundle.md"),
		SupportTicketDraft:       join("consumer-support-ticket-draft.md"),
		ConsumerStartupUnblock:   join("consumer-startup-unblock-status.md"),
		ConsumerStartupTriage:    join("consumer-startup-triage-report.md"),
		MockConsumerAB:           join("mock-consumer-ab-report.md"),
		Phase5Blockers:           join("phase5-blockers-readiness.md"),
		Phase5ClosureStatus:      join("phase5-execution-closure-status.md"),
		ClosureRunReport:         join("phase5-execution-closure-run-report.md"),
		ExternalHandoff:          join("phase5-external-handoff.md"),
	}
}
