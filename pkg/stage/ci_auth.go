package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/aretw0/readiness/pkg/verdict"
)

// IDConsumerCIAuth is the consumer CI auth check stage.
const IDConsumerCIAuth = "consumer-ci-auth"

// GHTarget is the registered name of the code-hosting CLI.
const GHTarget = "gh"

// RequiredScopes are the token scopes the consumer pipeline needs.
var RequiredScopes = []string{"repo", "workflow", "user"}

// CIAuthOptions configures the consumer CI auth check.
type CIAuthOptions struct {
	Output string
	Repo   string
}

type probeResult struct {
	OK     bool
	Output string
	Error  string
}

func probeFrom(res ports.CaptureResult, wantJSON bool) probeResult {
	if !res.OK() {
		msg := ""
		if res.Err != nil {
			msg = res.Err.Error()
		} else {
			msg = fmt.Sprintf("exit status %d: %s", res.ExitCode, strings.TrimSpace(res.Output))
		}
		return probeResult{Error: strings.Join(strings.Fields(msg), " ")}
	}
	if wantJSON && !json.Valid([]byte(strings.TrimSpace(res.Output))) {
		return probeResult{Error: "failed to parse JSON output"}
	}
	return probeResult{OK: true, Output: res.Output}
}

type ciAuthSignals struct {
	Auth          probeResult
	Permissions   probeResult
	Billing       probeResult
	Scopes        []string
	MissingScopes []string
}

// ConsumerCIAuth probes the code-hosting CLI for auth, token scopes, Actions
// permissions and billing access on the target repository.
func ConsumerCIAuth(opts CIAuthOptions) *Definition[ciAuthSignals] {
	owner, _, _ := strings.Cut(opts.Repo, "/")

	return &Definition[ciAuthSignals]{
		Name:   IDConsumerCIAuth,
		Title:  "Consumer CI Auth Check",
		Output: opts.Output,
		Extract: func(ctx context.Context, rt *Runtime, _ Inputs) (ciAuthSignals, error) {
			if owner == "" {
				return ciAuthSignals{}, domain.NewConfigError("repo", "expected owner/repo format")
			}
			s := ciAuthSignals{
				Auth:        probeFrom(rt.Capture(ctx, GHTarget, "auth", "status"), false),
				Permissions: probeFrom(rt.Capture(ctx, GHTarget, "api", "repos/"+opts.Repo+"/actions/permissions"), true),
				Billing:     probeFrom(rt.Capture(ctx, GHTarget, "api", "users/"+owner+"/settings/billing/actions"), true),
				Scopes:      []string{},
			}
			if s.Auth.OK {
				s.Scopes = signal.ParseTokenScopes(s.Auth.Output)
			}
			s.MissingScopes = []string{}
			for _, scope := range RequiredScopes {
				if !slices.Contains(s.Scopes, scope) {
					s.MissingScopes = append(s.MissingScopes, scope)
				}
			}
			return s, nil
		},
		Resolver: verdict.Resolver[ciAuthSignals]{
			Rules: []verdict.Rule[ciAuthSignals]{
				verdict.Whenf(func(s ciAuthSignals) bool { return !s.Auth.OK },
					func(s ciAuthSignals) string { return "GitHub CLI auth status failed: " + s.Auth.Error }),
				verdict.Whenf(func(s ciAuthSignals) bool { return len(s.MissingScopes) > 0 },
					func(s ciAuthSignals) string { return "Missing token scopes: " + strings.Join(s.MissingScopes, ", ") }),
				verdict.Whenf(func(s ciAuthSignals) bool { return !s.Permissions.OK },
					func(s ciAuthSignals) string { return "Actions permissions probe failed: " + s.Permissions.Error }),
				verdict.Whenf(func(s ciAuthSignals) bool { return !s.Billing.OK },
					func(s ciAuthSignals) string { return "Billing probe failed: " + s.Billing.Error }),
			},
		},
		Present: func(s ciAuthSignals, _ Inputs, _ domain.Outcome) Presentation {
			return Presentation{
				Metadata: []report.KV{
					{Key: "target_repo", Value: "`" + opts.Repo + "`"},
					{Key: "required_scopes", Value: strings.Join(RequiredScopes, ", ")},
					{Key: "detected_scopes", Value: listOrNone(s.Scopes)},
					{Key: "missing_scopes", Value: listOrNone(s.MissingScopes)},
				},
				Signals: []report.KV{
					{Key: "auth_status", Value: okLabel(s.Auth.OK)},
					{Key: "actions_permissions_probe", Value: okLabel(s.Permissions.OK)},
					{Key: "billing_probe", Value: okLabel(s.Billing.OK)},
				},
				Sections: []report.Section{
					{Title: "GH Auth Status", Lines: probeLines(s.Auth, "text")},
					{Title: "Repository Actions Permissions Probe", Lines: probeLines(s.Permissions, "json")},
					{Title: "Billing Probe", Lines: probeLines(s.Billing, "json")},
				},
			}
		},
		Next: report.NextActions{
			Ready: []string{"No remediation required."},
			NotReady: []string{
				"Authenticate GitHub CLI: `gh auth login`.",
				"Refresh auth adding `user` scope: `gh auth refresh -h github.com -s user`.",
				"Verify repository Actions settings: `gh api repos/<owner>/<repo>/actions/permissions`.",
				"Re-run `readiness consumer-ci-auth` after remediation.",
			},
		},
	}
}

func probeLines(p probeResult, lang string) []string {
	if !p.OK {
		return []string{"- error: " + p.Error}
	}
	return report.Fence(lang, p.Output)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func okLabel(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAILED"
}
