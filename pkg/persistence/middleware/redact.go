package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/aretw0/readiness/pkg/ports"
)

// Mask replaces every redacted secret.
const Mask = "***"

// DefaultSecretPatterns match the credentials that probe output can leak
// into reports: code-hosting tokens and bearer headers.
var DefaultSecretPatterns = []string{
	`\bgh[pousr]_[A-Za-z0-9]{20,}\b`,
	`\bgithub_pat_[A-Za-z0-9_]{20,}\b`,
	`(?i)\b(authorization:\s*(?:bearer|token)\s+)[A-Za-z0-9._\-]{8,}`,
}

type redactMiddleware struct {
	next     ports.ArtifactStore
	patterns []*regexp.Regexp
}

// NewRedaction masks matches of patterns in every written artifact. When a
// pattern has a capture group, the first group is kept and the rest masked.
// Reads are passed through unchanged.
func NewRedaction(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, domain.NewConfigError("redact", "invalid pattern "+p+": "+err.Error())
		}
		patterns[i] = re
	}
	return func(next ports.ArtifactStore) ports.ArtifactStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Read(ctx context.Context, path string) (domain.Artifact, error) {
	return m.next.Read(ctx, path)
}

func (m *redactMiddleware) Write(ctx context.Context, path string, content string) error {
	return m.next.Write(ctx, path, Redact(content, m.patterns))
}

// Redact applies patterns to content.
func Redact(content string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if p.NumSubexp() == 0 {
			content = p.ReplaceAllLiteralString(content, Mask)
			continue
		}
		content = p.ReplaceAllString(content, "${1}"+Mask)
	}
	return content
}
