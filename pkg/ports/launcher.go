package ports

import (
	"context"

	"github.com/aretw0/readiness/pkg/domain"
)

// Launcher runs the external process behind a Step.
//
// A non-zero exit is reported through the exit code with a nil error.
// A non-nil error means the process could not be started (or timed out);
// the exit code is then the value the runner should record.
type Launcher interface {
	Launch(ctx context.Context, step domain.Step) (exitCode int, err error)
}

// CaptureResult is the outcome of a probe command whose output is inspected.
type CaptureResult struct {
	ExitCode int
	Output   string
	Err      error
}

// OK reports whether the probe started and exited cleanly.
func (r CaptureResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Capturer runs a probe command and returns its combined output.
// Stages use it to query external CLIs whose output they parse.
type Capturer interface {
	Capture(ctx context.Context, target string, args ...string) CaptureResult
}
