package domain

import (
	"context"
	"time"
)

// Step is one external-process invocation planned for a pipeline run.
type Step struct {
	ID          string
	Description string
	// Target identifies the executable (a registered name, not a path).
	Target string
	Args   []string
	// Required steps must succeed for the run to exit cleanly.
	Required bool
	// CriticalGate steps halt the remaining plan when they fail.
	CriticalGate bool
	OutputFiles  []string
}

// StepState tracks a step through the runner.
type StepState string

const (
	StepPending   StepState = "PENDING"
	StepRunning   StepState = "RUNNING"
	StepSucceeded StepState = "SUCCEEDED"
	StepFailed    StepState = "FAILED"
)

// Execution records a finished step.
type Execution struct {
	Step     Step
	ExitCode int
	OK       bool
	Error    string
}

// StepEvent reports a step state change.
type StepEvent struct {
	Timestamp time.Time
	Step      Step
	State     StepState
	// ExitCode and Err are only set once the step finished.
	ExitCode int
	Err      string
}

// StepHooks observe step transitions.
type StepHooks struct {
	OnStepStart  func(context.Context, *StepEvent)
	OnStepFinish func(context.Context, *StepEvent)
}
