package model

import "time"

// OutcomeKind tells which variant of Outcome holds.
type OutcomeKind int

const (
	// Success means the analyzer exited with status zero and stdout was captured.
	Success OutcomeKind = iota
	// Failure means the analyzer failed, could not be started, or produced no output.
	Failure
)

// String returns a human-readable representation of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// FailureCause narrows down why an Outcome is a Failure.
type FailureCause int

const (
	// CauseNone is set on successful outcomes.
	CauseNone FailureCause = iota
	// CauseAnalyzer means the analyzer exited with a non-zero status.
	CauseAnalyzer
	// CauseLaunch means the analyzer process could not be started.
	CauseLaunch
	// CauseNoOutput means the process succeeded but its stdout was not captured.
	CauseNoOutput
	// CauseTimeout means the invocation exceeded the configured timeout.
	CauseTimeout
	// CauseStderr means the analyzer exited cleanly but wrote to stderr in strict mode.
	CauseStderr
)

// String returns a human-readable representation of the cause.
func (c FailureCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseAnalyzer:
		return "analyzer"
	case CauseLaunch:
		return "launch"
	case CauseNoOutput:
		return "no-output"
	case CauseTimeout:
		return "timeout"
	case CauseStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// LaunchExitCode is recorded when no process exit status exists.
const LaunchExitCode = -1

// NoOutputDiagnostic is the diagnostic used when stdout was not captured.
const NoOutputDiagnostic = "no output"

// Outcome is the result of analyzing one target. Text is only populated on
// Success and Diagnostic only on Failure.
type Outcome struct {
	Kind       OutcomeKind
	Text       string
	Diagnostic string
	Cause      FailureCause
	ExitCode   int
	Cached     bool
	Duration   time.Duration
}

// NewSuccess builds a Success outcome.
func NewSuccess(text string) Outcome {
	return Outcome{Kind: Success, Text: text, Cause: CauseNone}
}

// NewFailure builds a Failure outcome.
func NewFailure(cause FailureCause, diagnostic string, exitCode int) Outcome {
	return Outcome{Kind: Failure, Diagnostic: diagnostic, Cause: cause, ExitCode: exitCode}
}

// Failed reports whether the outcome is a Failure.
func (o Outcome) Failed() bool {
	return o.Kind == Failure
}
