package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	m "modscan.dev/pkg/modscan/internal/model"
)

// ProcessResult is the raw result of one finished process.
type ProcessResult struct {
	ExitCode int
	// Stdout is nil when standard output was not captured. An empty, non-nil
	// slice means the process wrote nothing.
	Stdout []byte
	Stderr []byte
}

// ProcessRunner abstracts subprocess execution so the analyzer invoker can be
// tested without spawning real processes.
type ProcessRunner interface {
	// Run executes name with args and waits for it to exit. A non-zero exit
	// status is reported through ProcessResult, not as an error. The error is
	// reserved for launch failures and context cancellation.
	Run(ctx context.Context, name string, args ...string) (ProcessResult, error)
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed, e.g. when a grandchild keeps stdout open.
const waitDelay = 2 * time.Second

// LocalProcessRunner provides a concrete implementation using os/exec.
// Processes start in the current working directory.
type LocalProcessRunner struct{}

// NewLocalProcessRunner constructs a LocalProcessRunner.
func NewLocalProcessRunner() *LocalProcessRunner {
	return &LocalProcessRunner{}
}

// ResolveExecutable finds name the way Run will: names with a path separator
// are used as is, bare names are looked up in PATH.
func ResolveExecutable(name string) (m.Path, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}

	return m.Path(path), nil
}

// Run executes the command and captures stdout and stderr separately.
func (a *LocalProcessRunner) Run(ctx context.Context, name string, args ...string) (ProcessResult, error) {
	// #nosec G204 - the analyzer command is operator configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ProcessResult{
		Stdout: append([]byte{}, stdout.Bytes()...),
		Stderr: append([]byte{}, stderr.Bytes()...),
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ProcessResult{ExitCode: m.LaunchExitCode}, ctxErr
	}

	return ProcessResult{ExitCode: m.LaunchExitCode}, fmt.Errorf("start %s: %w", name, err)
}
