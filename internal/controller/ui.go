// Package controller provides output adapters for displaying analysis progress and results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "modscan.dev/pkg/modscan/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeRun
	ModeReport
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithListMode sets the UI to discovery listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithRunMode sets the UI to analysis run mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithReportMode sets the UI to report viewing mode.
func WithReportMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeReport
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how the workflow reports progress to the user.
// Implementations can use different output methods (simple text, TUI, etc).
// Display methods may be called from several goroutines at once.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayDiscovery(ctx context.Context, modules []m.Module, loose []m.Target)
	DisplayConcurrencyInfo(ctx context.Context, threads int, targets int)
	DisplayStartingAnalysis(ctx context.Context, target m.Target, workerID int)
	DisplayCompletedAnalysis(ctx context.Context, target m.Target, outcome m.Outcome)
	DisplayReportWritten(ctx context.Context, path m.Path, pages int)
	DisplaySummary(ctx context.Context, summary m.RunSummary)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// NewUI picks the interactive TUI on a terminal and plain line output otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}
