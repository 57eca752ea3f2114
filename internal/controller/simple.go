package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "modscan.dev/pkg/modscan/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayDiscovery prints a table of modules, loose files and their target counts.
func (s *SimpleUI) DisplayDiscovery(ctx context.Context, modules []m.Module, loose []m.Target) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderDiscoveryTable(modules, loose))
}

func renderDiscoveryTable(modules []m.Module, loose []m.Target) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Module", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	total := 0

	for _, module := range modules {
		table.Append([]string{module.Name, fmt.Sprintf("%d", len(module.Targets))})
		total += len(module.Targets)
	}

	for _, target := range loose {
		table.Append([]string{target.FileName() + " (loose)", "1"})
		total++
	}

	table.SetFooter([]string{
		fmt.Sprintf("Modules %d, loose files %d", len(modules), len(loose)),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, targets int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Analyzing %d file(s) with %d worker(s)\n", targets, threads)
}

// DisplayStartingAnalysis shows the file an analyzer invocation is starting for.
func (s *SimpleUI) DisplayStartingAnalysis(ctx context.Context, target m.Target, _ int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Analyzing %s (%s)\n", target.FileName(), target.ModuleLabel())
}

// DisplayCompletedAnalysis shows the outcome of one invocation.
func (s *SimpleUI) DisplayCompletedAnalysis(ctx context.Context, target m.Target, outcome m.Outcome) {
	if err := ctx.Err(); err != nil {
		return
	}

	status := formatOutcome(outcome)
	if outcome.Failed() {
		s.printf("Completed %s -> %s: %s\n", target.FileName(), status, firstLine(outcome.Diagnostic))
		return
	}

	s.printf("Completed %s -> %s\n", target.FileName(), status)
}

// DisplayReportWritten shows the path of a rendered report document.
func (s *SimpleUI) DisplayReportWritten(ctx context.Context, path m.Path, pages int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Report written: %s (%d page(s))\n", path, pages)
}

// DisplaySummary prints per-module failure counts and the final report path.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderSummaryTable(summary))

	if summary.FinalReport != "" {
		s.printf("Final report: %s\n", summary.FinalReport)
	}
}

func renderSummaryTable(summary m.RunSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Module", "Files", "Failures", "Cached"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	rows := append(append([]m.ModuleSummary{}, summary.Modules...), summary.LooseFiles...)
	for _, row := range rows {
		table.Append([]string{
			row.Name,
			fmt.Sprintf("%d", row.Targets),
			fmt.Sprintf("%d", row.Failures),
			fmt.Sprintf("%d", row.Cached),
		})
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", summary.Targets),
		fmt.Sprintf("%d", summary.Failures),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func formatOutcome(outcome m.Outcome) string {
	label := outcome.Kind.String()
	if outcome.Failed() {
		label = fmt.Sprintf("%s (%s)", label, outcome.Cause)
	}

	if outcome.Cached {
		label += " [cached]"
	}

	return label
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}

	return s
}
