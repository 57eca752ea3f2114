package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	m "modscan.dev/pkg/modscan/internal/model"
)

const (
	recentOutcomes  = 8
	defaultBarWidth = 60
	defaultWidth    = 80
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with a Bubble Tea program running in the background.
// Display calls are forwarded to the program as messages.
type TUI struct {
	output io.Writer
	input  io.Reader

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI writing to output and reading keys from stdin.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	programOptions := []tea.ProgramOption{tea.WithOutput(t.output), tea.WithContext(ctx)}
	if t.input != nil {
		programOptions = append(programOptions, tea.WithInput(t.input))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.program = tea.NewProgram(newAnalysisModel(cfg.mode), programOptions...)
	t.done = make(chan struct{})

	program := t.program
	done := t.done

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			slog.Error("TUI stopped with error", "error", err)
		}
	}()

	return nil
}

// Close stops the program and waits for it to restore the terminal.
func (t *TUI) Close(_ context.Context) {
	program, done := t.current()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait(ctx context.Context) {
	_, done := t.current()
	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// DisplayDiscovery shows discovered modules and loose files.
func (t *TUI) DisplayDiscovery(_ context.Context, modules []m.Module, loose []m.Target) {
	t.send(discoveryMsg{modules: modules, loose: loose})
}

// DisplayConcurrencyInfo sets the total for the progress bar.
func (t *TUI) DisplayConcurrencyInfo(_ context.Context, threads int, targets int) {
	t.send(concurrencyMsg{threads: threads, targets: targets})
}

// DisplayStartingAnalysis marks a worker as busy with target.
func (t *TUI) DisplayStartingAnalysis(_ context.Context, target m.Target, workerID int) {
	t.send(startedMsg{target: target, worker: workerID})
}

// DisplayCompletedAnalysis records the outcome of one invocation.
func (t *TUI) DisplayCompletedAnalysis(_ context.Context, target m.Target, outcome m.Outcome) {
	t.send(completedMsg{target: target, outcome: outcome})
}

// DisplayReportWritten records a rendered document.
func (t *TUI) DisplayReportWritten(_ context.Context, path m.Path, pages int) {
	t.send(reportMsg{path: path, pages: pages})
}

// DisplaySummary shows the run summary.
func (t *TUI) DisplaySummary(_ context.Context, summary m.RunSummary) {
	t.send(summaryMsg{summary: summary})
}

func (t *TUI) current() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) {
	program, _ := t.current()
	if program == nil {
		return
	}

	program.Send(msg)
}

type discoveryMsg struct {
	modules []m.Module
	loose   []m.Target
}

type concurrencyMsg struct {
	threads int
	targets int
}

type startedMsg struct {
	target m.Target
	worker int
}

type completedMsg struct {
	target  m.Target
	outcome m.Outcome
}

type reportMsg struct {
	path  m.Path
	pages int
}

type summaryMsg struct {
	summary m.RunSummary
}

// analysisModel is the Bubble Tea model behind TUI.
type analysisModel struct {
	mode    StartMode
	spinner spinner.Model
	bar     progress.Model
	width   int

	modules []m.Module
	loose   []m.Target

	threads   int
	total     int
	completed int
	failures  int
	cached    int
	running   map[int]m.Target
	recent    []string
	reports   int

	summary  *m.RunSummary
	quitting bool
}

func newAnalysisModel(mode StartMode) analysisModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultBarWidth

	return analysisModel{
		mode:    mode,
		spinner: sp,
		bar:     bar,
		width:   defaultWidth,
		running: make(map[int]m.Target),
	}
}

func (am analysisModel) Init() tea.Cmd {
	return am.spinner.Tick
}

func (am analysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return am.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			am.width = msg.Width
		}

		if barWidth := msg.Width - 20; barWidth > 10 {
			am.bar.Width = min(barWidth, defaultBarWidth)
		}

		return am, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		am.spinner, cmd = am.spinner.Update(msg)

		return am, cmd
	case discoveryMsg:
		am.modules = msg.modules
		am.loose = msg.loose
	case concurrencyMsg:
		am.threads = msg.threads
		am.total += msg.targets
	case startedMsg:
		am.running[msg.worker] = msg.target
	case completedMsg:
		am.recordCompletion(msg)
	case reportMsg:
		am.reports++
	case summaryMsg:
		summary := msg.summary
		am.summary = &summary
	}

	return am, nil
}

//nolint:exhaustive // We only handle specific keys
func (am analysisModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		am.quitting = true
		return am, tea.Quit
	default:
	}

	if msg.String() == "q" {
		am.quitting = true
		return am, tea.Quit
	}

	return am, nil
}

func (am *analysisModel) recordCompletion(msg completedMsg) {
	am.completed++

	for worker, target := range am.running {
		if target.Path == msg.target.Path {
			delete(am.running, worker)
		}
	}

	label := successStyle.Render("ok")
	if msg.outcome.Failed() {
		am.failures++
		label = failureStyle.Render(fmt.Sprintf("error (%s)", msg.outcome.Cause))
	}

	if msg.outcome.Cached {
		am.cached++
		label += helpStyle.Render(" cached")
	}

	line := fmt.Sprintf("%s %s", truncate(msg.target.ModuleLabel()+"/"+msg.target.FileName(), am.width-30), label)

	am.recent = append(am.recent, line)
	if len(am.recent) > recentOutcomes {
		am.recent = am.recent[len(am.recent)-recentOutcomes:]
	}
}

func (am analysisModel) percent() float64 {
	if am.total == 0 {
		return 0
	}

	return float64(am.completed) / float64(am.total)
}

func (am analysisModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("modscan - static analysis"))
	b.WriteString("\n\n")

	switch am.mode {
	case ModeList:
		am.renderDiscovery(&b)
		b.WriteString(helpStyle.Render("  q: quit"))
		b.WriteString("\n")
	case ModeReport:
		am.renderSummary(&b)
		b.WriteString(helpStyle.Render("  q: quit"))
		b.WriteString("\n")
	case ModeRun:
		am.renderProgress(&b)
		am.renderSummary(&b)
	}

	return b.String()
}

func (am analysisModel) renderDiscovery(b *strings.Builder) {
	if len(am.modules) == 0 && len(am.loose) == 0 {
		b.WriteString("  No analyzable files found\n\n")
		return
	}

	b.WriteString(renderDiscoveryTable(am.modules, am.loose))
	b.WriteString("\n")
}

func (am analysisModel) renderProgress(b *strings.Builder) {
	header := fmt.Sprintf("Analyzing %d/%d file(s) with %d worker(s)", am.completed, am.total, am.threads)
	if am.summary == nil {
		header = am.spinner.View() + " " + header
	}

	b.WriteString("  " + header + "\n")
	b.WriteString("  " + am.bar.ViewAs(am.percent()) + "\n\n")

	workers := make([]int, 0, len(am.running))
	for worker := range am.running {
		workers = append(workers, worker)
	}

	sort.Ints(workers)

	for _, worker := range workers {
		target := am.running[worker]
		fmt.Fprintf(b, "  %s %s\n", activeStyle.Render(fmt.Sprintf("[%d]", worker)), target.FileName())
	}

	for _, line := range am.recent {
		b.WriteString("  " + line + "\n")
	}

	fmt.Fprintf(b, "\n  Failures: %d | Cached: %d | Reports: %d\n", am.failures, am.cached, am.reports)
}

func (am analysisModel) renderSummary(b *strings.Builder) {
	if am.summary == nil {
		return
	}

	b.WriteString("\n")
	b.WriteString(renderSummaryTable(*am.summary))

	if am.summary.FinalReport != "" {
		fmt.Fprintf(b, "  Final report: %s\n", am.summary.FinalReport)
	}
}

func truncate(value string, width int) string {
	if width <= 3 || runewidth.StringWidth(value) <= width {
		return value
	}

	return runewidth.Truncate(value, width, "...")
}
