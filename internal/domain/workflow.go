// Package domain contains the static analysis workflow: discovering targets,
// invoking the analyzer, collecting results and producing paginated reports.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"modscan.dev/pkg/modscan/internal/adapter"
	"modscan.dev/pkg/modscan/internal/controller"
	m "modscan.dev/pkg/modscan/internal/model"
	"modscan.dev/pkg/modscan/internal/render"
)

const (
	stateDirName       = ".modscan"
	cacheDirName       = "cache"
	fragmentLogName    = "fragments.gob"
	summaryFileName    = "run_summary.yaml"
	finalReportBase    = "final_static_analysis_report"
	reportNameSuffix   = "_analysis_report"
	reportTitle        = "Static Analysis Report"
	defaultWorkerCount = 1
)

// DiscoveryArgs selects the source tree and the files analyzed in it.
type DiscoveryArgs struct {
	SourceRoot m.Path
	Output     m.Path
	Exclude    []string
	Extension  string
}

// ListArgs contains the arguments for listing analysis targets.
type ListArgs struct {
	DiscoveryArgs
}

// AnalyzeArgs contains the arguments for a full analysis run.
type AnalyzeArgs struct {
	DiscoveryArgs
	Analyzer     InvokerConfig
	Report       ReportOptions
	UseCache     bool
	Threads      int
	LooseReports bool
}

// ReportArgs contains the arguments for re-rendering the final report of a
// previous run.
type ReportArgs struct {
	Output m.Path
	Report ReportOptions
}

// Workflow defines the user-facing operations.
type Workflow interface {
	Analyze(ctx context.Context, args AnalyzeArgs) error
	List(ctx context.Context, args ListArgs) error
	Report(ctx context.Context, args ReportArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ResultStore
	adapter.ProcessRunner
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	resultStore adapter.ResultStore,
	processRunner adapter.ProcessRunner,
	ui controller.UI,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ResultStore:     resultStore,
		ProcessRunner:   processRunner,
		UI:              ui,
	}
}

// List discovers modules and loose files and displays them.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	walker, err := NewWalker(w.SourceFSAdapter, args.walkerConfig())
	if err != nil {
		return err
	}

	modules, err := walker.DiscoverModules(ctx, args.SourceRoot)
	if err != nil {
		return fmt.Errorf("discover modules: %w", err)
	}

	loose, err := walker.DiscoverLooseFiles(ctx, args.SourceRoot)
	if err != nil {
		return fmt.Errorf("discover loose files: %w", err)
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	w.DisplayDiscovery(ctx, modules, loose)

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// Analyze runs the whole pipeline: modules first, then loose files, then the
// final aggregate report and the run summary.
func (w *workflow) Analyze(ctx context.Context, args AnalyzeArgs) error {
	run, err := w.prepareRun(ctx, args)
	if err != nil {
		return err
	}
	defer run.aggregator.Close()

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	if err := w.analyzeModules(ctx, run); err != nil {
		return err
	}

	if err := w.analyzeLooseFiles(ctx, run); err != nil {
		return err
	}

	lines, err := run.aggregator.Lines()
	if err != nil {
		return err
	}

	finalPath, err := run.reports.write(ctx, finalReportBase, reportTitle, lines)
	if err != nil {
		return err
	}

	run.summary.FinalReport = finalPath

	if err := w.SaveSummary(ctx, w.summaryPath(ctx, args.Output), run.summary); err != nil {
		slog.Error("Failed to write run summary", "error", err)
		return fmt.Errorf("save summary: %w", err)
	}

	slog.Info("Analysis run finished",
		"targets", run.summary.Targets,
		"failures", run.summary.Failures,
		"fragments", run.aggregator.Len(),
	)
	w.DisplaySummary(ctx, run.summary)

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)

	return nil
}

// analysisRun holds the state of one Analyze call.
type analysisRun struct {
	args       AnalyzeArgs
	walker     Walker
	invoker    Invoker
	collector  Collector
	reports    *reportWriter
	aggregator *RunAggregator
	summary    m.RunSummary
}

func (w *workflow) prepareRun(ctx context.Context, args AnalyzeArgs) (*analysisRun, error) {
	renderer, err := render.New(args.Report.Format, render.Options{FontPath: args.Report.FontPath})
	if err != nil {
		return nil, err
	}

	walker, err := NewWalker(w.SourceFSAdapter, args.walkerConfig())
	if err != nil {
		return nil, err
	}

	if err := w.MkdirAll(ctx, args.Output); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var cache adapter.OutcomeCache
	if args.UseCache {
		cache = adapter.NewDiskOutcomeCache(w.JoinPath(ctx, string(args.Output), stateDirName, cacheDirName))
	}

	invoker, err := NewInvoker(w.ProcessRunner, w.SourceFSAdapter, cache, args.Analyzer)
	if err != nil {
		return nil, err
	}

	aggregator, err := NewRunAggregator(w.fragmentLogPath(ctx, args.Output))
	if err != nil {
		return nil, err
	}

	root, err := w.AbsPath(ctx, args.SourceRoot)
	if err != nil {
		root = args.SourceRoot
	}

	return &analysisRun{
		args:       args,
		walker:     walker,
		invoker:    invoker,
		collector:  NewCollector(w.ResultStore, args.Output),
		reports:    w.newReportWriter(args.Output, renderer, args.Report),
		aggregator: aggregator,
		summary: m.RunSummary{
			SourceRoot: root,
			Analyzer:   args.Analyzer.Analyzer.Executable,
			Format:     renderer.Extension(),
			Modules:    []m.ModuleSummary{},
			LooseFiles: []m.ModuleSummary{},
		},
	}, nil
}

func (w *workflow) analyzeModules(ctx context.Context, run *analysisRun) error {
	modules, err := run.walker.DiscoverModules(ctx, run.args.SourceRoot)
	if err != nil {
		return fmt.Errorf("discover modules: %w", err)
	}

	total := 0
	for _, module := range modules {
		total += len(module.Targets)
	}

	threads := workerCount(run.args.Threads)
	w.DisplayConcurrencyInfo(ctx, threads, total)

	// Each module is finished (sidecars and report on disk) before the next
	// one starts.
	for _, module := range modules {
		outcomes, err := w.analyzeTargets(ctx, run.invoker, module.Targets, threads)
		if err != nil {
			return err
		}

		fragments, summary, err := w.collectAll(ctx, run, module.Targets, outcomes)
		if err != nil {
			return err
		}

		summary.Name = module.Name

		summary.Report, err = run.reports.write(ctx, module.Name+reportNameSuffix, moduleTitle(module.Name), m.FragmentLines(fragments))
		if err != nil {
			return err
		}

		run.summary.Modules = append(run.summary.Modules, summary)
	}

	return nil
}

func (w *workflow) analyzeLooseFiles(ctx context.Context, run *analysisRun) error {
	loose, err := run.walker.DiscoverLooseFiles(ctx, run.args.SourceRoot)
	if err != nil {
		return fmt.Errorf("discover loose files: %w", err)
	}

	if len(loose) == 0 {
		return nil
	}

	threads := workerCount(run.args.Threads)
	w.DisplayConcurrencyInfo(ctx, threads, len(loose))

	for i, target := range loose {
		outcomes, err := w.analyzeTargets(ctx, run.invoker, loose[i:i+1], threads)
		if err != nil {
			return err
		}

		fragments, summary, err := w.collectAll(ctx, run, loose[i:i+1], outcomes)
		if err != nil {
			return err
		}

		summary.Name = target.FileName()

		if run.args.LooseReports {
			summary.Report, err = run.reports.write(ctx, target.FileName()+reportNameSuffix, moduleTitle(target.FileName()), m.FragmentLines(fragments))
			if err != nil {
				return err
			}
		}

		run.summary.LooseFiles = append(run.summary.LooseFiles, summary)
	}

	return nil
}

// analyzeTargets invokes the analyzer for every target on a bounded pool.
// Outcomes are stored by index so the result order is the discovery order
// regardless of completion order.
func (w *workflow) analyzeTargets(ctx context.Context, invoker Invoker, targets []m.Target, threads int) ([]m.Outcome, error) {
	outcomes := make([]m.Outcome, len(targets))

	workerIDs := make(chan int, threads)
	for id := 0; id < threads; id++ {
		workerIDs <- id
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, target := range targets {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			workerID := <-workerIDs
			defer func() { workerIDs <- workerID }()

			w.DisplayStartingAnalysis(groupCtx, target, workerID)
			outcomes[i] = invoker.Invoke(groupCtx, target)
			w.DisplayCompletedAnalysis(groupCtx, target, outcomes[i])

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Outcomes observed after cancellation describe the cancellation, not the files.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// collectAll writes sidecars one at a time, in order, and appends the
// fragments to the run log.
func (w *workflow) collectAll(ctx context.Context, run *analysisRun, targets []m.Target, outcomes []m.Outcome) ([]m.Fragment, m.ModuleSummary, error) {
	fragments := make([]m.Fragment, 0, len(targets))
	summary := m.ModuleSummary{}

	for i, target := range targets {
		fragment, err := run.collector.Collect(ctx, target, outcomes[i])
		if err != nil {
			return nil, summary, err
		}

		fragments = append(fragments, fragment)
		summary.Add(outcomes[i])
		run.summary.Targets++

		if outcomes[i].Failed() {
			run.summary.Failures++
		}
	}

	if err := run.aggregator.Add(fragments...); err != nil {
		return nil, summary, err
	}

	return fragments, summary, nil
}

// Report re-renders the final aggregate from the fragment log of a previous
// run and shows its summary.
func (w *workflow) Report(ctx context.Context, args ReportArgs) error {
	renderer, err := render.New(args.Report.Format, render.Options{FontPath: args.Report.FontPath})
	if err != nil {
		return err
	}

	aggregator, err := OpenRunAggregator(w.fragmentLogPath(ctx, args.Output))
	if err != nil {
		return fmt.Errorf("no previous run found in %s: %w", args.Output, err)
	}
	defer aggregator.Close()

	slog.Info("Loaded fragment log", "output", args.Output, "fragments", aggregator.Len())

	lines, err := aggregator.Lines()
	if err != nil {
		return err
	}

	modules, loose, err := summaryFromFragments(aggregator.fragments)
	if err != nil {
		return fmt.Errorf("summarize fragment log: %w", err)
	}

	summary := m.RunSummary{Format: renderer.Extension(), Modules: modules, LooseFiles: loose}

	if previous, err := w.LoadSummary(ctx, w.summaryPath(ctx, args.Output)); err == nil {
		summary.SourceRoot = previous.SourceRoot
		summary.Analyzer = previous.Analyzer
	} else {
		slog.Debug("No previous run summary", "error", err)
	}

	for _, entry := range append(append([]m.ModuleSummary{}, modules...), loose...) {
		summary.Targets += entry.Targets
		summary.Failures += entry.Failures
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	reports := w.newReportWriter(args.Output, renderer, args.Report)

	summary.FinalReport, err = reports.write(ctx, finalReportBase, reportTitle, lines)
	if err != nil {
		w.Close(ctx)
		return err
	}

	w.DisplaySummary(ctx, summary)

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func (a DiscoveryArgs) walkerConfig() WalkerConfig {
	return WalkerConfig{
		Extension: a.Extension,
		Exclude:   a.Exclude,
		Output:    a.Output,
	}
}

func workerCount(threads int) int {
	if threads <= 0 {
		return defaultWorkerCount
	}

	return threads
}

func moduleTitle(name string) string {
	return reportTitle + ": " + name
}

func (w *workflow) fragmentLogPath(ctx context.Context, output m.Path) m.Path {
	return w.JoinPath(ctx, string(output), stateDirName, fragmentLogName)
}

func (w *workflow) summaryPath(ctx context.Context, output m.Path) m.Path {
	return w.JoinPath(ctx, string(output), summaryFileName)
}

// reportFileName returns <base>.<ext>.
func reportFileName(base, ext string) string {
	return filepath.Base(base) + "." + ext
}

func joinOutput(output m.Path, name string) string {
	return filepath.Join(string(output), name)
}
