package domain

import (
	"fmt"
	"log/slog"

	m "modscan.dev/pkg/modscan/internal/model"
	pkg "modscan.dev/pkg/modscan/pkg"
)

// RunAggregator accumulates every fragment of a run in processing order. The
// fragments live in an on-disk log so large runs do not hold every report line
// in memory and the final report can be rebuilt later.
type RunAggregator struct {
	fragments pkg.FileSpill[m.Fragment]
}

// NewRunAggregator creates a fresh fragment log at path.
func NewRunAggregator(path m.Path) (*RunAggregator, error) {
	spill, err := pkg.NewFileSpill[m.Fragment](string(path))
	if err != nil {
		return nil, fmt.Errorf("create fragment log: %w", err)
	}

	return &RunAggregator{fragments: spill}, nil
}

// OpenRunAggregator opens the fragment log of a previous run read-only.
func OpenRunAggregator(path m.Path) (*RunAggregator, error) {
	spill, err := pkg.OpenFileSpill[m.Fragment](string(path))
	if err != nil {
		return nil, fmt.Errorf("open fragment log: %w", err)
	}

	return &RunAggregator{fragments: spill}, nil
}

// Add appends fragments to the log.
func (a *RunAggregator) Add(fragments ...m.Fragment) error {
	if err := a.fragments.AppendBatch(fragments); err != nil {
		return fmt.Errorf("append fragment: %w", err)
	}

	return nil
}

// Len returns the number of fragments recorded.
func (a *RunAggregator) Len() uint64 {
	return a.fragments.Len()
}

// Lines returns the concatenation of every fragment's lines in the order the
// fragments were added.
func (a *RunAggregator) Lines() ([]string, error) {
	var lines []string

	err := a.fragments.Range(func(_ uint64, fragment m.Fragment) error {
		lines = append(lines, fragment.Lines...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read fragment log: %w", err)
	}

	return lines, nil
}

// Close releases the log file. The log stays readable on disk.
func (a *RunAggregator) Close() {
	if err := a.fragments.Close(); err != nil {
		slog.Error("Failed to close fragment log", "path", a.fragments.Path(), "error", err)
	}
}

// summaryFromFragments rebuilds per-module counts from a fragment log.
// Loose files are grouped by file name.
func summaryFromFragments(fragments pkg.FileSpill[m.Fragment]) ([]m.ModuleSummary, []m.ModuleSummary, error) {
	modules := []m.ModuleSummary{}
	loose := []m.ModuleSummary{}
	moduleIndex := map[string]int{}

	err := fragments.Range(func(_ uint64, fragment m.Fragment) error {
		if fragment.Module == m.LooseModule {
			entry := m.ModuleSummary{Name: fragment.FileName, Targets: 1}
			if fragment.Failed {
				entry.Failures = 1
			}

			loose = append(loose, entry)

			return nil
		}

		idx, ok := moduleIndex[fragment.Module]
		if !ok {
			idx = len(modules)
			moduleIndex[fragment.Module] = idx
			modules = append(modules, m.ModuleSummary{Name: fragment.Module})
		}

		modules[idx].Targets++
		if fragment.Failed {
			modules[idx].Failures++
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return modules, loose, nil
}
