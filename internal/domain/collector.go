package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

const (
	sidecarSuffix  = ".result"
	fragmentIndent = "    "
	errorPrefix    = "Error: "
)

// Collector persists one outcome as a sidecar artifact and turns it into a
// report fragment.
type Collector interface {
	Collect(ctx context.Context, target m.Target, outcome m.Outcome) (m.Fragment, error)
}

type collector struct {
	store  adapter.ResultStore
	output m.Path

	mu   sync.Mutex
	seen map[m.Path]m.Path
}

// NewCollector returns a Collector writing sidecars below output.
func NewCollector(store adapter.ResultStore, output m.Path) Collector {
	return &collector{
		store:  store,
		output: output,
		seen:   make(map[m.Path]m.Path),
	}
}

func (c *collector) Collect(ctx context.Context, target m.Target, outcome m.Outcome) (m.Fragment, error) {
	path := SidecarPath(c.output, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if previous, ok := c.seen[path]; ok && previous != target.Path {
		slog.Warn("Sidecar overwritten by another target with the same file name",
			"sidecar", path, "previous", previous, "target", target.Path)
	}

	c.seen[path] = target.Path

	if err := c.store.SaveResult(ctx, path, SidecarContent(outcome)); err != nil {
		slog.Error("Failed to write sidecar", "path", path, "error", err)
		return m.Fragment{}, fmt.Errorf("write result for %s: %w", target.Path, err)
	}

	return FormatFragment(target, outcome), nil
}

// SidecarPath returns <output>/<module>/<file>.result, or <output>/<file>.result
// for loose targets.
func SidecarPath(output m.Path, target m.Target) m.Path {
	name := target.FileName() + sidecarSuffix
	if target.IsLoose() {
		return m.Path(filepath.Join(string(output), name))
	}

	return m.Path(filepath.Join(string(output), target.Module, name))
}

// SidecarContent is the raw analyzer text on success and a single
// "Error: <diagnostic>" line on failure.
func SidecarContent(outcome m.Outcome) []byte {
	if !outcome.Failed() {
		return []byte(outcome.Text)
	}

	return []byte(errorPrefix + strings.TrimSpace(outcome.Diagnostic) + "\n")
}

// FormatFragment builds the display lines for one outcome.
func FormatFragment(target m.Target, outcome m.Outcome) m.Fragment {
	fragment := m.Fragment{
		FileName: target.FileName(),
		Module:   target.Module,
		Failed:   outcome.Failed(),
	}

	if outcome.Failed() {
		diagnostic := splitReportLines(strings.TrimSpace(outcome.Diagnostic))

		first := ""
		if len(diagnostic) > 0 {
			first = diagnostic[0]
			diagnostic = diagnostic[1:]
		}

		fragment.Lines = append(fragment.Lines, strings.TrimRight(fmt.Sprintf("Error in %s: %s", target.FileName(), first), " \t"))
		fragment.Lines = append(fragment.Lines, indentLines(diagnostic)...)

		return fragment
	}

	fragment.Lines = append(fragment.Lines, fmt.Sprintf("Results for %s:", target.FileName()))
	fragment.Lines = append(fragment.Lines, indentLines(splitReportLines(outcome.Text))...)

	return fragment
}

// splitReportLines splits text into lines with trailing whitespace removed and
// trailing blank lines dropped.
func splitReportLines(text string) []string {
	if text == "" {
		return nil
	}

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		lines = append(lines, strings.TrimRight(line, " \t\r"))
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func indentLines(lines []string) []string {
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if line == "" {
			out = append(out, "")
			continue
		}

		out = append(out, fragmentIndent+line)
	}

	return out
}
