package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

// WalkerConfig selects which files under the source root are analyzed.
type WalkerConfig struct {
	// Extension is the analyzable file suffix, e.g. ".cs".
	Extension string
	// Exclude holds regular expressions matched against paths relative to the
	// source root, using forward slashes.
	Exclude []string
	// Output is skipped when it lies inside the source root.
	Output m.Path
}

// Walker enumerates analysis targets grouped by module.
type Walker interface {
	DiscoverModules(ctx context.Context, root m.Path) ([]m.Module, error)
	DiscoverLooseFiles(ctx context.Context, root m.Path) ([]m.Target, error)
}

type walker struct {
	adapter.SourceFSAdapter
	extension string
	exclude   []*regexp.Regexp
	output    m.Path
}

// NewWalker constructs a Walker. It fails when an exclude pattern does not compile.
func NewWalker(fsAdapter adapter.SourceFSAdapter, cfg WalkerConfig) (Walker, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.Exclude))

	for _, raw := range cfg.Exclude {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
		}

		patterns = append(patterns, re)
	}

	ext := cfg.Extension
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &walker{
		SourceFSAdapter: fsAdapter,
		extension:       ext,
		exclude:         patterns,
		output:          cfg.Output,
	}, nil
}

// DiscoverModules returns one module per immediate subdirectory of root,
// sorted by name. Each module lists every matching file beneath it.
func (w *walker) DiscoverModules(ctx context.Context, root m.Path) ([]m.Module, error) {
	root, outputDir, err := w.resolve(ctx, root)
	if err != nil {
		return nil, err
	}

	entries, err := w.ListDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list source root %s: %w", root, err)
	}

	modules := make([]m.Module, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		modulePath := w.JoinPath(ctx, string(root), entry.Name())
		if isWithin(modulePath, outputDir) {
			slog.Debug("Skipping output directory", "path", modulePath)
			continue
		}

		targets, err := w.moduleTargets(ctx, root, modulePath, entry.Name(), outputDir)
		if err != nil {
			return nil, err
		}

		modules = append(modules, m.Module{Name: entry.Name(), Path: modulePath, Targets: targets})
	}

	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})

	slog.Debug("Discovered modules", "root", root, "count", len(modules))

	return modules, nil
}

func (w *walker) moduleTargets(ctx context.Context, root, modulePath m.Path, name string, outputDir m.Path) ([]m.Target, error) {
	var targets []m.Target

	err := w.Walk(ctx, modulePath, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if isWithin(m.Path(path), outputDir) {
				return filepath.SkipDir
			}

			return nil
		}

		if w.matches(ctx, root, m.Path(path)) {
			targets = append(targets, m.Target{Path: m.Path(path), Module: name})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk module %s: %w", name, err)
	}

	return targets, nil
}

// DiscoverLooseFiles returns matching files directly under root, sorted by name.
func (w *walker) DiscoverLooseFiles(ctx context.Context, root m.Path) ([]m.Target, error) {
	root, _, err := w.resolve(ctx, root)
	if err != nil {
		return nil, err
	}

	entries, err := w.ListDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list source root %s: %w", root, err)
	}

	var targets []m.Target

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := w.JoinPath(ctx, string(root), entry.Name())
		if w.matches(ctx, root, path) {
			targets = append(targets, m.Target{Path: path, Module: m.LooseModule})
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Path < targets[j].Path
	})

	slog.Debug("Discovered loose files", "root", root, "count", len(targets))

	return targets, nil
}

func (w *walker) resolve(ctx context.Context, root m.Path) (m.Path, m.Path, error) {
	absRoot, err := w.AbsPath(ctx, root)
	if err != nil {
		return "", "", fmt.Errorf("resolve source root: %w", err)
	}

	info, err := w.FileInfo(ctx, absRoot)
	if err != nil {
		return "", "", fmt.Errorf("source root error: %w", err)
	}

	if !info.IsDir() {
		return "", "", fmt.Errorf("source root %s is not a directory", absRoot)
	}

	var outputDir m.Path

	if w.output != "" {
		outputDir, err = w.AbsPath(ctx, w.output)
		if err != nil {
			return "", "", fmt.Errorf("resolve output directory: %w", err)
		}

		if outputDir == absRoot {
			slog.Warn("Output directory is the source root; nothing is skipped", "path", absRoot)

			outputDir = ""
		}
	}

	return absRoot, outputDir, nil
}

func (w *walker) matches(ctx context.Context, root, path m.Path) bool {
	if w.extension != "" && !strings.EqualFold(filepath.Ext(string(path)), w.extension) {
		return false
	}

	rel, err := w.RelPath(ctx, root, path)
	if err != nil {
		rel = path
	}

	slashed := filepath.ToSlash(string(rel))
	for _, re := range w.exclude {
		if re.MatchString(slashed) {
			slog.Debug("Excluded by pattern", "path", slashed, "pattern", re.String())
			return false
		}
	}

	return true
}

// isWithin reports whether path equals dir or lies beneath it.
func isWithin(path, dir m.Path) bool {
	if dir == "" {
		return false
	}

	rel, err := filepath.Rel(string(dir), string(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
