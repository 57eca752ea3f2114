package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	m "modscan.dev/pkg/modscan/internal/model"
)

// ResultStore persists per-target sidecar results and the run summary.
type ResultStore interface {
	// SaveResult writes one sidecar artifact. Any error is fatal for the run.
	SaveResult(ctx context.Context, path m.Path, content []byte) error
	// SaveReport writes a rendered report document.
	SaveReport(ctx context.Context, path m.Path, content []byte) error
	// SaveSummary writes the run summary manifest as YAML.
	SaveSummary(ctx context.Context, path m.Path, summary m.RunSummary) error
	// LoadSummary reads a summary previously written by SaveSummary.
	LoadSummary(ctx context.Context, path m.Path) (m.RunSummary, error)
}

// LocalResultStore stores results on the local filesystem.
type LocalResultStore struct{}

// NewResultStore constructs a LocalResultStore.
func NewResultStore() *LocalResultStore {
	return &LocalResultStore{}
}

// SaveResult atomically replaces the sidecar at path. When the previous
// content differs, the change is logged as a unified diff at debug level.
func (s *LocalResultStore) SaveResult(ctx context.Context, path m.Path, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := string(path)

	previous, err := os.ReadFile(target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read previous result %s: %w", target, err)
	}

	if err == nil && !bytes.Equal(previous, content) {
		logResultChange(target, previous, content)
	}

	return writeFileAtomic(target, content)
}

// SaveReport atomically replaces the rendered document at path.
func (s *LocalResultStore) SaveReport(ctx context.Context, path m.Path, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return writeFileAtomic(string(path), content)
}

// SaveSummary marshals summary to YAML and writes it to path.
func (s *LocalResultStore) SaveSummary(ctx context.Context, path m.Path, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	return writeFileAtomic(string(path), data)
}

// LoadSummary reads the YAML summary at path.
func (s *LocalResultStore) LoadSummary(ctx context.Context, path m.Path) (m.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return m.RunSummary{}, err
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunSummary{}, fmt.Errorf("read summary: %w", err)
	}

	var summary m.RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return m.RunSummary{}, fmt.Errorf("unmarshal summary %s: %w", path, err)
	}

	return summary, nil
}

func logResultChange(path string, previous, current []byte) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(previous)),
		B:        difflib.SplitLines(string(current)),
		FromFile: "previous",
		ToFile:   "current",
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		slog.Debug("Result changed since last run", "path", path, "error", err)
		return
	}

	slog.Debug("Result changed since last run", "path", path, "diff", text)
}

// writeFileAtomic writes content to a temp file next to path and renames it
// into place so readers never observe a partially written file.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}
