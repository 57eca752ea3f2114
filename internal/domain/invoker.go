package domain

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"modscan.dev/pkg/modscan/internal/adapter"
	m "modscan.dev/pkg/modscan/internal/model"
)

// InvokerConfig describes how the external analyzer is started.
type InvokerConfig struct {
	Analyzer m.AnalyzerRef
	Encoding string
	// Timeout bounds a single invocation. Zero waits for the process forever.
	Timeout time.Duration
	// StrictStderr turns a clean exit with stderr output into a Failure.
	StrictStderr bool
}

// Invoker runs the analyzer against one target and classifies the result.
// Per-target problems are reported through the returned Outcome, never as an
// error, so one broken file cannot stop a run.
type Invoker interface {
	Invoke(ctx context.Context, target m.Target) m.Outcome
}

type invoker struct {
	runner  adapter.ProcessRunner
	fs      adapter.SourceFSAdapter
	cache   adapter.OutcomeCache
	decoder adapter.TextDecoder
	cfg     InvokerConfig

	analyzerOnce   sync.Once
	analyzerDigest string
}

// NewInvoker constructs an Invoker. cache may be nil to disable caching. It
// fails only when the configured encoding is unknown.
func NewInvoker(
	runner adapter.ProcessRunner,
	fs adapter.SourceFSAdapter,
	cache adapter.OutcomeCache,
	cfg InvokerConfig,
) (Invoker, error) {
	if cfg.Analyzer.Executable == "" {
		return nil, errors.New("analyzer executable is not configured")
	}

	decoder, err := adapter.NewTextDecoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	return &invoker{
		runner:  runner,
		fs:      fs,
		cache:   cache,
		decoder: decoder,
		cfg:     cfg,
	}, nil
}

func (i *invoker) Invoke(ctx context.Context, target m.Target) m.Outcome {
	start := time.Now()
	exe, args := i.cfg.Analyzer.Command(target.Path)

	slog.Info("Analyzing file", "module", target.ModuleLabel(), "file", target.FileName())

	key := i.cacheKey(ctx, target)
	if outcome, ok := i.lookup(ctx, key, target); ok {
		return outcome
	}

	runCtx := ctx

	if i.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, i.cfg.Timeout)
		defer cancel()
	}

	result, err := i.runner.Run(runCtx, exe, args...)
	outcome := i.classify(ctx, runCtx, result, err)
	outcome.Duration = time.Since(start)

	slog.Info("Analysis finished",
		"file", target.FileName(),
		"outcome", outcome.Kind.String(),
		"cause", outcome.Cause.String(),
		"exit", outcome.ExitCode,
		"duration", outcome.Duration,
	)
	slog.Debug("Analyzer output", "file", target.FileName(), "stdout", string(result.Stdout), "stderr", string(result.Stderr))

	i.store(ctx, key, outcome)

	return outcome
}

func (i *invoker) classify(ctx, runCtx context.Context, result adapter.ProcessResult, err error) m.Outcome {
	if err != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return m.NewFailure(m.CauseTimeout, fmt.Sprintf("analyzer timed out after %s", i.cfg.Timeout), m.LaunchExitCode)
		}

		slog.Error("Failed to launch analyzer", "analyzer", i.cfg.Analyzer.Executable, "error", err)

		return m.NewFailure(m.CauseLaunch, err.Error(), m.LaunchExitCode)
	}

	stderr := i.decoder.Decode(result.Stderr)

	if result.ExitCode != 0 {
		diagnostic := stderr
		if strings.TrimSpace(diagnostic) == "" {
			diagnostic = fmt.Sprintf("exit status %d", result.ExitCode)
		}

		return m.NewFailure(m.CauseAnalyzer, diagnostic, result.ExitCode)
	}

	if result.Stdout == nil {
		return m.NewFailure(m.CauseNoOutput, m.NoOutputDiagnostic, result.ExitCode)
	}

	if i.cfg.StrictStderr && strings.TrimSpace(stderr) != "" {
		return m.NewFailure(m.CauseStderr, stderr, result.ExitCode)
	}

	return m.NewSuccess(i.decoder.Decode(result.Stdout))
}

// cacheKey fingerprints everything that can change the analyzer's answer for
// target. It returns "" when caching is disabled or the file cannot be hashed.
func (i *invoker) cacheKey(ctx context.Context, target m.Target) string {
	if i.cache == nil {
		return ""
	}

	fileHash, err := i.fs.HashFile(ctx, target.Path)
	if err != nil {
		slog.Debug("Skipping cache for unreadable file", "file", target.Path, "error", err)
		return ""
	}

	i.analyzerOnce.Do(func() {
		i.analyzerDigest = i.fingerprintAnalyzer(ctx)
	})

	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00", i.cfg.Analyzer.Executable)

	for _, arg := range i.cfg.Analyzer.Args {
		_, _ = fmt.Fprintf(h, "%s\x00", arg)
	}

	_, _ = fmt.Fprintf(h, "%s\x00%s\x00%t\x00%s", i.analyzerDigest, i.decoder.Name(), i.cfg.StrictStderr, fileHash)

	return fmt.Sprintf("%x", h.Sum(nil))
}

// fingerprintAnalyzer hashes the resolved analyzer executable and every
// argument that names an existing file (e.g. analyzer.dll), so a rebuilt
// analyzer invalidates the cached outcomes. It is computed once per invoker.
func (i *invoker) fingerprintAnalyzer(ctx context.Context) string {
	h := sha256.New()

	if exe, err := adapter.ResolveExecutable(i.cfg.Analyzer.Executable); err == nil {
		if digest, err := i.fs.HashFile(ctx, exe); err == nil {
			_, _ = fmt.Fprintf(h, "exe:%s\x00", digest)
		}
	}

	for _, arg := range i.cfg.Analyzer.Args {
		info, err := i.fs.FileInfo(ctx, m.Path(arg))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		digest, err := i.fs.HashFile(ctx, m.Path(arg))
		if err != nil {
			continue
		}

		_, _ = fmt.Fprintf(h, "arg:%s=%s\x00", arg, digest)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

func (i *invoker) lookup(ctx context.Context, key string, target m.Target) (m.Outcome, bool) {
	if key == "" {
		return m.Outcome{}, false
	}

	outcome, ok, err := i.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Outcome cache read failed", "file", target.Path, "error", err)
		return m.Outcome{}, false
	}

	if !ok {
		return m.Outcome{}, false
	}

	outcome.Cached = true
	slog.Info("Reusing cached outcome", "file", target.FileName(), "outcome", outcome.Kind.String())

	return outcome, true
}

func (i *invoker) store(ctx context.Context, key string, outcome m.Outcome) {
	if key == "" || !cacheable(outcome) {
		return
	}

	if err := i.cache.Put(ctx, key, outcome); err != nil {
		slog.Warn("Outcome cache write failed", "key", key, "error", err)
	}
}

// cacheable excludes outcomes that say nothing about the file itself.
func cacheable(outcome m.Outcome) bool {
	return outcome.Cause != m.CauseLaunch && outcome.Cause != m.CauseTimeout
}
