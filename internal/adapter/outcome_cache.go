package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	m "modscan.dev/pkg/modscan/internal/model"
)

// Current schema version - increment when cachedOutcome format changes.
const outcomeCacheSchemaVersion uint16 = 1

// OutcomeCache stores analyzer outcomes by content key so unchanged targets
// are not analyzed again.
type OutcomeCache interface {
	Get(ctx context.Context, key string) (m.Outcome, bool, error)
	Put(ctx context.Context, key string, outcome m.Outcome) error
}

type cachedOutcome struct {
	Schema     uint16        `msgpack:"schema"`
	Kind       int           `msgpack:"kind"`
	Text       string        `msgpack:"text"`
	Diagnostic string        `msgpack:"diagnostic"`
	Cause      int           `msgpack:"cause"`
	ExitCode   int           `msgpack:"exit_code"`
	Duration   time.Duration `msgpack:"duration"`
}

// DiskOutcomeCache keeps one msgpack file per key under dir.
// Thread-safe for concurrent access.
type DiskOutcomeCache struct {
	mu  sync.RWMutex
	dir string
}

// NewDiskOutcomeCache returns a cache rooted at dir. The directory is created
// lazily on the first Put.
func NewDiskOutcomeCache(dir m.Path) *DiskOutcomeCache {
	return &DiskOutcomeCache{dir: string(dir)}
}

func (c *DiskOutcomeCache) pathFor(key string) string {
	prefix := "00"
	if len(key) >= 2 {
		prefix = key[:2]
	}

	return filepath.Join(c.dir, prefix, key+".mp")
}

// Get reads the outcome stored under key. A missing entry or one written by
// another schema version is reported as a miss.
func (c *DiskOutcomeCache) Get(ctx context.Context, key string) (m.Outcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return m.Outcome{}, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.Outcome{}, false, nil
		}

		return m.Outcome{}, false, fmt.Errorf("read cache entry: %w", err)
	}

	var entry cachedOutcome
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return m.Outcome{}, false, nil
	}

	if entry.Schema != outcomeCacheSchemaVersion {
		return m.Outcome{}, false, nil
	}

	return m.Outcome{
		Kind:       m.OutcomeKind(entry.Kind),
		Text:       entry.Text,
		Diagnostic: entry.Diagnostic,
		Cause:      m.FailureCause(entry.Cause),
		ExitCode:   entry.ExitCode,
		Duration:   entry.Duration,
		Cached:     true,
	}, true, nil
}

// Put serializes and writes an outcome to the cache.
func (c *DiskOutcomeCache) Put(ctx context.Context, key string, outcome m.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(&cachedOutcome{
		Schema:     outcomeCacheSchemaVersion,
		Kind:       int(outcome.Kind),
		Text:       outcome.Text,
		Diagnostic: outcome.Diagnostic,
		Cause:      int(outcome.Cause),
		ExitCode:   outcome.ExitCode,
		Duration:   outcome.Duration,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return writeFileAtomic(c.pathFor(key), data)
}
