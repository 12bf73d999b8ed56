// Package snapshot copies a live, externally mutated SQLite database into a
// cache directory so readers never touch the original. Safari keeps its most
// recent writes in the WAL, so after copying the manager checkpoints the
// cached copy to fold those records into the main file.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agentic-research/tabdex/internal/logger"
	_ "modernc.org/sqlite"
)

// Result reports what a Sync call did.
type Result int

const (
	// Fresh means the cache was already at least as new as the source and
	// no file was touched.
	Fresh Result = iota
	// Copied means the source files were re-copied and checkpointed.
	Copied
)

func (r Result) String() string {
	if r == Copied {
		return "copied"
	}
	return "fresh"
}

// siblingSuffixes are the WAL-mode companion files that must travel with the
// main database file for a checkpoint on the copy to see pending writes.
var siblingSuffixes = []string{"", "-wal", "-shm"}

// Manager snapshots one source database into one cache directory. The source
// is never opened by the database driver and never written; all mutation
// happens on the cached copy.
type Manager struct {
	src      string
	cacheDir string
	log      logger.Logger
}

func NewManager(src, cacheDir string, log logger.Logger) *Manager {
	return &Manager{src: src, cacheDir: cacheDir, log: log}
}

// CachePath is where the snapshot's main database file lives. Readers open
// this path, never the source.
func (m *Manager) CachePath() string {
	return filepath.Join(m.cacheDir, filepath.Base(m.src))
}

// Sync refreshes the snapshot if the source is newer than the cache.
//
// Freshness compares max(source mtimes) against max(cache mtimes) across the
// main file and any present -wal/-shm siblings. Content is not hashed: a
// source touched without a content change still triggers a copy.
func (m *Manager) Sync(ctx context.Context) (Result, error) {
	srcTimes, err := m.statSiblings(m.src)
	if err != nil {
		return Fresh, err
	}
	if len(srcTimes) == 0 {
		return Fresh, fmt.Errorf("source database %s does not exist", m.src)
	}

	cacheTimes, err := m.statSiblings(m.CachePath())
	if err != nil {
		return Fresh, err
	}
	if len(cacheTimes) > 0 && !maxTime(srcTimes).After(maxTime(cacheTimes)) {
		m.log.Debug("snapshot fresh, skipping copy", logger.String("cache", m.CachePath()))
		return Fresh, nil
	}

	if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
		return Fresh, fmt.Errorf("create cache dir %s: %w", m.cacheDir, err)
	}
	for suffix := range srcTimes {
		src := m.src + suffix
		dst := m.CachePath() + suffix
		if err := copyFile(src, dst); err != nil {
			return Fresh, fmt.Errorf("copy %s: %w", src, err)
		}
	}

	// The checkpoint bumps the cached files' mtimes. Restore the source's
	// times so the next freshness check compares source against source,
	// not source against "now". Deferred so it runs even when the
	// checkpoint fails. Best effort: a failed restore only costs one
	// redundant copy later.
	defer func() {
		for suffix, mtime := range srcTimes {
			dst := m.CachePath() + suffix
			if _, err := os.Stat(dst); err != nil {
				continue // checkpoint may have truncated the -wal away
			}
			_ = os.Chtimes(dst, mtime, mtime)
		}
	}()

	if err := m.checkpoint(ctx); err != nil {
		return Fresh, err
	}

	m.log.Info("snapshot copied",
		logger.String("source", m.src),
		logger.String("cache", m.CachePath()))
	return Copied, nil
}

// statSiblings returns suffix -> mtime for every sibling file that exists.
// A missing main file yields an empty map, not an error; the caller decides
// whether absence is fatal.
func (m *Manager) statSiblings(base string) (map[string]time.Time, error) {
	times := make(map[string]time.Time)
	for _, suffix := range siblingSuffixes {
		info, err := os.Stat(base + suffix)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", base+suffix, err)
		}
		times[suffix] = info.ModTime()
	}
	return times, nil
}

// checkpoint folds pending WAL records into the cached main file and
// truncates the cached WAL. The handle is closed on every path.
func (m *Manager) checkpoint(ctx context.Context) error {
	db, err := sql.Open("sqlite", m.CachePath())
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", m.CachePath(), err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return fmt.Errorf("checkpoint snapshot %s: %w", m.CachePath(), err)
	}
	return nil
}

func maxTime(times map[string]time.Time) time.Time {
	var max time.Time
	for _, t := range times {
		if t.After(max) {
			max = t
		}
	}
	return max
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }() // safe to ignore

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
