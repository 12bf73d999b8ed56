package snapshot

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSourceDB creates a WAL-mode database with one table and the given rows,
// returning its path and the still-open handle. Keeping the handle open
// leaves the most recent writes in the -wal file only, exactly like a live
// browser process.
func newSourceDB(t *testing.T, titles []string) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "SafariTabs.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE bookmarks (id INTEGER PRIMARY KEY, title TEXT);")
	require.NoError(t, err)
	for _, title := range titles {
		_, err = db.Exec("INSERT INTO bookmarks (title) VALUES (?);", title)
		require.NoError(t, err)
	}
	return path, db
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bookmarks").Scan(&n))
	return n
}

func TestSyncCopiesLiveWALWrites(t *testing.T) {
	src, db := newSourceDB(t, []string{"a", "b", "c"})
	defer func() { _ = db.Close() }()

	cacheDir := t.TempDir()
	mgr := NewManager(src, cacheDir, logger.Nop())

	result, err := mgr.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Copied, result)

	// The checkpoint must have folded the WAL frames into the cached main
	// file. Remove the cached WAL siblings before reading so the rows can
	// only come from the main file itself.
	_ = os.Remove(mgr.CachePath() + "-wal")
	_ = os.Remove(mgr.CachePath() + "-shm")
	assert.Equal(t, 3, countRows(t, mgr.CachePath()))
}

func TestSyncFreshnessIdempotence(t *testing.T) {
	src, db := newSourceDB(t, []string{"a"})
	require.NoError(t, db.Close())

	mgr := NewManager(src, t.TempDir(), logger.Nop())

	result, err := mgr.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, Copied, result)

	afterFirst, err := os.ReadFile(mgr.CachePath())
	require.NoError(t, err)

	// No source change between calls: the second sync must not copy and
	// must leave cache content byte-identical.
	result, err = mgr.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Fresh, result)

	afterSecond, err := os.ReadFile(mgr.CachePath())
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestSyncRecopiesWhenSourceNewer(t *testing.T) {
	src, db := newSourceDB(t, []string{"a"})
	require.NoError(t, db.Close())

	mgr := NewManager(src, t.TempDir(), logger.Nop())
	_, err := mgr.Sync(context.Background())
	require.NoError(t, err)

	// Simulate an external write: bump the source mtime past the cache.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(src, future, future))

	result, err := mgr.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Copied, result)
}

func TestSyncRestoresSourceTimesOntoCache(t *testing.T) {
	src, db := newSourceDB(t, []string{"a"})
	require.NoError(t, db.Close())

	// Pin the source to a known mtime so the restore is observable.
	pinned := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, pinned, pinned))

	mgr := NewManager(src, t.TempDir(), logger.Nop())
	_, err := mgr.Sync(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(mgr.CachePath())
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(pinned),
		"cache mtime %v should equal pinned source mtime %v", info.ModTime(), pinned)
}

func TestSyncMissingSourceIsFatal(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "absent.db"), t.TempDir(), logger.Nop())
	_, err := mgr.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "copied", Copied.String())
}
