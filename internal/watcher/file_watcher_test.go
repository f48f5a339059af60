package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single file change fires callback after debounce
// - Rapid changes to several files are batched into one sorted callback
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - New directories are watched recursively
// - Extension filtering (only monitored extensions trigger callback)
// - Ignore rules filter files and directories
// - Deduplication (same file modified twice appears once in batch)
// - Stop() is idempotent and safe before Start()

const testDebounce = 100 * time.Millisecond

func newTestWatcher(t *testing.T, dir string, ignore func(string) bool) FileWatcher {
	t.Helper()
	w, err := NewFileWatcher([]string{dir}, Options{
		Extensions: []string{".py"},
		Debounce:   testDebounce,
		Ignore:     ignore,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// collector records callback batches and signals each one.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newCollector() *collector {
	return &collector{called: make(chan struct{}, 10)}
}

func (c *collector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.called <- struct{}{}
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.called:
	case <-time.After(3 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *collector) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-c.called:
		t.Fatal("Callback should not have been called")
	case <-time.After(d):
	}
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{Extensions: []string{".py"}})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	nonexistent := filepath.Join(t.TempDir(), "nonexistent")
	w, err := NewFileWatcher([]string{nonexistent}, Options{Extensions: []string{".py"}})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	b := filepath.Join(dir, "b.py")
	a := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(b, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(a, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("x = 2\n"), 0644))

	assert.Equal(t, []string{a, b}, c.wait(t))
}

func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	c.expectNone(t, 3*testDebounce)
}

func TestFileWatcher_IgnoreRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	venv := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(venv, 0755))

	ignore := func(path string) bool {
		return strings.Contains(filepath.ToSlash(path), "/venv") || strings.HasSuffix(path, "_skip.py")
	}
	w := newTestWatcher(t, dir, ignore)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(venv, "site.py"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen_skip.py"), []byte("x"), 0644))
	c.expectNone(t, 3*testDebounce)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	w.Pause()
	file := filepath.Join(dir, "paused.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))
	c.expectNone(t, 3*testDebounce)

	w.Resume()
	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_NewDirectoryWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "inner.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	assert.Contains(t, c.wait(t), file)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{Extensions: []string{".py"}})
	require.NoError(t, err)

	// Stop before Start must not block
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWatcher(t, dir, nil)
	c := newCollector()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, c.callback))
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.py"), []byte("x"), 0644))
	c.expectNone(t, 3*testDebounce)
}
