package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "transcript.md")

	fw, err := New(target, 10*time.Millisecond)
	require.NoError(t, err)
	defer fw.watcher.Close()

	assert.True(t, fw.relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}))
	assert.True(t, fw.relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}))
	assert.False(t, fw.relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}))
	assert.False(t, fw.relevant(fsnotify.Event{Name: target, Op: fsnotify.Remove}))
	assert.False(t, fw.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.md"), Op: fsnotify.Write}))
}

func TestFileWatcher_DefaultDebounce(t *testing.T) {
	fw, err := New(filepath.Join(t.TempDir(), "a.md"), 0)
	require.NoError(t, err)
	defer fw.watcher.Close()
	assert.Equal(t, DefaultDebounce, fw.debounce)
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "a.md"), time.Millisecond)
	assert.Error(t, err)
}

func TestFileWatcher_RunsOnWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "transcript.md")
	require.NoError(t, os.WriteFile(target, []byte("first"), 0o644))

	fw, err := New(target, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- fw.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	require.Eventually(t, func() bool {
		// Keep writing until the watcher has observed at least one event
		_ = os.WriteFile(target, []byte("second"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	stats := fw.GetStats()
	assert.GreaterOrEqual(t, stats.EventsSeen, stats.Runs)
	assert.Positive(t, stats.Runs)
}

func TestFileWatcher_StopsOnCancel(t *testing.T) {
	fw, err := New(filepath.Join(t.TempDir(), "a.md"), time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, fw.Run(ctx, func(context.Context) { t.Error("unexpected change") }))
}
