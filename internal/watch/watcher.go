// Package watch re-runs an action when an input file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/blockscan/internal/debug"
	bserrors "github.com/standardbeagle/blockscan/internal/errors"
)

// DefaultDebounce is used when a non-positive debounce is configured
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher monitors a single file. The parent directory is watched so
// editors that replace the file by rename are still observed.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration

	eventsSeen atomic.Int64
	errorCount atomic.Int64
	runs       atomic.Int64
}

// Stats contains counters about a watch session
type Stats struct {
	EventsSeen int64 // Relevant events, before debouncing
	Errors     int64 // Errors reported by the watcher
	Runs       int64 // Times the change callback ran
}

// New creates a watcher for path
func New(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, bserrors.NewFileError("watch", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, bserrors.NewFileError("watch", path, err)
	}

	debug.LogWatch("watching %s (debounce %s)\n", abs, debounce)
	return &FileWatcher{watcher: w, path: abs, debounce: debounce}, nil
}

// Run blocks until ctx is done, calling onChange once per burst of writes
// to the watched file. The watcher is closed when Run returns.
func (fw *FileWatcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	defer fw.watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			debug.LogWatch("stopping watch of %s\n", fw.path)
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(event) {
				continue
			}
			debug.LogWatch("event %v for %s\n", event.Op, event.Name)
			fw.eventsSeen.Add(1)
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.errorCount.Add(1)
			debug.LogWatch("watch error: %v\n", err)

		case <-fire:
			fire = nil
			fw.runs.Add(1)
			onChange(ctx)
		}
	}
}

// relevant reports whether event changed the watched file's content
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// GetStats returns the current counters
func (fw *FileWatcher) GetStats() Stats {
	return Stats{
		EventsSeen: fw.eventsSeen.Load(),
		Errors:     fw.errorCount.Load(),
		Runs:       fw.runs.Load(),
	}
}
