// Package watch re-runs a script whenever its file is saved.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 100 * time.Millisecond

// RunFunc executes the script once. ctx is cancelled when the file changes
// again before the run finishes.
type RunFunc func(ctx context.Context)

// Watcher monitors one script file and triggers runs on change
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string // absolute path of the watched file
	debounce time.Duration
	stderr   io.Writer

	// Only touched by the event loop
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a watcher for the file at path. The file's directory is
// watched so that editors which replace the file on save are still seen.
func New(path string, debounce time.Duration, stderr io.Writer) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: is a directory", path)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("cannot watch %s: %w", filepath.Dir(absPath), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if stderr == nil {
		stderr = io.Discard
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: debounce,
		stderr:   stderr,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls run once straight away and again after every change to the
// file, until ctx is done. A change cancels the run in progress; the next
// run starts once it has returned. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, run RunFunc) error {
	defer w.watcher.Close()
	defer w.stop()

	w.logInfo("watching %s", w.path)
	w.trigger(ctx, run)

	// Wait for rapid changes to settle before re-running
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.logInfo("changed: %s", filepath.Base(w.path))
			w.trigger(ctx, run)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// relevant reports whether event is a write or create of the watched file
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

// trigger cancels the current run and starts the next one after it exits
func (w *Watcher) trigger(ctx context.Context, run RunFunc) {
	if w.cancel != nil {
		w.cancel()
	}
	previous := w.done

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go func() {
		defer close(done)
		if previous != nil {
			<-previous
		}
		if runCtx.Err() != nil {
			return
		}
		run(runCtx)
	}()
}

// stop cancels the current run and waits for it
func (w *Watcher) stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
