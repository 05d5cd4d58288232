package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDelay coalesces the burst of events an editor produces
// when saving a file.
const DefaultWatchDelay = 100 * time.Millisecond

// Watcher re-expands source files when they change on disk.
type Watcher struct {
	engine     *Engine
	watcher    *fsnotify.Watcher
	logger     *zap.Logger
	extensions []string
	handle     func(*Result, error)

	// Delay is how long a file must stay quiet before it is expanded.
	Delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewWatcher creates a watcher that hands every expansion of a file with
// one of extensions to handle.
func NewWatcher(engine *Engine, logger *zap.Logger, extensions []string, handle func(*Result, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:     engine,
		watcher:    fw,
		logger:     logger,
		extensions: extensions,
		handle:     handle,
		Delay:      DefaultWatchDelay,
		pending:    make(map[string]*time.Timer),
	}, nil
}

// Add watches dirs and every directory below them.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

// Watch dispatches file events until ctx is done. It closes the
// underlying watcher before returning.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				w.logger.Error("error watching directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !slices.Contains(w.extensions, filepath.Ext(event.Name)) {
		return
	}
	w.schedule(event.Name)
}

// schedule (re)arms the timer of path so that only the last event of a
// burst triggers an expansion.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.Delay, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		w.logger.Debug("file changed", zap.String("path", path))
		res, err := w.engine.Run(path)
		w.handle(res, err)
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
}
