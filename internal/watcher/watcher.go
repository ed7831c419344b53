// Package watcher keeps the index in step with the working tree: it watches
// the configured directories recursively and re-vectorises files as they are
// created or modified. Bursts of events settle through a debounce window and
// dispatch as one batch.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"codectx/internal/config"
	"codectx/internal/tools"
	"codectx/internal/types"
)

// flushInterval is how often settled events are checked for dispatch.
const flushInterval = 100 * time.Millisecond

// Indexer dispatches a batch of files for re-vectorising. *tools.Adapter
// satisfies it.
type Indexer interface {
	Vectorise(ctx context.Context, req tools.VectoriseRequest) (types.MutationResult, error)
}

// Config carries the watcher settings.
type Config struct {
	// Watch holds the directory list and file eligibility rules.
	Watch config.WatchConfig

	// ProjectRoot is passed through to the vectorise dispatch. Empty lets
	// the service infer it.
	ProjectRoot string

	// Debounce is how long a file must stay quiet before it is indexed.
	// Zero means 500ms.
	Debounce time.Duration

	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Stats tracks watcher activity.
type Stats struct {
	FilesChanged      int
	FilesRemoved      int
	BatchesDispatched int
	FilesIndexed      int
	Errors            int
	LastEventPath     string
	LastEventTime     time.Time
}

// Watcher watches the configured directories and feeds changed files to the
// indexer.
type Watcher struct {
	watcher *fsnotify.Watcher
	indexer Indexer
	cfg     Config
	logger  *zap.Logger

	mu      sync.RWMutex
	pending map[string]time.Time
	running bool
	stats   Stats

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a watcher over cfg.Watch.Paths. Nothing is watched until
// Start is called.
func New(indexer Indexer, cfg Config) (*Watcher, error) {
	if indexer == nil {
		return nil, errors.New("watcher requires an indexer")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Watcher{
		watcher: fsw,
		indexer: indexer,
		cfg:     cfg,
		logger:  cfg.Logger,
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start registers the watch directories and begins processing events. It is
// non-blocking; a second call is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range w.cfg.Watch.Paths {
		if err := w.addRecursive(root); err != nil {
			w.logger.Warn("failed to watch directory",
				zap.String("path", root),
				zap.Error(err))
		}
	}
	w.logger.Info("watching for changes",
		zap.Strings("dirs", w.watcher.WatchList()),
		zap.Duration("debounce", w.cfg.Debounce))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain. It releases
// the underlying filesystem watcher even when Start was never called.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs returns the directories currently registered.
func (w *Watcher) WatchedDirs() []string {
	dirs := w.watcher.WatchList()
	sort.Strings(dirs)
	return dirs
}

// Stats returns a snapshot of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addRecursive registers root and every non-ignored subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// skipDir reports whether a directory name is ignored or hidden.
func (w *Watcher) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, dir := range w.cfg.Watch.IgnoreDirs {
		if name == dir {
			return true
		}
	}
	return false
}

// run is the event loop. It exits on Stop or context cancellation.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

// handleEvent records one filesystem event for debounced processing. New
// directories join the watch set immediately so files created inside them
// are not missed.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(event.Name)) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory",
						zap.String("path", event.Name),
						zap.Error(err))
				}
			}
			return
		}
	}

	if !w.cfg.Watch.ShouldIndex(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.stats.FilesChanged++
		w.pending[event.Name] = time.Now()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// The index entry goes stale; removing it needs an explicit
		// files rm, which only operates on existing files.
		w.stats.FilesRemoved++
		delete(w.pending, event.Name)
	}
}

// flushSettled dispatches every file that has been quiet for the debounce
// window as one vectorise batch.
func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var batch []string
	for path, eventTime := range w.pending {
		if now.Sub(eventTime) >= w.cfg.Debounce {
			batch = append(batch, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)

	result, err := w.indexer.Vectorise(ctx, tools.VectoriseRequest{
		Paths:       batch,
		ProjectRoot: w.cfg.ProjectRoot,
	})
	if err != nil {
		// Files can disappear between the event and the flush.
		if errors.Is(err, tools.ErrNoValidFiles) {
			w.logger.Debug("batch vanished before indexing", zap.Strings("paths", batch))
			return
		}
		w.logger.Error("vectorise dispatch failed",
			zap.Int("files", len(batch)),
			zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.logger.Info("re-vectorised changed files",
		zap.Int("files", len(batch)),
		zap.String("result", result.String()))

	w.mu.Lock()
	w.stats.BatchesDispatched++
	w.stats.FilesIndexed += result.Added + result.Updated
	w.mu.Unlock()
}
