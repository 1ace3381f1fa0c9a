// Package watcher rebuilds on filesystem changes. It watches the
// package directories recursively and fires a debounced callback when
// Python sources change.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/depscope/depscope/core/cache"
	"github.com/depscope/depscope/core/logger"
)

const debounceInterval = 500 * time.Millisecond

// PackageWatcher watches a set of package directories for .py changes.
// Each burst of events triggers OnChange once, after a quiet period.
type PackageWatcher struct {
	roots     []string
	watcher   *fsnotify.Watcher
	scanCache *cache.ScanCache

	// OnChange runs after the debounce window closes. Set it before
	// calling Watch.
	OnChange func() error

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewPackageWatcher returns a watcher over the given package
// directories. The scan cache, when non-nil, is invalidated per
// changed file so rebuilds rescan exactly what changed.
func NewPackageWatcher(roots []string, scanCache *cache.ScanCache) (*PackageWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &PackageWatcher{
		roots:     roots,
		watcher:   w,
		scanCache: scanCache,
	}, nil
}

// Watch blocks, dispatching events until the watcher is closed.
func (pw *PackageWatcher) Watch() error {
	for _, root := range pw.roots {
		if err := pw.addWatchersRecursively(root); err != nil {
			return fmt.Errorf("failed to add watchers: %w", err)
		}
	}

	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			pw.handleEvent(event)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (pw *PackageWatcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			if !shouldIgnoreDir(filepath.Base(event.Name)) {
				logger.Debug("Adding watcher for new directory: %s", event.Name)
				pw.watcher.Add(event.Name)
			}
			return
		}
	}

	if !isRelevantFile(event.Name) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)

	if pw.scanCache != nil && (event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		pw.scanCache.Invalidate(event.Name)
	}

	pw.debounceChange()
}

func (pw *PackageWatcher) debounceChange() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(debounceInterval, func() {
		logger.Debug("File changes detected, rebuilding...")
		if pw.OnChange == nil {
			return
		}
		if err := pw.OnChange(); err != nil {
			logger.Error("Rebuild failed: %v", err)
		}
	})
}

// Close stops the watcher and any pending debounce.
func (pw *PackageWatcher) Close() error {
	pw.mu.Lock()
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.mu.Unlock()
	return pw.watcher.Close()
}

func (pw *PackageWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && shouldIgnoreDir(info.Name()) {
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := pw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}

func shouldIgnoreDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__"
}

func isRelevantFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".py") && !strings.HasPrefix(name, ".")
}
