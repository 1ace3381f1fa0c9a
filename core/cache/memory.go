package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/depscope/depscope/core/logger"
	"github.com/depscope/depscope/core/scanner"
)

// DefaultScanCacheSize bounds the in-memory scan cache. Watch mode
// rescans whole packages on every change, so the cache should comfortably
// hold one scan result per module file.
const DefaultScanCacheSize = 4096

// ScanCache is an in-memory LRU of per-file scan results, keyed by file
// path and validated by modification time. Unlike the disk cache it
// survives only for the process lifetime; watch mode uses it to make
// full rebuilds cheap.
type ScanCache struct {
	entries *lru.Cache[string, scanEntry]
}

type scanEntry struct {
	modTime time.Time
	imports []scanner.DirectImport
}

// NewScanCache returns a scan cache holding at most size entries.
func NewScanCache(size int) (*ScanCache, error) {
	if size <= 0 {
		size = DefaultScanCacheSize
	}
	entries, err := lru.New[string, scanEntry](size)
	if err != nil {
		return nil, err
	}
	return &ScanCache{entries: entries}, nil
}

// Get returns the cached imports for the file, missing when the file
// is unknown or has been modified since it was cached.
func (c *ScanCache) Get(path string, modTime time.Time) ([]scanner.DirectImport, bool) {
	entry, ok := c.entries.Get(path)
	if !ok || !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return entry.imports, true
}

// Put stores the scan result for the file.
func (c *ScanCache) Put(path string, modTime time.Time, imports []scanner.DirectImport) {
	c.entries.Add(path, scanEntry{modTime: modTime, imports: imports})
}

// Invalidate drops the entry for the file, if any.
func (c *ScanCache) Invalidate(path string) {
	if c.entries.Remove(path) {
		logger.Debug("Invalidated scan cache entry for %s", path)
	}
}

// Len returns the number of cached files.
func (c *ScanCache) Len() int {
	return c.entries.Len()
}
