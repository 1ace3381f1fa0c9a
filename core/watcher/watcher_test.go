package watcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscope/depscope/core/cache"
)

func TestFileFilters(t *testing.T) {
	assert.True(t, isRelevantFile("/src/pkg/module.py"))
	assert.False(t, isRelevantFile("/src/pkg/.hidden.py"))
	assert.False(t, isRelevantFile("/src/pkg/notes.txt"))
	assert.False(t, isRelevantFile("/src/pkg/module.pyc"))

	assert.True(t, shouldIgnoreDir("__pycache__"))
	assert.True(t, shouldIgnoreDir(".git"))
	assert.False(t, shouldIgnoreDir("subpackage"))
}

func TestHandleEvent(t *testing.T) {
	t.Run("a burst of events fires one change", func(t *testing.T) {
		pw, err := NewPackageWatcher(nil, nil)
		require.NoError(t, err)
		defer pw.Close()

		var calls atomic.Int32
		fired := make(chan struct{}, 4)
		pw.OnChange = func() error {
			calls.Add(1)
			fired <- struct{}{}
			return nil
		}

		for i := 0; i < 3; i++ {
			pw.handleEvent(fsnotify.Event{Name: "/src/pkg/module.py", Op: fsnotify.Write})
		}

		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatal("change callback never fired")
		}
		// The debounce window has closed; no further callback is due.
		time.Sleep(2 * debounceInterval)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("irrelevant files do not trigger a change", func(t *testing.T) {
		pw, err := NewPackageWatcher(nil, nil)
		require.NoError(t, err)
		defer pw.Close()

		pw.OnChange = func() error {
			t.Error("unexpected change callback")
			return nil
		}

		pw.handleEvent(fsnotify.Event{Name: "/src/pkg/notes.txt", Op: fsnotify.Write})
		time.Sleep(2 * debounceInterval)
	})

	t.Run("writes invalidate the scan cache", func(t *testing.T) {
		scanCache, err := cache.NewScanCache(8)
		require.NoError(t, err)
		mtime := time.Now()
		scanCache.Put("/src/pkg/module.py", mtime, nil)

		pw, err := NewPackageWatcher(nil, scanCache)
		require.NoError(t, err)
		defer pw.Close()

		pw.handleEvent(fsnotify.Event{Name: "/src/pkg/module.py", Op: fsnotify.Write})

		_, hit := scanCache.Get("/src/pkg/module.py", mtime)
		assert.False(t, hit)
	})
}
