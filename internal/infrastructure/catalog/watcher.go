package catalog

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Store whenever its seed file changes on disk. Events are
// debounced because editors and atomic-rename writers fire several per save.
// The catalog can still be refreshed explicitly through Store.Reload; this
// just removes the need for a restart when the seeding process rewrites the
// file.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

const debounceInterval = 200 * time.Millisecond

// NewWatcher creates a watcher bound to the store's seed file.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring the store's seed file and reloads on change. The
// parent directory is watched rather than the file itself so atomic
// rename-into-place updates are seen.
func (w *Watcher) Watch(store *Store) error {
	seedPath, err := filepath.Abs(store.path)
	if err != nil {
		return err
	}
	if err := w.fw.Add(filepath.Dir(seedPath)); err != nil {
		return err
	}

	go func() {
		var lastReload time.Time
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != seedPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if time.Since(lastReload) < debounceInterval {
					continue
				}
				lastReload = time.Now()

				if err := store.Reload(); err != nil {
					// Keep serving the previous snapshot.
					log.Printf("[CATALOG] reload after file change failed: %v", err)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; nothing useful to do here.

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}
