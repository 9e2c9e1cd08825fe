package session

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kestrel-cli/kestrel/internal/logging"
)

// Watcher reloads a Store whenever its backing file changes on disk,
// letting a long-running operator process (the TUI) notice records written
// by a separate `kestrel session` CLI invocation without polling.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *logging.Logger
	stopCh  chan struct{}
}

// WatchStore starts watching store's backing file for external writes,
// calling store.Load whenever one is observed. The returned Watcher must be
// stopped with Stop.
func WatchStore(store *Store, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(store.path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:   store,
		watcher: fw,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Stop stops the watcher and releases its inotify/kqueue handle.
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
}

func (w *Watcher) loop() {
	debounce := time.NewTimer(0)
	<-debounce.C

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.store.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(50 * time.Millisecond)

		case <-debounce.C:
			if err := w.store.Load(); err != nil && w.logger != nil {
				w.logger.Debug("session store reload failed", "error", err.Error())
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Debug("session store watch error", "error", err.Error())
			}
		}
	}
}
