package whitelist

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joss/saydo/internal/logging"
)

// Watcher reloads a Store whenever its whitelist file changes.
// The parent directory is watched so editors that replace the file by
// rename are still picked up.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	store    *Store
	path     string
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	log      *logging.Logger

	// OnReload is called after every reload attempt.
	OnReload func(idx *Index, err error)
}

// NewWatcher creates a watcher for path feeding store.
func NewWatcher(path string, store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		store:    store,
		path:     abs,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		log:      logging.New("whitelist"),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.fsw.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch_error", nil, err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	idx, err := w.store.Reload(w.path)
	if err != nil {
		w.log.Warn("reload_failed", map[string]interface{}{"path": w.path}, err)
	} else {
		w.log.Info("reloaded", map[string]interface{}{"path": w.path, "entries": idx.Len()})
	}
	if w.OnReload != nil {
		w.OnReload(idx, err)
	}
}
