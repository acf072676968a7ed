package hot_reload

import (
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/fsnotify/fsnotify"
)

// watchDir adds dir to the notifier. Directories are watched instead of files so that editors which
// save by renaming a temporary file over the original keep producing events.
func (w *watcher) watchDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchedDirs[dir] {
		return nil
	}
	if err := w.notify.Add(dir); err != nil {
		return err
	}
	w.watchedDirs[dir] = true
	return nil
}

func (w *watcher) dirWatched(dir string) bool {
	if w.notify == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watchedDirs[dir]
}

// listen marks entries pending from notifier events until Close. It never touches artifacts.
func (w *watcher) listen() {
	events := w.notify.Events
	errs := w.notify.Errors
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.markPending(filepath.Clean(event.Name))
		case err, ok := <-errs:
			if !ok {
				return
			}
			common.Logger().Warn("file notification error", "err", err)
		}
	}
}

func (w *watcher) markPending(path string) {
	w.mu.Lock()
	e, ok := w.entries[path]
	w.mu.Unlock()
	if ok {
		e.pending.Store(true)
	}
}
