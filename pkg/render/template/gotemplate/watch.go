package gotemplate

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watcher drops compiled templates when anything under the source dir
// changes. Partials pulled in through include/extends are compiled into their
// parents, so every event invalidates the whole set.
type watcher struct {
	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newWatcher(root string, invalidate func(names ...string), logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &watcher{
		fsw:  fsw,
		done: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(invalidate, logger)
	return w, nil
}

func (w *watcher) loop(invalidate func(names ...string), logger *slog.Logger) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			logger.Debug("template source changed", "path", event.Name, "op", event.Op.String())
			invalidate()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("template watcher error", "error", err)
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
