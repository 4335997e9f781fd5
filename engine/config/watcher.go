package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/core"
)

// Watcher reloads a config file whenever it changes on disk and publishes the
// new config on Changes. Invalid files are logged and skipped; the last good
// config stays in effect.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	changes  chan *Config
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWatcher watches the directory of path, since editors usually replace the
// file instead of writing it in place.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %q", path)
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config watcher")
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, errors.Wrapf(err, "failed to watch %q", abs)
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		changes:  make(chan *Config, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Changes delivers reloaded configs. Only the latest pending reload is kept.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("config watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		core.LogWarn("config reload skipped: %v", err)
		return
	}
	// Replace a reload nobody picked up yet.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
		core.LogInfo("config %s changed", w.path)
	case <-w.done:
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}
