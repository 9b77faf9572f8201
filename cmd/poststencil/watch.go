package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher signals when a state file changes. It watches the file's directory
// so editors that replace the file on save are still seen, and falls back
// to polling the modification time when fsnotify is unavailable.
type watcher struct {
	path   string
	events chan struct{}
	done   chan struct{}
	fsw    *fsnotify.Watcher
	once   sync.Once
	log    *slog.Logger

	polling      atomic.Bool
	pollInterval time.Duration
}

func newWatcher(path string, log *slog.Logger) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w := &watcher{
		path:         abs,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		log:          log,
		pollInterval: time.Second,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Info("fsnotify unavailable, polling", "error", err)
		w.startPolling()
		return w, nil
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		log.Info("cannot watch directory, polling", "path", filepath.Dir(abs), "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}
	w.fsw = fsw
	go w.watch()
	return w, nil
}

func (w *watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

func (w *watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Info("fsnotify error, switching to polling", "error", err)
			w.fsw.Close()
			w.fsw = nil
			w.startPolling()
			return
		}
	}
}

func (w *watcher) poll() {
	var last time.Time
	if info, err := os.Stat(w.path); err == nil {
		last = info.ModTime()
	}
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(last) {
				last = info.ModTime()
				w.notify()
			}
		}
	}
}

// notify coalesces: a pending signal absorbs further changes.
func (w *watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *watcher) Events() <-chan struct{} { return w.events }

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if cerr := w.fsw.Close(); cerr != nil {
				err = fmt.Errorf("close fsnotify watcher: %w", cerr)
			}
		}
	})
	return err
}
