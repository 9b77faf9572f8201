package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func pollingWatcher(t *testing.T, path string) *watcher {
	t.Helper()
	abs, _ := filepath.Abs(path)
	w := &watcher{
		path:         abs,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		pollInterval: 10 * time.Millisecond,
	}
	w.startPolling()
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatcherPollDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := pollingWatcher(t, path)
	if !w.polling.Load() {
		t.Fatal("watcher not polling")
	}

	time.Sleep(30 * time.Millisecond)
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no event after modification")
	}
}

func TestWatcherCoalesces(t *testing.T) {
	w := pollingWatcher(t, filepath.Join(t.TempDir(), "missing.json"))
	w.notify()
	w.notify()
	w.notify()
	<-w.Events()
	select {
	case <-w.Events():
		t.Fatal("second event delivered; notifications should coalesce")
	default:
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w := pollingWatcher(t, filepath.Join(t.TempDir(), "state.json"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEncodingFor(t *testing.T) {
	a, err := setup(filepath.Join(t.TempDir(), "none.toml"), "post.jpg")
	if err != nil {
		t.Fatal(err)
	}
	defer a.closer.Close()
	if enc := encodingFor(a.cfg, "out.JPG"); enc.Format != "jpeg" || enc.Quality != 92 {
		t.Errorf("jpg encoding = %+v", enc)
	}
	if enc := encodingFor(a.cfg, ""); enc.Format != "png" {
		t.Errorf("default encoding = %+v", enc)
	}
}
