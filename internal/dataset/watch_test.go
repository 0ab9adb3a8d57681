package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func TestWatcherForgetsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diabetes.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(NewCache(4), DefaultOptions(), zap.NewNop())
	first := l.LoadFile(context.Background(), path)
	if !first.OK() {
		t.Fatalf("load: %s", first.Message)
	}

	w := NewWatcher(l, path, zap.NewNop())
	changed := make(chan string, 8)
	w.OnInvalidate = func(p string) { changed <- p }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	// The watch is registered asynchronously; keep touching the file until
	// an event arrives.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case p := <-changed:
			if p != w.path {
				t.Fatalf("invalidated %q, want %q", p, w.path)
			}
			again := l.LoadFile(context.Background(), path)
			if again.Dataset == first.Dataset {
				t.Fatalf("dataset was not re-parsed after change")
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatalf("no change observed")
		}
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diabetes.csv")
	l := NewLoader(NewCache(1), DefaultOptions(), zap.NewNop())
	w := NewWatcher(l, path, zap.NewNop())
	called := false
	w.OnInvalidate = func(string) { called = true }
	w.handle(fsnotify.Event{Name: filepath.Join(dir, "other.csv"), Op: fsnotify.Write})
	if called {
		t.Fatalf("sibling file should not invalidate")
	}
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})
	if !called {
		t.Fatalf("watched file should invalidate")
	}
}
