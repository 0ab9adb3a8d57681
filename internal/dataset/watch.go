package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates the cached copy of a file whenever it changes on disk.
type Watcher struct {
	loader *Loader
	path   string
	logger *zap.Logger

	// OnInvalidate, if set, is called after each handled change.
	OnInvalidate func(path string)
}

// NewWatcher watches path on behalf of loader.
func NewWatcher(loader *Loader, path string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{loader: loader, path: absPath(path), logger: logger}
}

// Run blocks until ctx is cancelled. The file's directory is watched rather
// than the file so editors that replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching default dataset", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	forgot := w.loader.ForgetPath(w.path)
	w.logger.Info("default dataset changed",
		zap.String("path", w.path),
		zap.String("op", event.Op.String()),
		zap.Bool("evicted", forgot))
	if w.OnInvalidate != nil {
		w.OnInvalidate(w.path)
	}
}
