package dataset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Result is the outcome of a load. Exactly one of Dataset and Err is set;
// Message is the text shown to the user when Dataset is nil.
type Result struct {
	Dataset *Dataset
	Err     error
	Message string
}

// OK reports whether a dataset is present.
func (r Result) OK() bool { return r.Dataset != nil }

// Loader turns files and uploads into cached datasets.
type Loader struct {
	cache  *Cache
	opt    Options
	logger *zap.Logger

	mu       sync.Mutex
	pathKeys map[string]string
}

// NewLoader returns a loader backed by cache. A nil logger discards output.
func NewLoader(cache *Cache, opt Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: cache, opt: opt, logger: logger, pathKeys: make(map[string]string)}
}

// Options returns the parse options the loader applies.
func (l *Loader) Options() Options { return l.opt }

// LoadFile loads the delimited file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) Result {
	if path == "" {
		return failed(ErrNoSource)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("read dataset", zap.String("path", path), zap.Error(err))
		return failed(&LoadError{Source: filepath.Base(path), Err: err})
	}
	res := l.load(ctx, filepath.Base(path), data)
	if res.OK() {
		l.mu.Lock()
		l.pathKeys[absPath(path)] = res.Dataset.Key
		l.mu.Unlock()
	}
	return res
}

// LoadUpload loads an uploaded file's contents.
func (l *Loader) LoadUpload(ctx context.Context, name string, data []byte) Result {
	return l.load(ctx, name, data)
}

// Lookup returns a dataset loaded earlier under key.
func (l *Loader) Lookup(key string) Result {
	if ds, ok := l.cache.Get(key); ok {
		return Result{Dataset: ds}
	}
	return Result{Err: ErrExpired, Message: ErrExpired.Error()}
}

// ForgetPath drops the cached dataset last loaded from path so the next load
// re-parses the file.
func (l *Loader) ForgetPath(path string) bool {
	path = absPath(path)
	l.mu.Lock()
	key, ok := l.pathKeys[path]
	delete(l.pathKeys, path)
	l.mu.Unlock()
	if !ok {
		return false
	}
	return l.cache.Forget(key)
}

func (l *Loader) load(ctx context.Context, name string, data []byte) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("parse panicked", zap.String("source", name), zap.Any("panic", p))
			res = failed(&LoadError{Source: name, Err: fmt.Errorf("unexpected parse failure: %v", p)})
		}
	}()
	key := Key(data, l.opt)
	ds, err := l.cache.GetOrLoad(ctx, key, func() (*Dataset, error) {
		l.logger.Debug("parsing dataset", zap.String("source", name), zap.Int("bytes", len(data)))
		return Parse(bytes.NewReader(data), name, l.opt)
	})
	if err != nil {
		l.logger.Warn("load dataset", zap.String("source", name), zap.Error(err))
		return failed(err)
	}
	return Result{Dataset: ds}
}

func failed(err error) Result {
	return Result{Err: err, Message: "Error loading data: " + err.Error()}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
