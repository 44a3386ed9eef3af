package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pairdex/internal/logging"
	"pairdex/internal/metrics"
)

// RescanFunc reprocesses a single directory.
type RescanFunc func(ctx context.Context, dir string) error

// Watcher debounces filesystem events into per-directory rescans.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	fsw    *fsnotify.Watcher
	rescan RescanFunc
	root   string

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
	closed  bool
}

// New creates a watcher that calls rescan for each settled directory.
func New(logger *slog.Logger, opts Options, rescan RescanFunc) (*Watcher, error) {
	if rescan == nil {
		return nil, errors.New("watcher requires a rescan function")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	opts.setDefaults()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		logger:  logging.NewComponentLogger(logger, "watcher"),
		opts:    opts,
		fsw:     fsw,
		rescan:  rescan,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 64),
		done:    make(chan struct{}),
	}, nil
}

// Watch registers root and every directory below it.
func (w *Watcher) Watch(root string) error {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", root)
	}
	w.root = root
	return w.addTree(root)
}

// WatchedDirs returns the directories currently registered.
func (w *Watcher) WatchedDirs() []string {
	return w.fsw.WatchList()
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.WarnWithContext(w.logger, "directory not watched", "watch_walk_failed",
				logging.String(logging.FieldDirectory, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes in this directory are not picked up"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.opts.skipDir(w.root, path) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logging.WarnWithContext(w.logger, "failed to add watch", "watch_add_failed",
				logging.String(logging.FieldDirectory, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches for large trees"),
				logging.String(logging.FieldImpact, "changes in this directory are not picked up"),
			)
			return nil
		}
		w.logger.Debug("added watch", logging.String(logging.FieldDirectory, path))
		return nil
	})
}

// Run dispatches events until ctx is cancelled. Rescans run one at a time on
// the calling goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for changes",
		logging.String("root", w.root),
		logging.Int("directories", len(w.fsw.WatchList())),
		logging.Duration("debounce", w.opts.Debounce),
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "filesystem watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some changes may be missed until the next full scan"),
			)
		case dir := <-w.ready:
			w.runRescan(ctx, dir)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	parent := filepath.Dir(path)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if w.opts.skipDir(w.root, path) {
				return
			}
			if err := w.addTree(path); err != nil {
				w.logger.Debug("watch new directory failed", logging.Error(err))
			}
			w.schedule(parent)
			w.schedule(path)
			return
		}
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	if w.opts.ignoreFile(path) {
		return
	}
	w.schedule(parent)
}

// schedule (re)starts the quiet-period timer for dir.
func (w *Watcher) schedule(dir string) {
	if !w.within(dir) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[dir]; ok {
		timer.Reset(w.opts.Debounce)
		return
	}
	w.pending[dir] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()
		select {
		case w.ready <- dir:
		case <-w.done:
		}
	})
}

func (w *Watcher) within(dir string) bool {
	if w.root == "" {
		return true
	}
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (w *Watcher) runRescan(ctx context.Context, dir string) {
	if _, err := os.Stat(dir); err != nil {
		w.logger.Debug("skipping rescan of vanished directory", logging.String(logging.FieldDirectory, dir))
		return
	}
	started := time.Now()
	metrics.RescansTotal.WithLabelValues("watch").Inc()
	if err := w.rescan(ctx, dir); err != nil {
		logging.WarnWithContext(w.logger, "rescan failed", "watch_rescan_failed",
			logging.String(logging.FieldDirectory, dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "index record for this directory may be stale"),
		)
		return
	}
	w.logger.Info("directory rescanned",
		logging.String(logging.FieldDirectory, dir),
		logging.Duration("duration", time.Since(started)),
	)
}

// Close stops pending timers and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.pending {
		timer.Stop()
	}
	clear(w.pending)
	close(w.done)
	w.mu.Unlock()
	return w.fsw.Close()
}
