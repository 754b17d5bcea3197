// Package watch reloads model files into the store when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/modelfile"
)

const defaultDebounce = 200 * time.Millisecond

// Target receives every successful reload.
type Target interface {
	Load(models ...metamodel.Model) error
}

type Option func(*Watcher)

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long to wait for a burst of events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches model files and directories. Files are watched through
// their parent directory so editors that replace files on save are seen.
type Watcher struct {
	paths    []string
	target   Target
	logger   *zap.Logger
	debounce time.Duration

	// files holds the watched file paths; directories accept any model file.
	files map[string]struct{}
	dirs  map[string]struct{}

	mu      sync.Mutex
	reloads int
}

// New prepares a watcher for paths. Nothing is watched until Run.
func New(paths []string, target Target, options ...Option) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("watch: target is required")
	}
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths to watch")
	}
	w := &Watcher{
		paths:    append([]string(nil), paths...),
		target:   target,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	for _, path := range w.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("watch: %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		if info.IsDir() {
			w.dirs[abs] = struct{}{}
			continue
		}
		w.files[abs] = struct{}{}
	}
	return w, nil
}

// Reload loads every path and hands the models to the target.
func (w *Watcher) Reload() error {
	models, err := modelfile.LoadPaths(w.paths...)
	if err != nil {
		return err
	}
	if err := w.target.Load(models...); err != nil {
		return err
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	return nil
}

// Reloads counts successful reloads.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Run watches until ctx is cancelled. Configured directories are watched with
// all their subdirectories, including ones created later. A failed reload is
// logged and the store keeps its previous models.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	tree := make(map[string]struct{})
	for dir := range w.dirs {
		if err := w.addTree(fsw, dir, tree); err != nil {
			return err
		}
	}
	for file := range w.files {
		dir := filepath.Dir(file)
		if _, ok := tree[dir]; ok {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
		w.logger.Debug("watching", zap.String("dir", dir))
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.newSubdir(event, tree) {
				if err := w.addTree(fsw, filepath.Clean(event.Name), tree); err != nil {
					w.logger.Warn("watch new directory", zap.Error(err))
				}
				// Files may have landed before the directory was added.
				timer.Reset(w.debounce)
				continue
			}
			if !w.relevant(event, tree) {
				continue
			}
			w.logger.Debug("model file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.Error("reload models", zap.Error(err))
				continue
			}
			w.logger.Info("models reloaded", zap.Strings("paths", w.paths))
		}
	}
}

// addTree watches root and every directory below it, recording them in tree.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string, tree map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("watch: %w", walkErr)
		}
		if !entry.IsDir() {
			return nil
		}
		if _, ok := tree[path]; ok {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		tree[path] = struct{}{}
		w.logger.Debug("watching", zap.String("dir", path))
		return nil
	})
}

func (w *Watcher) newSubdir(event fsnotify.Event, tree map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := tree[filepath.Dir(name)]; !ok {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

func (w *Watcher) relevant(event fsnotify.Event, tree map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	if _, ok := tree[filepath.Dir(name)]; ok {
		_, model := modelfile.FormatFromPath(name)
		return model
	}
	return false
}
