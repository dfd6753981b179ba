// Package watch calls a function whenever files below a directory change.
// Bursts of events are debounced into a single call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inspektor-gadget/website/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before the
// change function runs.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called after changes settle. Errors are logged and do not
// stop the watcher.
type ChangeFunc func(ctx context.Context) error

// Watcher monitors a directory tree.
type Watcher struct {
	root      string
	recursive bool
	debounce  time.Duration
	filter    func(path string) bool
	onChange  ChangeFunc
	watcher   *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFilter limits the events that trigger a change to paths accepted by f.
func WithFilter(f func(path string) bool) Option {
	return func(w *Watcher) { w.filter = f }
}

// New creates a watcher for root. root may be a directory, watched
// recursively, or a single file, in which case only its directory is watched
// and only events for that file count.
func New(root string, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:      abs,
		recursive: info.IsDir(),
		debounce:  DefaultDebounce,
		onChange:  onChange,
		watcher:   fw,
	}
	if !info.IsDir() {
		file := abs
		w.root = filepath.Dir(abs)
		w.filter = func(p string) bool { return p == file }
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if w.recursive {
		if err := w.addTree(w.root); err != nil {
			return err
		}
	} else if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	slog.Info("Watching for changes", logfields.Path(w.root))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if w.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				slog.Error("Change handler failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if Ignored(filepath.Base(event.Name)) {
		return false
	}
	if w.filter != nil && !w.filter(event.Name) {
		return false
	}
	return true
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && Ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// Ignored reports whether a file name belongs to hidden files or editor
// scratch files.
func Ignored(name string) bool {
	switch {
	case name == "":
		return false
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "#"):
		return true
	case strings.HasSuffix(name, "~"),
		strings.HasSuffix(name, ".swp"),
		strings.HasSuffix(name, ".swx"),
		strings.HasSuffix(name, ".tmp"):
		return true
	case name == "4913":
		// vim probes directory writability with this file.
		return true
	}
	return false
}
