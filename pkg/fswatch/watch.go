// Package fswatch signals when anything below a source directory changes,
// so a mirror pass can start before its interval elapses.
package fswatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/sdejongh/dirmirror/pkg/logging"
)

var fs = afero.NewOsFs()

// Watcher coalesces filesystem events under a directory tree into a
// single pending trigger
type Watcher struct {
	watcher *fsnotify.Watcher
	add     func(path string) error
	trigger chan struct{}
	logger  logging.Logger
	done    chan struct{}
}

// Watch starts watching every directory below root. The returned watcher
// stops when ctx is done or Close is called.
func Watch(ctx context.Context, root string, logger logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	dirs, err := getDirsToWatch(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list directories: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			// Release the handles of the directories added so far
			if err := watcher.Close(); err != nil {
				logger.Warn(ctx, "Failed to close file watcher", logging.Fields{"error": err.Error()})
			}
			return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	w := newWatcher(watcher.Add, logger)
	w.watcher = watcher
	go w.run(ctx, watcher.Events, watcher.Errors)

	logger.Debug(ctx, "Watching source tree", logging.Fields{"root": root, "directories": len(dirs)})
	return w, nil
}

func newWatcher(add func(string) error, logger logging.Logger) *Watcher {
	return &Watcher{
		add:     add,
		trigger: make(chan struct{}, 1),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Trigger receives once for any number of changes since the last receive.
// It is never closed.
func (w *Watcher) Trigger() <-chan struct{} {
	return w.trigger
}

// Close stops watching
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(ctx, event.Name)
			}
			w.signal()

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "File watcher error", logging.Fields{"error": err.Error()})
			// Missed events must not delay the next pass
			w.signal()
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// watchNewDir adds a directory created after the watch started,
// along with anything already created below it
func (w *Watcher) watchNewDir(ctx context.Context, path string) {
	info, err := fs.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	dirs, err := getDirsToWatch(path)
	if err != nil {
		w.logger.Warn(ctx, "Failed to list new directory", logging.Fields{"path": path, "error": err.Error()})
		return
	}

	for _, dir := range dirs {
		if err := w.add(dir); err != nil {
			w.logger.Warn(ctx, "Failed to watch new directory", logging.Fields{"path": dir, "error": err.Error()})
		}
	}
}

// getDirsToWatch returns root and every directory below it. fsnotify does
// not watch recursively.
func getDirsToWatch(root string) (dirs []string, err error) {
	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if path != root {
				// Unreadable subtree; the mirror pass reports it
				return filepath.SkipDir
			}
			return err
		}
		if fi.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
