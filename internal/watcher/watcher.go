// Package watcher reruns documentation generation when the recipe tree or
// the templates change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a change triggers a run
const DefaultDebounce = 2 * time.Second

// Watcher monitors directory trees and invokes a callback once changes settle
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      logrus.FieldLogger
}

// New creates a watcher. A non-positive debounce selects DefaultDebounce.
func New(debounce time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{fsw: fsw, debounce: debounce, log: log}, nil
}

// AddRecursive watches root and every directory below it, skipping hidden ones
func (w *Watcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange after every burst of file system events, once no new
// event arrived for the debounce period. Runs never overlap; an error from
// onChange is logged and watching continues. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.WithField("file", event.Name).Debugf("Change detected: %s", event.Op)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.AddRecursive(event.Name); err != nil {
						w.log.WithError(err).Warn("Failed to watch new directory")
					}
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.log.Info("Changes settled, regenerating documentation")
			if err := onChange(ctx); err != nil {
				w.log.WithError(err).Error("Regeneration failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Error("File watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
