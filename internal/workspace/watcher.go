// internal/workspace/watcher.go
package workspace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeOp is what happened to a working file.
type ChangeOp int

const (
	Modified ChangeOp = iota + 1
	Deleted
)

func (op ChangeOp) String() string {
	if op == Deleted {
		return "deleted"
	}
	return "modified"
}

// Change is one event delivered by a Watcher.
type Change struct {
	Name string
	Op   ChangeOp
}

// Watcher reports changes to the top-level files of a working directory.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewWatcher starts watching root. Nothing is delivered until Run is called.
func NewWatcher(root string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving watch root: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(abs); err != nil {
		w.Close()
		return nil, fmt.Errorf("adding directory to watcher: %w", err)
	}

	return &Watcher{root: abs, watcher: w, logger: logger}, nil
}

// Run delivers changes to handle until ctx is cancelled or the watcher is
// closed. A handler error is logged and does not stop the loop.
func (w *Watcher) Run(ctx context.Context, handle func(Change) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			change, ok := w.translate(event)
			if !ok {
				continue
			}
			if err := handle(change); err != nil {
				w.logger.Warn("handling change",
					zap.String("file", change.Name),
					zap.Stringer("op", change.Op),
					zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// translate maps a raw event to a Change. Events for ignored paths, and
// chmod-only events, are dropped.
func (w *Watcher) translate(event fsnotify.Event) (Change, bool) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Error("getting relative path", zap.Error(err))
		return Change{}, false
	}
	if ShouldIgnore(rel) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Name: rel, Op: Deleted}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return Change{Name: rel, Op: Modified}, true
	}
	return Change{}, false
}

// Close cleans up resources
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
