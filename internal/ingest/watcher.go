package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
)

// DefaultDebounce batches bursts of filesystem events, such as an
// editor writing a file in several chunks, into one ingestion run.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a drop directory and ingests .txt files as they
// appear. Deleted files are removed from the store.
type Watcher struct {
	ingester *Ingester
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher over dir. A non-positive debounce uses
// the default.
func NewWatcher(ing *Ingester, dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{ingester: ing, dir: dir, debounce: debounce, logger: logger}
}

// Run watches until ctx is cancelled. Ingestion failures for
// individual files are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return seekerrors.InternalError("cannot create filesystem watcher", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return seekerrors.New(seekerrors.ErrCodeFileNotFound,
			"cannot watch ingest directory "+w.dir, err)
	}
	w.logger.Info("watch_started",
		slog.String("dir", w.dir),
		slog.Duration("debounce", w.debounce))

	var (
		pending = make(map[string]struct{})
		removed = make(map[string]struct{})
		timer   = time.NewTimer(w.debounce)
	)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".txt") {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				pending[ev.Name] = struct{}{}
				delete(removed, filepath.Base(ev.Name))
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				removed[filepath.Base(ev.Name)] = struct{}{}
				delete(pending, ev.Name)
			default:
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))

		case <-timer.C:
			w.flush(ctx, pending, removed)
			pending = make(map[string]struct{})
			removed = make(map[string]struct{})
		}
	}
}

// flush runs the batched ingest and removal for a debounce window.
func (w *Watcher) flush(ctx context.Context, pending, removed map[string]struct{}) {
	if len(pending) > 0 {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		// Rewritten files must be re-indexed, so replace rather than skip.
		if _, err := w.ingester.IngestFiles(ctx, paths, true); err != nil {
			w.logger.Warn("watch_ingest_failed", slog.String("error", err.Error()))
		}
	}

	if len(removed) > 0 {
		names := make([]string, 0, len(removed))
		for n := range removed {
			names = append(names, n)
		}
		if err := w.ingester.Remove(ctx, names); err != nil {
			w.logger.Warn("watch_remove_failed", slog.String("error", err.Error()))
		}
	}
}
