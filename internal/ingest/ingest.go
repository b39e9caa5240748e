// Package ingest loads report text files into the document store. A
// cross-process file lock serializes ingesters; concurrent file reads
// run through a bounded worker pool.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/store"
)

// Result summarizes one ingestion run.
type Result struct {
	Ingested int      `json:"ingested"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// Ingester loads files into a document store.
type Ingester struct {
	store    store.DocumentStore
	workers  int
	lockPath string
	logger   *slog.Logger
	onChange func()
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithWorkers bounds concurrent file reads.
func WithWorkers(n int) Option {
	return func(i *Ingester) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithLockPath sets the cross-process lock file. Empty disables
// locking.
func WithLockPath(path string) Option {
	return func(i *Ingester) {
		i.lockPath = path
	}
}

// WithLogger replaces the ingester logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Ingester) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithOnChange registers a callback fired after any run that mutates
// the document set. Wire this to cache invalidation.
func WithOnChange(fn func()) Option {
	return func(i *Ingester) {
		i.onChange = fn
	}
}

// NewIngester creates an ingester over the store.
func NewIngester(docStore store.DocumentStore, opts ...Option) *Ingester {
	i := &Ingester{
		store:   docStore,
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestDir ingests every .txt file directly under dir.
func (i *Ingester) IngestDir(ctx context.Context, dir string, replace bool) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeFileNotFound,
			fmt.Sprintf("cannot read ingest directory %s", dir), err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return i.IngestFiles(ctx, paths, replace)
}

// IngestFiles ingests the given files. With replace false a filename
// already in the store is skipped, never overwritten; with replace
// true existing documents are re-indexed in place. Per-file failures
// are collected, not fatal.
func (i *Ingester) IngestFiles(ctx context.Context, paths []string, replace bool) (*Result, error) {
	unlock, err := i.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		mu  sync.Mutex
		res Result
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, path := range paths {
		g.Go(func() error {
			status, err := i.ingestOne(ctx, path, replace)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				i.logger.Warn("ingest_file_failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				res.Failed = append(res.Failed, filepath.Base(path))
			case status:
				res.Ingested++
			default:
				res.Skipped++
			}
			// Store connectivity loss aborts the run; a single bad file
			// does not.
			if seekerrors.GetCode(err) == seekerrors.ErrCodeStoreUnavailable {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &res, err
	}

	sort.Strings(res.Failed)
	i.logger.Info("ingest_completed",
		slog.Int("ingested", res.Ingested),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", len(res.Failed)))

	if res.Ingested > 0 && i.onChange != nil {
		i.onChange()
	}
	return &res, nil
}

// Remove deletes documents by filename.
func (i *Ingester) Remove(ctx context.Context, filenames []string) error {
	unlock, err := i.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := i.store.Remove(ctx, filenames); err != nil {
		return err
	}
	i.logger.Info("ingest_removed", slog.Int("count", len(filenames)))
	if i.onChange != nil {
		i.onChange()
	}
	return nil
}

// ingestOne reads and stores one file. Returns true when the document
// set changed.
func (i *Ingester) ingestOne(ctx context.Context, path string, replace bool) (bool, error) {
	filename := filepath.Base(path)

	if !replace {
		exists, err := i.store.Exists(ctx, filename)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, seekerrors.New(seekerrors.ErrCodeFileNotFound,
			fmt.Sprintf("cannot read %s", path), err)
	}

	doc := &store.Document{
		Filename: filename,
		Content:  string(data),
	}
	if date, ok := ExtractDate(doc.Content); ok {
		doc.Date = date
	}

	if replace {
		err = i.store.Replace(ctx, doc)
	} else {
		err = i.store.Put(ctx, doc)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// acquireLock takes the cross-process ingest lock, if configured.
// A held lock is an immediate error; ingestion never queues behind
// another process.
func (i *Ingester) acquireLock() (func(), error) {
	if i.lockPath == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(i.lockPath), 0o755); err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeIngestLocked,
			"cannot create lock directory", err)
	}

	fl := flock.New(i.lockPath)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeIngestLocked,
			"cannot acquire ingest lock", err)
	}
	if !acquired {
		return nil, seekerrors.New(seekerrors.ErrCodeIngestLocked,
			"another ingestion is in progress", nil).
			WithSuggestion("wait for the other ingester to finish and retry")
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			i.logger.Warn("ingest_unlock_failed", slog.String("error", err.Error()))
		}
	}, nil
}
