package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportseek/reportseek/internal/store"
)

func TestWatcher_IngestsDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMemoryStore()
	ing := NewIngester(s, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(ing, dir, 50*time.Millisecond, quietLogger())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "8292-05.txt"), []byte("Drilling report."), 0o644))

	assert.Eventually(t, func() bool {
		n, err := s.Count(context.Background())
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestWatcher_IgnoresNonTxtFiles(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMemoryStore()
	ing := NewIngester(s, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(ing, dir, 50*time.Millisecond, quietLogger())
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("binary"), 0o644))

	time.Sleep(300 * time.Millisecond)
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWatcher_RemovesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "8292-05.txt")
	require.NoError(t, os.WriteFile(path, []byte("Drilling report."), 0o644))

	s := store.NewMemoryStore()
	ing := NewIngester(s, WithLogger(quietLogger()))
	_, err := ing.IngestDir(context.Background(), dir, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher(ing, dir, 50*time.Millisecond, quietLogger())
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	assert.Eventually(t, func() bool {
		n, err := s.Count(context.Background())
		return err == nil && n == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_MissingDirFails(t *testing.T) {
	ing := NewIngester(store.NewMemoryStore(), WithLogger(quietLogger()))
	w := NewWatcher(ing, filepath.Join(t.TempDir(), "nope"), 0, quietLogger())

	err := w.Run(context.Background())
	require.Error(t, err)
}
