package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
)

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("halawa drilling", "halawa drilling"))
}

func TestRatio_BothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatio_OneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("halawa", ""))
}

func TestRatio_NearMatch(t *testing.T) {
	// One-character edit on a long query stays above 0.92
	r := Ratio("drilling delays near halawa valley", "drilling delays near halawa walley")
	assert.Greater(t, r, 0.92)
}

func TestRatio_DifferentQueries(t *testing.T) {
	r := Ratio("drilling near halawa", "pavement design kahului")
	assert.Less(t, r, 0.5)
}

func TestRatio_KnownValue(t *testing.T) {
	// "abcd" vs "bcde": longest match "bcd" (3), T = 8, ratio = 6/8
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
}

func TestCache_RoundTrip(t *testing.T) {
	c := New[string](0.92, 10)

	c.Put("guest", "drilling delays near halawa valley", "answer-1")

	// Similar query (>= threshold) returns the stored result unchanged
	got, ok := c.Get("guest", "drilling delays near halawa walley")
	require.True(t, ok)
	assert.Equal(t, "answer-1", got)
}

func TestCache_BelowThresholdMisses(t *testing.T) {
	c := New[string](0.92, 10)
	c.Put("guest", "drilling near halawa", "answer-1")

	_, ok := c.Get("guest", "pavement design kahului")
	assert.False(t, ok)
}

func TestCache_PerUserIsolation(t *testing.T) {
	c := New[string](0.92, 10)
	c.Put("alice", "drilling near halawa", "answer-1")

	_, ok := c.Get("bob", "drilling near halawa")
	assert.False(t, ok)
}

func TestCache_InvalidateAll(t *testing.T) {
	c := New[string](0.92, 10)
	c.Put("guest", "drilling near halawa", "answer-1")
	c.Put("alice", "pavement kahului", "answer-2")

	c.InvalidateAll()

	_, ok := c.Get("guest", "drilling near halawa")
	assert.False(t, ok)
	_, ok = c.Get("alice", "pavement kahului")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_CaseAndWhitespaceNormalized(t *testing.T) {
	c := New[string](0.92, 10)
	c.Put("guest", "  Drilling Near Halawa  ", "answer-1")

	got, ok := c.Get("guest", "drilling near halawa")
	require.True(t, ok)
	assert.Equal(t, "answer-1", got)
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New[string](0.92, 2)
	c.Put("guest", "query one about drilling", "a")
	c.Put("guest", "query two about pavement", "b")
	c.Put("guest", "query three about seismic", "c")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("guest", "query one about drilling")
	assert.False(t, ok, "oldest entry evicted")
}

func TestCache_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c := New[string](0.92, 10)
	c.Put("guest", "drilling near halawa", "answer-1")
	require.NoError(t, c.SaveTo(path))

	restored := New[string](0.92, 10)
	require.NoError(t, restored.LoadFrom(path))

	got, ok := restored.Get("guest", "drilling near halawa")
	require.True(t, ok)
	assert.Equal(t, "answer-1", got)
}

func TestCache_LoadMissingFileIsFine(t *testing.T) {
	c := New[string](0.92, 10)
	assert.NoError(t, c.LoadFrom(filepath.Join(t.TempDir(), "nope.json")))
}

func TestCache_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	c := New[string](0.92, 10)
	err := c.LoadFrom(path)

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeCacheCorrupt, seekerrors.GetCode(err))
}

func TestCache_DefaultParameters(t *testing.T) {
	c := New[string](0, 0)
	assert.Equal(t, DefaultThreshold, c.threshold)
	assert.Equal(t, DefaultMaxPerUser, c.perUser)
}
