package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportseek/reportseek/internal/cache"
	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/query"
	"github.com/reportseek/reportseek/internal/store"
)

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *store.MemoryStore) {
	t.Helper()

	s := store.NewMemoryStore()
	ctx := context.Background()
	docs := []*store.Document{
		{Filename: "8292-05.txt", Content: "Boring logs near Halawa valley. Drilling encountered basalt. Groundwater was shallow."},
		{Filename: "7105-01.txt", Content: "Pavement design for Kahului airport. Subgrade CBR testing complete."},
		{Filename: "9001-02.txt", Content: "Halawa stream grading permit. Halawa flood channel improvements. Retaining wall design."},
		{Filename: "notes.txt", Content: "General office notes about holidays and scheduling."},
	}
	for _, d := range docs {
		require.NoError(t, s.Put(ctx, d))
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]EngineOption{WithLogger(quiet)}, opts...)
	return NewEngine(s, opts...), s
}

func TestEngine_EmptyQueryRejected(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Search(context.Background(), Request{Query: "   "})

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeInvalidQuery, seekerrors.GetCode(err))
}

func TestEngine_NoMatchesIsEmptyNotError(t *testing.T) {
	e, _ := newTestEngine(t)

	resp, err := e.Search(context.Background(), Request{Query: "volcano tsunami warnings"})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_RanksMatchingDocuments(t *testing.T) {
	e, _ := newTestEngine(t)

	resp, err := e.Search(context.Background(), Request{Query: "drilling near Halawa"})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	// 9001-02 mentions Halawa twice; 8292-05 mentions both terms once each.
	filenames := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		filenames = append(filenames, r.Filename)
	}
	assert.Contains(t, filenames, "8292-05.txt")
	assert.Contains(t, filenames, "9001-02.txt")
	assert.NotContains(t, filenames, "notes.txt")
	for _, r := range resp.Results {
		assert.Greater(t, r.Score, 0.0)
		assert.NotEmpty(t, r.Snippet)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	req := Request{Query: "Halawa drilling groundwater"}

	first, err := e.Search(ctx, req)
	require.NoError(t, err)
	second, err := e.Search(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_EntryBarExcludesZeroHitCandidates(t *testing.T) {
	// A candidate the backend returns but with no exact word-boundary
	// hit must not appear at all.
	e, s := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &store.Document{
		Filename: "6000-01.txt",
		Content:  "Redrilling and predrilled shafts only.",
	}))

	resp, err := e.Search(ctx, Request{Query: "drilling schedule"})

	require.NoError(t, err)
	for _, r := range resp.Results {
		assert.NotEqual(t, "6000-01.txt", r.Filename)
	}
}

func TestEngine_TopKCutoff(t *testing.T) {
	e, _ := newTestEngine(t, WithTopK(1))

	resp, err := e.Search(context.Background(), Request{Query: "Halawa"})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestEngine_RangeFilter(t *testing.T) {
	e, _ := newTestEngine(t)
	minID, maxID := 8000, 9999

	resp, err := e.Search(context.Background(), Request{
		Query:    "Halawa",
		RangeMin: &minID,
		RangeMax: &maxID,
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.NotEqual(t, "7105-01.txt", r.Filename)
		assert.NotEqual(t, "notes.txt", r.Filename)
	}
}

func TestEngine_BooleanAnd(t *testing.T) {
	e, _ := newTestEngine(t)

	resp, err := e.Search(context.Background(), Request{
		Query:           "Halawa AND drilling",
		UseBooleanLogic: true,
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "8292-05.txt", resp.Results[0].Filename)
}

func TestEngine_BooleanMalformed(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Search(context.Background(), Request{
		Query:           "Halawa AND OR drilling",
		UseBooleanLogic: true,
	})

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeMalformedBoolean, seekerrors.GetCode(err))
}

func TestEngine_InvertedRangeRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	minID, maxID := 9000, 7000

	_, err := e.Search(context.Background(), Request{
		Query:    "Halawa",
		RangeMin: &minID,
		RangeMax: &maxID,
	})

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeInvalidRange, seekerrors.GetCode(err))
}

func TestEngine_CacheHitAndInvalidation(t *testing.T) {
	c := cache.New[Response](0.92, 16)
	e, s := newTestEngine(t, WithCache(c))
	ctx := context.Background()

	first, err := e.Search(ctx, Request{Query: "drilling near Halawa"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)
	assert.Equal(t, 1, c.Len())

	// A near-identical query is served from cache.
	again, err := e.Search(ctx, Request{Query: "drilling near Halawa."})
	require.NoError(t, err)
	assert.Equal(t, first.Results, again.Results)
	assert.Equal(t, 1, c.Len())

	// Any document mutation flushes the cache wholesale.
	require.NoError(t, s.Put(ctx, &store.Document{Filename: "5000-01.txt", Content: "New Halawa drilling report."}))
	e.OnDocumentsChanged()
	assert.Zero(t, c.Len())
}

// nativeStore claims native scoring but only attaches scores when
// scoreAll is set, so the degraded path is observable.
type nativeStore struct {
	*store.MemoryStore
	scoreAll bool
}

func (n *nativeStore) FetchCandidates(ctx context.Context, q *query.BackendQuery) ([]*store.Document, error) {
	docs, err := n.MemoryStore.FetchCandidates(ctx, q)
	if err != nil {
		return nil, err
	}
	if n.scoreAll {
		for i, d := range docs {
			d.NativeScore = float64(len(docs) - i)
		}
	}
	return docs, nil
}

func (n *nativeStore) Capabilities() store.Capabilities {
	return store.Capabilities{NativeScores: true}
}

func TestEngine_DegradedWhenNativeScoresMissing(t *testing.T) {
	ctx := context.Background()
	ns := &nativeStore{MemoryStore: store.NewMemoryStore()}
	require.NoError(t, ns.Put(ctx, &store.Document{Filename: "8292-05.txt", Content: "Drilling at Halawa."}))

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(ns, WithLogger(quiet))

	resp, err := e.Search(ctx, Request{Query: "drilling"})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.True(t, resp.Degraded)
}

func TestEngine_NotDegradedWithNativeScores(t *testing.T) {
	ctx := context.Background()
	ns := &nativeStore{MemoryStore: store.NewMemoryStore(), scoreAll: true}
	require.NoError(t, ns.Put(ctx, &store.Document{Filename: "8292-05.txt", Content: "Drilling at Halawa."}))

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(ns, WithLogger(quiet))

	resp, err := e.Search(ctx, Request{Query: "drilling"})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.False(t, resp.Degraded)
}

func TestEngine_NativeScoreHitBoost(t *testing.T) {
	ctx := context.Background()
	ns := &nativeStore{MemoryStore: store.NewMemoryStore(), scoreAll: true}
	require.NoError(t, ns.Put(ctx, &store.Document{Filename: "a.txt", Content: "drilling"}))

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(ns, WithLogger(quiet))

	resp, err := e.Search(ctx, Request{Query: "drilling"})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	// native 1.0, one hit, default boost 0.1
	assert.InDelta(t, 1.1, resp.Results[0].Score, 1e-9)
}

func TestEngine_RankedDocumentsCarryContent(t *testing.T) {
	e, _ := newTestEngine(t)

	docs, err := e.RankedDocuments(context.Background(), Request{Query: "Halawa grading"})

	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, "9001-02.txt", docs[0].Filename)
	assert.Contains(t, docs[0].Content, "grading permit")
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score)
	}
}
