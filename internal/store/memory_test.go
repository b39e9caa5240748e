package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/keywords"
	"github.com/reportseek/reportseek/internal/query"
)

func likeQuery(t *testing.T, texts ...string) *query.BackendQuery {
	t.Helper()
	var terms []keywords.Term
	for _, txt := range texts {
		terms = append(terms, keywords.Term{Text: txt})
	}
	q, err := query.NewBuilder(query.ModeLike).Build(terms, nil)
	require.NoError(t, err)
	return q
}

func TestMemoryStore_PutSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, &Document{Filename: "7001-00.txt", Content: "original"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "7001-00.txt", Content: "changed"}))

	q := likeQuery(t, "original")
	docs, err := m.FetchCandidates(ctx, q)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "original", docs[0].Content, "re-ingesting an existing filename is a no-op")
}

func TestMemoryStore_ReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, &Document{Filename: "7001-00.txt", Content: "original"}))
	require.NoError(t, m.Replace(ctx, &Document{Filename: "7001-00.txt", Content: "changed"}))

	docs, err := m.FetchCandidates(ctx, likeQuery(t, "changed"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestMemoryStore_FetchWordBoundary(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "a.txt", Content: "the drilling crew"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "b.txt", Content: "a drill was used"}))

	docs, err := m.FetchCandidates(ctx, likeQuery(t, "drill"))
	require.NoError(t, err)

	require.Len(t, docs, 1, "drill must not match inside drilling")
	assert.Equal(t, "b.txt", docs[0].Filename)
}

func TestMemoryStore_EmptyResultIsNotError(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "a.txt", Content: "groundwater"}))

	docs, err := m.FetchCandidates(ctx, likeQuery(t, "pavement"))

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStore_RangeFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for _, f := range []string{"7001-report.txt", "8500-report.txt", "9999-report.txt", "notes.txt"} {
		require.NoError(t, m.Put(ctx, &Document{Filename: f, Content: "drilling site"}))
	}

	var terms []keywords.Term
	terms = append(terms, keywords.Term{Text: "drilling"})
	q, err := query.NewBuilder(query.ModeLike).Build(terms, &query.Range{Min: 7000, Max: 9000})
	require.NoError(t, err)

	docs, err := m.FetchCandidates(ctx, q)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "7001-report.txt", docs[0].Filename)
	assert.Equal(t, "8500-report.txt", docs[1].Filename)
	// notes.txt has no leading digits: excluded from range queries
}

func TestMemoryStore_BooleanAND(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "a.txt", Content: "drilling near Halawa"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "b.txt", Content: "drilling near Kahului"}))

	seq := []keywords.LogicElement{
		{Term: keywords.Term{Text: "Halawa"}},
		{Connective: keywords.ConnectiveAnd},
		{Term: keywords.Term{Text: "drilling"}},
	}
	q, err := query.NewBuilder(query.ModeLike).BuildBoolean(seq, nil)
	require.NoError(t, err)

	docs, err := m.FetchCandidates(ctx, q)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "a.txt", docs[0].Filename)
}

func TestMemoryStore_BooleanMixedPrecedence(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "a.txt", Content: "grading work only"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "b.txt", Content: "drilling near Halawa"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "c.txt", Content: "drilling in Kihei"}))

	// grading OR drilling AND Halawa binds as grading OR (drilling AND
	// Halawa), the precedence SQL applies to the rendered predicate.
	seq := []keywords.LogicElement{
		{Term: keywords.Term{Text: "grading"}},
		{Connective: keywords.ConnectiveOr},
		{Term: keywords.Term{Text: "drilling"}},
		{Connective: keywords.ConnectiveAnd},
		{Term: keywords.Term{Text: "Halawa"}},
	}
	q, err := query.NewBuilder(query.ModeLike).BuildBoolean(seq, nil)
	require.NoError(t, err)

	docs, err := m.FetchCandidates(ctx, q)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Filename)
	assert.Equal(t, "b.txt", docs[1].Filename)
}

func TestMemoryStore_RemoveAndCount(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "a.txt", Content: "x"}))
	require.NoError(t, m.Put(ctx, &Document{Filename: "b.txt", Content: "y"}))

	require.NoError(t, m.Remove(ctx, []string{"a.txt"}))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exists, err := m.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_ClosedStoreFails(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")

	_, err := m.FetchCandidates(ctx, likeQuery(t, "x"))
	assert.Error(t, err)
}

func TestFilenameIdentifier(t *testing.T) {
	tests := []struct {
		filename string
		want     int
		ok       bool
	}{
		{"7001-00.report.pdf", 7001, true},
		{"8292-05.txt", 8292, true},
		{"notes.txt", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := filenameIdentifier(tt.filename)
		assert.Equal(t, tt.ok, ok, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func TestMemoryStore_Get(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, &Document{Filename: "7001-00.txt", Content: "Boring logs", Date: "2023-04-01"}))

	doc, err := m.Get(ctx, "7001-00.txt")
	require.NoError(t, err)
	assert.Equal(t, "Boring logs", doc.Content)
	assert.Equal(t, "2023-04-01", doc.Date)

	// Returned document is a copy; mutating it leaves the store intact.
	doc.Content = "tampered"
	again, err := m.Get(ctx, "7001-00.txt")
	require.NoError(t, err)
	assert.Equal(t, "Boring logs", again.Content)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	m := NewMemoryStore()

	_, err := m.Get(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeFileNotFound, seekerrors.GetCode(err))
}
