package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportseek/reportseek/internal/cache"
	"github.com/reportseek/reportseek/internal/search"
	"github.com/reportseek/reportseek/internal/session"
	"github.com/reportseek/reportseek/internal/store"
)

type fakeSummarizer struct {
	text  string
	err   error
	calls int
	docs  []search.RankedDocument
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, docs []search.RankedDocument) (string, error) {
	f.calls++
	f.docs = docs
	return f.text, f.err
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()

	s := store.NewMemoryStore()
	ctx := context.Background()
	docs := []*store.Document{
		{Filename: "8292-05.txt", Content: "Drilling near Halawa was delayed two weeks. Groundwater was very shallow. Work resumed in March."},
		{Filename: "9001-02.txt", Content: "Halawa flood channel grading. Halawa retaining wall design complete."},
	}
	for _, d := range docs {
		require.NoError(t, s.Put(ctx, d))
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := search.NewEngine(s, search.WithLogger(quiet))
	opts = append([]ServiceOption{WithServiceLogger(quiet)}, opts...)
	return NewService(engine, opts...)
}

func TestService_EmptyQuestionRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Ask(context.Background(), search.Request{Query: "  "}, nil)

	require.Error(t, err)
}

func TestService_SynthesizedAnswer(t *testing.T) {
	fake := &fakeSummarizer{text: "Drilling was delayed two weeks by shallow groundwater.\n\nSources: 8292-05.txt"}
	svc := newTestService(t, WithSummarizer(fake))

	ans, err := svc.Ask(context.Background(), search.Request{Query: "drilling delays near Halawa"}, nil)

	require.NoError(t, err)
	assert.False(t, ans.Extractive)
	assert.Contains(t, ans.Text, "delayed two weeks")
	assert.Contains(t, ans.Sources, "8292-05.txt")
	assert.Equal(t, 1, fake.calls)
}

func TestService_SummarizerReceivesRankOrder(t *testing.T) {
	fake := &fakeSummarizer{text: "ok\n\nSources: x"}
	svc := newTestService(t, WithSummarizer(fake))

	_, err := svc.Ask(context.Background(), search.Request{Query: "Halawa grading"}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, fake.docs)
	// 9001-02 mentions Halawa twice plus grading; it must arrive first.
	assert.Equal(t, "9001-02.txt", fake.docs[0].Filename)
	for i := 1; i < len(fake.docs); i++ {
		assert.GreaterOrEqual(t, fake.docs[i-1].Score, fake.docs[i].Score)
	}
}

func TestService_AppendsSourcesLineWhenMissing(t *testing.T) {
	fake := &fakeSummarizer{text: "Drilling was delayed."}
	svc := newTestService(t, WithSummarizer(fake))

	ans, err := svc.Ask(context.Background(), search.Request{Query: "drilling delays"}, nil)

	require.NoError(t, err)
	assert.Contains(t, ans.Text, "_Sources: 8292-05.txt_")
}

func TestService_FallsBackWhenSummarizerFails(t *testing.T) {
	fake := &fakeSummarizer{err: errors.New("connection refused")}
	svc := newTestService(t, WithSummarizer(fake))

	ans, err := svc.Ask(context.Background(), search.Request{Query: "drilling delays near Halawa"}, nil)

	require.NoError(t, err, "summarizer failure degrades, never fails the ask")
	assert.True(t, ans.Extractive)
	assert.Contains(t, ans.Text, "**Answer (extractive)**")
	assert.Contains(t, ans.Text, "_Sources:")
}

func TestService_ExtractiveWithoutSummarizer(t *testing.T) {
	svc := newTestService(t)

	ans, err := svc.Ask(context.Background(), search.Request{Query: "drilling delays near Halawa"}, nil)

	require.NoError(t, err)
	assert.True(t, ans.Extractive)
	assert.Contains(t, ans.Text, "delayed two weeks")
}

func TestService_NoMatchesAnswer(t *testing.T) {
	svc := newTestService(t)

	ans, err := svc.Ask(context.Background(), search.Request{Query: "volcano tsunami warnings"}, nil)

	require.NoError(t, err)
	assert.True(t, ans.Extractive)
	assert.Equal(t, noInfoAnswer, ans.Text)
	assert.Empty(t, ans.Sources)
}

func TestService_CachesAnswers(t *testing.T) {
	c := cache.New[Answer](0.92, 16)
	fake := &fakeSummarizer{text: "answer\n\nSources: 8292-05.txt"}
	svc := newTestService(t, WithSummarizer(fake), WithAnswerCache(c))
	ctx := context.Background()

	first, err := svc.Ask(ctx, search.Request{Query: "drilling delays near Halawa valley"}, nil)
	require.NoError(t, err)

	// Near-identical question hits the cache; the model is not called again.
	again, err := svc.Ask(ctx, search.Request{Query: "drilling delays near Halawa walley"}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, fake.calls)

	svc.OnDocumentsChanged()
	assert.Zero(t, c.Len())
}

func TestService_RecordsSessionHistory(t *testing.T) {
	h, err := session.NewSQLiteHistory("")
	require.NoError(t, err)
	defer h.Close()

	fake := &fakeSummarizer{text: "answer\n\nSources: 8292-05.txt"}
	svc := newTestService(t, WithSummarizer(fake))
	sess := session.NewSession("alice", h)

	_, err = svc.Ask(context.Background(), search.Request{Query: "drilling delays near Halawa"}, sess)
	require.NoError(t, err)

	recs, err := h.List(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "drilling delays near Halawa", recs[0].Question)
	assert.NotEmpty(t, recs[0].Sources)
	assert.Equal(t, 1, sess.Len())
}
