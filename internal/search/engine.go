// Package search runs the full retrieval pipeline: keyword
// extraction, query construction, candidate fetch, scoring, ranking,
// and snippet extraction.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reportseek/reportseek/internal/cache"
	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/keywords"
	"github.com/reportseek/reportseek/internal/query"
	"github.com/reportseek/reportseek/internal/rank"
	"github.com/reportseek/reportseek/internal/scorer"
	"github.com/reportseek/reportseek/internal/snippet"
	"github.com/reportseek/reportseek/internal/store"
)

// Request is a single search invocation.
type Request struct {
	// Query is the raw free-text query.
	Query string `json:"query"`

	// User identifies the caller for cache bucketing. Empty means the
	// shared "guest" bucket.
	User string `json:"user,omitempty"`

	// RangeMin/RangeMax restrict candidates to documents whose
	// filename-derived identifier falls in [RangeMin, RangeMax].
	RangeMin *int `json:"rangeMin,omitempty"`
	RangeMax *int `json:"rangeMax,omitempty"`

	// UseBooleanLogic treats AND/OR words in the query as connectives.
	UseBooleanLogic bool `json:"useBooleanLogic,omitempty"`
}

// Result is one ranked document in a response.
type Result struct {
	Filename string  `json:"filename"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}

// Response is the outcome of a search.
type Response struct {
	Results []Result `json:"results"`

	// Degraded reports that native relevance scores were unavailable
	// and the heuristic fallback ordered the results.
	Degraded bool `json:"degraded,omitempty"`
}

// RankedDocument pairs a full document with its final score, in rank
// order. Used by the answering path, which needs full content.
type RankedDocument struct {
	Filename string
	Content  string
	Score    float64
}

// Engine wires the pipeline components together. Safe for concurrent
// use; the cache is the only shared mutable state and guards itself.
type Engine struct {
	store     store.DocumentStore
	extractor *keywords.Extractor
	builder   *query.Builder
	fallback  scorer.Scorer
	hits      *scorer.HitCountScorer
	cache     *cache.Cache[Response]
	synonyms  []keywords.SynonymGroup
	logger    *slog.Logger

	topK           int
	snippetMax     int
	snippetHitCap  int
	nativeHitBoost float64
}

// NewEngine creates an Engine over the given document store.
func NewEngine(docStore store.DocumentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          docStore,
		extractor:      keywords.NewExtractor(),
		builder:        query.NewBuilder(query.ModeMatch),
		fallback:       scorer.NewBM25Scorer(1.5, 0.75),
		hits:           scorer.NewHitCountScorer(2.0),
		synonyms:       keywords.DefaultSynonyms,
		logger:         slog.Default(),
		topK:           3,
		snippetMax:     snippet.DefaultMaxSentences,
		snippetHitCap:  snippet.DefaultMaxPerKeyword,
		nativeHitBoost: 0.1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the full pipeline for a request.
//
// For a fixed document set and query, repeated invocations return
// identical output: candidate order comes from the store, ranking is
// stable, and tie-breaks are first-seen wins.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, seekerrors.InvalidQuery("query is empty")
	}

	user := req.User
	if user == "" {
		user = "guest"
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(user, req.Query); ok {
			e.logger.Debug("search_cache_hit",
				slog.String("user", user),
				slog.String("query", req.Query))
			return &cached, nil
		}
	}

	ranked, degraded, err := e.pipeline(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &Response{Results: []Result{}, Degraded: degraded}
	terms := e.termsFor(req)
	for _, d := range ranked {
		resp.Results = append(resp.Results, Result{
			Filename: d.Filename,
			Snippet:  snippet.Snippet(d.Content, terms, e.snippetMax, e.snippetHitCap),
			Score:    d.Score,
		})
	}

	e.logger.Info("search_completed",
		slog.String("user", user),
		slog.String("query", req.Query),
		slog.Int("results", len(resp.Results)),
		slog.Bool("degraded", degraded))

	if e.cache != nil {
		e.cache.Put(user, req.Query, *resp)
	}
	return resp, nil
}

// RankedDocuments runs the pipeline and returns full documents in rank
// order, for callers that hand content to a summarizer. Rank order is
// meaningful downstream; do not reorder.
func (e *Engine) RankedDocuments(ctx context.Context, req Request) ([]RankedDocument, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, seekerrors.InvalidQuery("query is empty")
	}
	ranked, _, err := e.pipeline(ctx, req)
	return ranked, err
}

// OnDocumentsChanged invalidates the cache. Must be called on every
// ingestion or deletion; stale cached results are a correctness bug.
func (e *Engine) OnDocumentsChanged() {
	if e.cache != nil {
		e.cache.InvalidateAll()
	}
	e.logger.Info("search_cache_invalidated")
}

// termsFor returns the query's term texts in rank order.
func (e *Engine) termsFor(req Request) []string {
	if req.UseBooleanLogic {
		var texts []string
		for _, el := range e.extractor.ExtractWithLogic(req.Query) {
			if !el.IsConnective() {
				texts = append(texts, el.Term.Text)
			}
		}
		return texts
	}

	extracted := keywords.ExpandSynonyms(e.extractor.Extract(req.Query), e.synonyms)
	texts := make([]string, 0, len(extracted))
	for _, t := range extracted {
		texts = append(texts, t.Text)
	}
	return texts
}

// pipeline runs extract, build, fetch, score, and rank.
func (e *Engine) pipeline(ctx context.Context, req Request) ([]RankedDocument, bool, error) {
	var rng *query.Range
	if req.RangeMin != nil || req.RangeMax != nil {
		rng = &query.Range{Min: 0, Max: int(^uint(0) >> 1)}
		if req.RangeMin != nil {
			rng.Min = *req.RangeMin
		}
		if req.RangeMax != nil {
			rng.Max = *req.RangeMax
		}
	}

	var q *query.BackendQuery
	var err error
	if req.UseBooleanLogic {
		seq := e.extractor.ExtractWithLogic(req.Query)
		if len(seq) == 0 {
			return nil, false, nil
		}
		q, err = e.builder.BuildBoolean(seq, rng)
	} else {
		terms := keywords.ExpandSynonyms(e.extractor.Extract(req.Query), e.synonyms)
		if len(terms) == 0 {
			// Query text yielded nothing searchable: a valid no-match
			// outcome, not an error.
			return nil, false, nil
		}
		q, err = e.builder.Build(terms, rng)
	}
	if err != nil {
		return nil, false, err
	}

	candidates, err := e.store.FetchCandidates(ctx, q)
	if err != nil {
		return nil, false, err
	}

	scored, degraded := e.score(q, candidates)
	ranked := rank.Rank(scored, e.topK)

	out := make([]RankedDocument, 0, len(ranked))
	for _, d := range ranked {
		out = append(out, RankedDocument{Filename: d.Filename, Content: d.Content, Score: d.Score})
	}
	return out, degraded, nil
}

// score turns candidates into scored documents. At least one exact
// word-boundary term hit is the entry bar; zero-hit documents are
// excluded entirely, not ranked last. When the backend supplied native
// relevance, the final score is native * (1 + boost*hits); otherwise
// the fallback scorer orders the survivors and the degradation is
// logged, never fatal.
func (e *Engine) score(q *query.BackendQuery, candidates []*store.Document) ([]rank.ScoredDocument, bool) {
	useNative := e.store.Capabilities().NativeScores
	degraded := false

	var scored []rank.ScoredDocument
	for _, doc := range candidates {
		hits := e.hits.Score(q.Terms, doc.Content)
		if hits == 0 {
			continue
		}

		var s float64
		switch {
		case useNative && doc.NativeScore > 0:
			s = doc.NativeScore * (1 + e.nativeHitBoost*hits)
		case useNative:
			// Backend claims native scoring but yielded none for this
			// candidate. Quality degrades gracefully; never fatal.
			if !degraded {
				e.logger.Warn("scoring_degraded",
					slog.String("code", seekerrors.ErrCodeScoringDegraded),
					slog.String("reason", "native score unavailable, heuristic fallback"))
			}
			degraded = true
			s = e.fallback.Score(q.Terms, doc.Content)
		default:
			s = e.fallback.Score(q.Terms, doc.Content)
		}
		if s == 0 {
			continue
		}
		scored = append(scored, rank.ScoredDocument{
			Filename: doc.Filename,
			Content:  doc.Content,
			Score:    s,
		})
	}
	return scored, degraded
}
