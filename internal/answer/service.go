package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reportseek/reportseek/internal/cache"
	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/keywords"
	"github.com/reportseek/reportseek/internal/search"
	"github.com/reportseek/reportseek/internal/session"
	"github.com/reportseek/reportseek/internal/snippet"
)

// Answer is a synthesized response to a question.
type Answer struct {
	// Text is the Markdown answer body.
	Text string `json:"text"`

	// Sources lists the filenames the answer drew from, in rank order.
	Sources []string `json:"sources"`

	// Extractive reports that the answer was assembled from snippets
	// rather than synthesized by the model.
	Extractive bool `json:"extractive,omitempty"`
}

const noInfoAnswer = "I don't have enough information in the indexed reports to answer that."

// Service turns questions into answers: it runs the search pipeline,
// hands the ranked documents to the summarizer, and falls back to an
// extractive answer when synthesis is unavailable.
type Service struct {
	engine     *search.Engine
	summarizer Summarizer
	cache      *cache.Cache[Answer]
	extractor  *keywords.Extractor
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSummarizer attaches an LLM summarizer. Without one every answer
// is extractive.
func WithSummarizer(s Summarizer) ServiceOption {
	return func(svc *Service) {
		svc.summarizer = s
	}
}

// WithAnswerCache enables fuzzy answer caching.
func WithAnswerCache(c *cache.Cache[Answer]) ServiceOption {
	return func(svc *Service) {
		svc.cache = c
	}
}

// WithServiceLogger replaces the service logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// NewService creates an answering service over the search engine.
func NewService(engine *search.Engine, opts ...ServiceOption) *Service {
	svc := &Service{
		engine:    engine,
		extractor: keywords.NewExtractor(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ask answers the request's query as a question. When sess is non-nil
// the exchange is recorded to it; history persistence failures are
// logged, never returned, so an answer already produced is not lost.
func (s *Service) Ask(ctx context.Context, req search.Request, sess *session.Session) (*Answer, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, seekerrors.InvalidQuery("question is empty")
	}

	user := req.User
	if sess != nil {
		user = sess.User()
	}
	if user == "" {
		user = "guest"
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(user, req.Query); ok {
			s.logger.Debug("answer_cache_hit",
				slog.String("user", user),
				slog.String("question", req.Query))
			return &cached, nil
		}
	}

	docs, err := s.engine.RankedDocuments(ctx, req)
	if err != nil {
		return nil, err
	}

	ans := s.answer(ctx, req.Query, docs)

	if sess != nil {
		if err := sess.Record(ctx, req.Query, ans.Text, ans.Sources); err != nil {
			s.logger.Warn("answer_history_failed",
				slog.String("code", seekerrors.GetCode(err)),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("answer_completed",
		slog.String("user", user),
		slog.String("question", req.Query),
		slog.Int("sources", len(ans.Sources)),
		slog.Bool("extractive", ans.Extractive))

	if s.cache != nil {
		s.cache.Put(user, req.Query, *ans)
	}
	return ans, nil
}

// OnDocumentsChanged invalidates the answer cache. Call on every
// document mutation.
func (s *Service) OnDocumentsChanged() {
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
}

// answer produces the final answer text for the ranked documents.
func (s *Service) answer(ctx context.Context, question string, docs []search.RankedDocument) *Answer {
	if len(docs) == 0 {
		return &Answer{Text: noInfoAnswer, Sources: []string{}, Extractive: true}
	}

	sources := sourceNames(docs)

	if s.summarizer != nil {
		text, err := s.summarizer.Summarize(ctx, question, docs)
		if err == nil && text != "" {
			if !strings.Contains(text, "Sources:") {
				text += fmt.Sprintf("\n\n_Sources: %s_", strings.Join(sources, ", "))
			}
			return &Answer{Text: text, Sources: sources}
		}
		if err != nil {
			s.logger.Warn("answer_fallback",
				slog.String("code", seekerrors.ErrCodeSummarizerUnavailable),
				slog.String("error", err.Error()))
		}
	}

	return &Answer{Text: s.extractive(question, docs, sources), Sources: sources, Extractive: true}
}

// extractive assembles an answer from snippets alone, lead snippet
// first and up to four supporting bullets.
func (s *Service) extractive(question string, docs []search.RankedDocument, sources []string) string {
	terms := make([]string, 0, 8)
	for _, t := range s.extractor.Extract(question) {
		terms = append(terms, t.Text)
	}

	var snippets []string
	for _, d := range docs {
		snippets = append(snippets, snippet.Extract(d.Content, terms,
			snippet.DefaultMaxSentences, snippet.DefaultMaxPerKeyword)...)
	}
	if len(snippets) == 0 {
		return noInfoAnswer
	}

	bullets := snippets[1:]
	if len(bullets) > 4 {
		bullets = bullets[:4]
	}

	var b strings.Builder
	b.WriteString("**Answer (extractive)**\n\n")
	b.WriteString(snippets[0])
	for _, sn := range bullets {
		b.WriteString("\n- " + sn)
	}
	fmt.Fprintf(&b, "\n\n_Sources: %s_", strings.Join(sources, ", "))
	return b.String()
}
