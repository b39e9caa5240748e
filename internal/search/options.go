package search

import (
	"log/slog"

	"github.com/reportseek/reportseek/internal/cache"
	"github.com/reportseek/reportseek/internal/keywords"
	"github.com/reportseek/reportseek/internal/query"
	"github.com/reportseek/reportseek/internal/scorer"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExtractor replaces the keyword extractor.
func WithExtractor(e *keywords.Extractor) EngineOption {
	return func(eng *Engine) {
		eng.extractor = e
	}
}

// WithQueryMode selects the backend query flavor.
func WithQueryMode(mode query.Mode) EngineOption {
	return func(eng *Engine) {
		eng.builder = query.NewBuilder(mode)
	}
}

// WithFallbackScorer selects the scorer used when no native relevance
// is available: the BM25 variant or the hit counter.
func WithFallbackScorer(s scorer.Scorer) EngineOption {
	return func(eng *Engine) {
		eng.fallback = s
	}
}

// WithCache enables fuzzy response caching.
func WithCache(c *cache.Cache[Response]) EngineOption {
	return func(eng *Engine) {
		eng.cache = c
	}
}

// WithSynonyms replaces the synonym expansion groups. Nil disables
// expansion.
func WithSynonyms(groups []keywords.SynonymGroup) EngineOption {
	return func(eng *Engine) {
		eng.synonyms = groups
	}
}

// WithTopK sets the result cutoff.
func WithTopK(k int) EngineOption {
	return func(eng *Engine) {
		if k > 0 {
			eng.topK = k
		}
	}
}

// WithSnippetLimits sets the snippet sentence count and total hit cap.
func WithSnippetLimits(maxSentences, maxPerKeyword int) EngineOption {
	return func(eng *Engine) {
		if maxSentences > 0 {
			eng.snippetMax = maxSentences
		}
		if maxPerKeyword > 0 {
			eng.snippetHitCap = maxPerKeyword
		}
	}
}

// WithNativeHitBoost sets the per-hit multiplier applied on top of
// native scores: native * (1 + boost*hits).
func WithNativeHitBoost(boost float64) EngineOption {
	return func(eng *Engine) {
		if boost >= 0 {
			eng.nativeHitBoost = boost
		}
	}
}

// WithIdentifierBoost sets the hit-count multiplier for
// identifier-shaped terms.
func WithIdentifierBoost(boost float64) EngineOption {
	return func(eng *Engine) {
		eng.hits = scorer.NewHitCountScorer(boost)
	}
}

// WithLogger replaces the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(eng *Engine) {
		if l != nil {
			eng.logger = l
		}
	}
}
