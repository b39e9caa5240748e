// Package scorer computes per-document relevance scores for query
// terms. Two interchangeable algorithms are provided: an Okapi BM25
// variant and a word-boundary hit counter. Scores are comparable
// within one query evaluation only.
package scorer

import (
	"regexp"
	"strings"
	"sync"
)

// Scorer scores a document's content against query terms.
type Scorer interface {
	// Score returns the relevance of content for the given terms.
	// A document with zero term matches scores exactly 0.
	Score(terms []string, content string) float64
}

var (
	wordRe = regexp.MustCompile(`[A-Za-z0-9_]+`)

	patternMu    sync.Mutex
	patternCache = make(map[string]*regexp.Regexp)
)

// termPattern compiles a case-insensitive word-boundary pattern for a
// term. Patterns are cached; queries reuse a small vocabulary.
func termPattern(term string) *regexp.Regexp {
	key := strings.ToLower(term)

	patternMu.Lock()
	defer patternMu.Unlock()

	if re, ok := patternCache[key]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	patternCache[key] = re
	return re
}

// CountHits returns the number of exact word-boundary matches of term
// in content, case-insensitive.
func CountHits(content, term string) int {
	if term == "" || content == "" {
		return 0
	}
	return len(termPattern(term).FindAllStringIndex(content, -1))
}

// CountAll returns the total word-boundary matches of all terms in
// content.
func CountAll(content string, terms []string) int {
	total := 0
	for _, t := range terms {
		total += CountHits(content, t)
	}
	return total
}

// MatchesAny reports whether content contains at least one
// word-boundary match of any term.
func MatchesAny(content string, terms []string) bool {
	for _, t := range terms {
		if CountHits(content, t) > 0 {
			return true
		}
	}
	return false
}

// tokenize splits content into words for length statistics.
func tokenize(content string) []string {
	return wordRe.FindAllString(content, -1)
}
