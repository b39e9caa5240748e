// Package snippet extracts the most relevant sentences from a
// document for a set of query terms.
package snippet

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxSentences is the number of sentences kept per snippet.
	DefaultMaxSentences = 3
	// DefaultMaxPerKeyword caps the total hit sentences collected
	// across all terms combined.
	DefaultMaxPerKeyword = 4
)

// Extract returns relevant sentences for the query terms.
//
// Content splits into sentences on periods. Terms are scanned in rank
// order and each matching sentence is collected until maxPerKeyword
// total hits are gathered across all terms, then the first
// maxSentences collected sentences are returned. The selection is
// greedy and order-dependent, and a sentence matching two terms can
// appear twice; result shape depends on it, so no deduplication.
func Extract(content string, terms []string, maxSentences, maxPerKeyword int) []string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if maxPerKeyword <= 0 {
		maxPerKeyword = DefaultMaxPerKeyword
	}
	if strings.TrimSpace(content) == "" || len(terms) == 0 {
		return nil
	}

	sentences := strings.Split(content, ".")

	var collected []string
	total := 0
collect:
	for _, term := range terms {
		needle := strings.ToLower(term)
		if needle == "" {
			continue
		}
		for _, sentence := range sentences {
			if total >= maxPerKeyword {
				break collect
			}
			if strings.Contains(strings.ToLower(sentence), needle) {
				collected = append(collected, strings.TrimSpace(sentence))
				total++
			}
		}
	}

	if len(collected) > maxSentences {
		collected = collected[:maxSentences]
	}
	return collected
}

// Snippet joins extracted sentences with spaces into one display string.
func Snippet(content string, terms []string, maxSentences, maxPerKeyword int) string {
	return strings.Join(Extract(content, terms, maxSentences, maxPerKeyword), " ")
}

// Highlight wraps case-insensitive occurrences of term in <mark> tags.
// Returns text unchanged when term is empty.
func Highlight(text, term string) string {
	if term == "" || text == "" {
		return text
	}
	re, err := regexp.Compile(`(?i)(` + regexp.QuoteMeta(term) + `)`)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "<mark>$1</mark>")
}
