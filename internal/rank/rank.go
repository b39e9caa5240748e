// Package rank orders scored documents into a final result list.
package rank

import "sort"

// ScoredDocument pairs a document with its relevance score.
// Scores are comparable within one query evaluation only.
type ScoredDocument struct {
	Filename string
	Content  string
	Score    float64
}

// Rank sorts descending by score, deduplicates by filename, and
// truncates to topK. The sort is stable so equal-score documents keep
// their original relative order and repeated runs over the same input
// produce identical output. Duplicates are resolved before truncation
// with the first occurrence winning. topK <= 0 means no cutoff.
func Rank(docs []ScoredDocument, topK int) []ScoredDocument {
	sorted := make([]ScoredDocument, len(docs))
	copy(sorted, docs)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, d := range sorted {
		if _, dup := seen[d.Filename]; dup {
			continue
		}
		seen[d.Filename] = struct{}{}
		out = append(out, d)
	}

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
