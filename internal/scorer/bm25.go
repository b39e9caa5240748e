package scorer

import "math"

// BM25Scorer implements an Okapi BM25 variant computed over term
// frequency within the single document being scored. No corpus-level
// document-frequency statistics are kept: the IDF term treats the
// document's own word count as N and the term's occurrence count as n,
// and the average document length is taken as the document's own
// length, so the length factor reduces to 1. This exact simplified
// formula is load-bearing for ranking compatibility; do not replace it
// with corpus-level BM25.
type BM25Scorer struct {
	K1 float64
	B  float64
}

// NewBM25Scorer creates a BM25 scorer with the given parameters.
// Zero values fall back to k1=1.5, b=0.75.
func NewBM25Scorer(k1, b float64) *BM25Scorer {
	if k1 == 0 {
		k1 = 1.5
	}
	if b == 0 {
		b = 0.75
	}
	return &BM25Scorer{K1: k1, B: b}
}

var _ Scorer = (*BM25Scorer)(nil)

// Score sums the per-term BM25 contribution over all query terms.
// A document with zero occurrences of any term scores 0.
func (s *BM25Scorer) Score(terms []string, content string) float64 {
	words := tokenize(content)
	docLen := float64(len(words))
	if docLen == 0 {
		return 0
	}

	var total float64
	for _, term := range terms {
		tf := float64(CountHits(content, term))
		if tf == 0 {
			continue
		}

		idf := math.Log((docLen-tf+0.5)/(tf+0.5) + 1)

		// avgDocLen is the document's own length, so the length
		// normalization factor is exactly 1.
		norm := 1 - s.B + s.B*(docLen/docLen)
		total += idf * (tf * (s.K1 + 1)) / (tf + s.K1*norm)
	}

	return total
}
