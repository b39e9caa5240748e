package scorer

import "regexp"

var identifierTermRe = regexp.MustCompile(`^\d+-\d+$`)

// HitCountScorer scores a document by the number of exact
// word-boundary matches of any query term, case-insensitive.
// Identifier-shaped terms (digits-dash-digits) can be boosted so a
// work-order match outweighs generic vocabulary hits.
type HitCountScorer struct {
	// IdentifierBoost multiplies the hit count of identifier terms.
	// Values <= 1 disable the boost.
	IdentifierBoost float64
}

// NewHitCountScorer creates a hit-count scorer with the given
// identifier boost.
func NewHitCountScorer(identifierBoost float64) *HitCountScorer {
	return &HitCountScorer{IdentifierBoost: identifierBoost}
}

var _ Scorer = (*HitCountScorer)(nil)

// Score counts word-boundary term hits. Zero matches scores 0.
func (s *HitCountScorer) Score(terms []string, content string) float64 {
	var total float64
	for _, term := range terms {
		hits := float64(CountHits(content, term))
		if hits == 0 {
			continue
		}
		if s.IdentifierBoost > 1 && identifierTermRe.MatchString(term) {
			hits *= s.IdentifierBoost
		}
		total += hits
	}
	return total
}
