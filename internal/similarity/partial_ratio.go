package similarity

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// PartialRatioScorer scores strings with the partial-ratio metric: the best
// alignment of the shorter string against substrings of the longer one.
// Tolerant of OCR noise around an otherwise intact keyword.
type PartialRatioScorer struct{}

// NewPartialRatioScorer returns the default similarity engine.
func NewPartialRatioScorer() *PartialRatioScorer {
	return &PartialRatioScorer{}
}

// Score implements Scorer.
func (s *PartialRatioScorer) Score(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.PartialRatio(a, b)
}
