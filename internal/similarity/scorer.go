// Package similarity provides pluggable approximate string matching for the
// classifier. Scores are on a 0-100 scale; 100 means an exact substring-level
// match.
package similarity

// Scorer rates how closely two strings resemble each other.
type Scorer interface {
	// Score returns a similarity score between 0 and 100.
	Score(a, b string) int
}

// MatchThreshold is the minimum score at which an approximate dictionary
// match is accepted.
const MatchThreshold = 70
