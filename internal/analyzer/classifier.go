package analyzer

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/harunari/meisai/internal/model"
	"github.com/harunari/meisai/internal/similarity"
)

// Classifier assigns a bill category and confidence to extracted lines using
// a carrier dictionary: exact substring match first, then the similarity
// scorer, then hand-authored regexes for garbled OCR output when no scorer
// is available.
type Classifier struct {
	dictionaries *Dictionaries
	scorer       similarity.Scorer
}

// NewClassifier builds a classifier. A nil scorer disables approximate
// matching and falls back to the noise patterns.
func NewClassifier(dictionaries *Dictionaries, scorer similarity.Scorer) *Classifier {
	return &Classifier{
		dictionaries: dictionaries,
		scorer:       scorer,
	}
}

// noisePattern maps a garbled-OCR variant of a known term to a category.
type noisePattern struct {
	pattern  *regexp.Regexp
	category model.BillCategory
}

// OCR output mangles Latin service names in recognizable ways; these cover
// the variants seen in real scans when no similarity engine is present.
var noisePatterns = []noisePattern{
	{regexp.MustCompile(`(?i)d\s*a\s*t\s*a|lte|gha`), model.CategoryData},
	{regexp.MustCompile(`(?i)apple\s*car|applecare`), model.CategoryOption},
	{regexp.MustCompile(`(?i)w\s*i.?f\s*i|spot`), model.CategoryOption},
	{regexp.MustCompile(`(?i)ma[il1]l|sms`), model.CategoryOption},
	{regexp.MustCompile(`(?i)disc?ount|割[引リ]`), model.CategoryDiscount},
	{regexp.MustCompile(`(?i)t[o0]tal|合[計言十]`), model.CategoryTotal},
}

// Classify mutates the lines in place, setting bill category and confidence.
func (c *Classifier) Classify(lines []model.BillLine, carrier model.Carrier) {
	dict := c.dictionaries.ForCarrier(carrier)

	classified := 0
	for i := range lines {
		if c.classifyLine(&lines[i], dict) {
			classified++
		}
	}

	slog.Debug("classification complete",
		"carrier", dict.Carrier,
		"classified", classified,
		"total", len(lines))
}

func (c *Classifier) classifyLine(line *model.BillLine, dict *Dictionary) bool {
	label := strings.ToLower(line.Label)

	// Exact substring match against the dictionary, first hit wins.
	for _, entry := range dict.Entries {
		if strings.Contains(label, strings.ToLower(entry.Keyword)) {
			line.BillCategory = entry.Category
			line.Confidence = model.ConfidenceExactMatch
			return true
		}
	}

	if c.scorer != nil {
		if entry, ok := c.bestApproximateMatch(line.Label, dict); ok {
			line.BillCategory = entry.Category
			line.Confidence = model.ConfidenceFuzzyMatch
			slog.Debug("approximate classification",
				"label", line.Label, "keyword", entry.Keyword, "category", entry.Category)
			return true
		}
		return false
	}

	// No similarity engine: noise-tolerant regexes catch common garbling.
	for _, np := range noisePatterns {
		if np.pattern.MatchString(line.Label) {
			line.BillCategory = np.category
			line.Confidence = model.ConfidenceNoisePattern
			return true
		}
	}
	return false
}

// bestApproximateMatch scores the label against every dictionary keyword and
// accepts the best hit at or above the similarity threshold.
func (c *Classifier) bestApproximateMatch(label string, dict *Dictionary) (DictionaryEntry, bool) {
	var best DictionaryEntry
	bestScore := 0

	for _, entry := range dict.Entries {
		score := c.scorer.Score(label, entry.Keyword)
		if score > bestScore {
			best = entry
			bestScore = score
		}
	}

	if bestScore >= similarity.MatchThreshold {
		return best, true
	}
	return DictionaryEntry{}, false
}
