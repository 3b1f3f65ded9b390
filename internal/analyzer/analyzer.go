package analyzer

import (
	"log/slog"

	"github.com/harunari/meisai/internal/model"
	"github.com/harunari/meisai/internal/similarity"
)

// Analyzer runs the structured bill analysis pipeline. It holds only
// read-only configuration (dictionaries, detector patterns, the similarity
// scorer) and is safe for concurrent use; every call is independent.
type Analyzer struct {
	dictionaries *Dictionaries
	detector     *Detector
	classifier   *Classifier
}

// New creates an analyzer with the built-in dictionaries and the default
// partial-ratio similarity engine.
func New() *Analyzer {
	return NewWithOptions(DefaultDictionaries(), similarity.NewPartialRatioScorer())
}

// NewWithOptions creates an analyzer with explicit dependencies. A nil
// scorer drops approximate matching down to the regex noise patterns.
func NewWithOptions(dictionaries *Dictionaries, scorer similarity.Scorer) *Analyzer {
	return &Analyzer{
		dictionaries: dictionaries,
		detector:     NewDetector(),
		classifier:   NewClassifier(dictionaries, scorer),
	}
}

// Dictionaries exposes the read-only carrier vocabularies.
func (a *Analyzer) Dictionaries() *Dictionaries {
	return a.dictionaries
}

// Analyze runs the full pipeline over one invoice text. The carrier hint, if
// known, bypasses detection. Analyze never returns an error: any internal
// fault degrades to a best-effort amount scan marked unreliable.
func (a *Analyzer) Analyze(ocrText string, hint model.Carrier) (result model.AnalysisResult) {
	carrier := hint
	if carrier == "" || !carrier.Valid() {
		carrier = a.detector.Detect(ocrText)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("structured analysis fault, falling back to amount scan", "panic", r)
			result = fallbackAnalysis(carrier, ocrText)
		}
	}()

	lines := splitLines(ocrText)
	slog.Debug("split input", "lines", len(lines))

	billLines := a.extractLines(lines)
	slog.Debug("extracted bill lines", "count", len(billLines))

	a.classifier.Classify(billLines, carrier)
	normalizeAmounts(billLines)

	subtotal, tax, total := resolveAnchors(billLines)
	outcome := reconcile(subtotal, tax, total)

	result = compose(carrier, billLines, subtotal, tax, total, outcome)
	slog.Info("analysis complete",
		"carrier", result.Carrier,
		"line_cost", result.LineCost,
		"confidence", result.Confidence,
		"method", result.Method,
		"reliable", result.Reliable)
	return result
}

// extractLines converts candidate lines into bill lines, skipping rejects.
// A single bad line never aborts the run.
func (a *Analyzer) extractLines(lines []string) []model.BillLine {
	billLines := make([]model.BillLine, 0, len(lines))
	for _, line := range lines {
		extraction, ok := extractLabelAndAmount(line)
		if !ok {
			continue
		}
		billLines = append(billLines, model.NewBillLine(extraction.Label, extraction.Amount, line))
	}
	return billLines
}
