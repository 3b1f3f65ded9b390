package analyzer

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harunari/meisai/internal/model"
)

var fallbackTokenPattern = regexp.MustCompile(`[¥￥]?([0-9][0-9,]*)円?`)

// fallbackAnalysis is the last line of defense when the structured pipeline
// faults: scan every plausible monetary token and take the maximum as a
// rough total. The result is always marked unreliable.
func fallbackAnalysis(carrier model.Carrier, ocrText string) model.AnalysisResult {
	best := decimal.Zero
	for _, m := range fallbackTokenPattern.FindAllStringSubmatch(ocrText, -1) {
		amount, ok := parseAmountToken(m[1])
		if !ok {
			continue
		}
		if amount.GreaterThanOrEqual(minAggregateAmount) && amount.GreaterThan(best) {
			best = amount
		}
	}

	result := model.AnalysisResult{
		ID:           uuid.NewString(),
		Carrier:      carrier,
		LineCost:     best,
		TotalCost:    best,
		TerminalCost: decimal.Zero,
		BillLines:    []model.BillLine{},
		Summary: model.BillSummary{
			Subtotal:    best,
			TaxAmount:   decimal.Zero,
			TotalAmount: best,
			LineCost:    best,
		},
		Confidence: unreliableConfidenceCap,
		Reliable:   false,
		Method:     model.MethodAmountScan,
		AnalysisDetails: []string{
			"Structured analysis failed; the figure below is a rough maximum-amount scan.",
			"Do not act on it without manual verification.",
		},
		AnalyzedAt: time.Now().UTC(),
	}
	if best.IsZero() {
		result.Confidence = 0
	}
	return result
}
