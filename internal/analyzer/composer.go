package analyzer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harunari/meisai/internal/model"
)

// unreliableConfidenceCap bounds the confidence of any result whose line
// cost is zero: a zero figure must never pass the reliability gate.
const unreliableConfidenceCap = 0.3

// compose assembles the final result record from the pipeline's pieces. Pure
// function of its inputs apart from the generated ID and timestamp.
func compose(carrier model.Carrier, lines []model.BillLine, subtotal, tax, total Resolution, outcome Outcome) model.AnalysisResult {
	terminalCost := deviceTotal(lines)

	// The headline figures include handset installments; the line cost must
	// not. Deduct the device charges and clamp at zero.
	lineCost := outcome.LineCost.Sub(positiveDeviceTotal(lines))
	if lineCost.IsNegative() {
		lineCost = decimal.Zero
	}

	confidence := outcome.Confidence
	if lineCost.IsZero() && confidence > unreliableConfidenceCap {
		confidence = unreliableConfidenceCap
	}

	if len(lines) > 0 {
		slog.Debug("per-line classification confidence",
			"mean", meanLineConfidence(lines), "lines", len(lines))
	}

	result := model.AnalysisResult{
		ID:           uuid.NewString(),
		Carrier:      carrier,
		LineCost:     lineCost,
		TotalCost:    total.Amount,
		TerminalCost: terminalCost,
		BillLines:    lines,
		Summary: model.BillSummary{
			Subtotal:    subtotal.Amount,
			TaxAmount:   tax.Amount,
			TotalAmount: total.Amount,
			LineCost:    lineCost,
		},
		Confidence: confidence,
		Method:     outcome.Method,
		AnalyzedAt: time.Now().UTC(),
	}
	result.GateReliability()
	result.AnalysisDetails = analysisDetails(result)
	return result
}

// deviceTotal sums every DEVICE-classified amount.
func deviceTotal(lines []model.BillLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.BillCategory == model.CategoryDevice {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// positiveDeviceTotal sums only the positive device charges; a negative
// device line is an installment credit and must not inflate the line cost.
func positiveDeviceTotal(lines []model.BillLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.BillCategory == model.CategoryDevice && line.Amount.IsPositive() {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// meanLineConfidence averages the per-line classification confidence.
func meanLineConfidence(lines []model.BillLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	sum := 0.0
	for _, line := range lines {
		sum += line.Confidence
	}
	return sum / float64(len(lines))
}

// analysisDetails renders the human-readable notes: a success summary when
// the figure is trustworthy, otherwise likely causes and remediation steps.
func analysisDetails(result model.AnalysisResult) []string {
	if result.LineCost.IsZero() {
		return []string{
			"The invoice aggregates could not be determined.",
			"Likely causes:",
			"- heavy OCR garbling around the subtotal, tax, or total lines",
			"- the critical region of the invoice was not captured",
			"Suggested fixes:",
			"1. Re-photograph with better lighting and no glare",
			"2. Make sure the whole invoice fits in the frame",
			"3. Hold the camera square to the page and retry",
		}
	}

	details := []string{
		fmt.Sprintf("Line cost: ¥%s", result.LineCost.StringFixed(0)),
		fmt.Sprintf("Confidence: %.0f%% (%s)", result.Confidence*100, result.Method),
		fmt.Sprintf("Carrier: %s", result.Carrier),
	}
	if result.TerminalCost.IsPositive() {
		details = append(details,
			fmt.Sprintf("Device installments of ¥%s were excluded from the line cost.",
				result.TerminalCost.StringFixed(0)))
	}
	if !result.Reliable {
		details = append(details,
			"Confidence is below the reliability gate; verify the figure manually before acting on it.")
	}
	return details
}
