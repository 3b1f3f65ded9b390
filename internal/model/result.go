package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReliabilityThreshold is the confidence a result needs before downstream
// consumers may act on it.
const ReliabilityThreshold = 0.8

// Reconciliation methods, recorded on every result so a reviewer can tell
// which evidence produced the line cost.
const (
	MethodReconciledTotal = "reconciled-total"
	MethodSubtotalPlusTax = "subtotal-plus-tax"
	MethodTotalOnly       = "total-only"
	MethodUnreliable      = "unreliable"
	MethodAmountScan      = "amount-scan"
)

// AnalysisResult is the full outcome of analyzing one invoice text.
type AnalysisResult struct {
	ID              string          `json:"id"`
	Carrier         Carrier         `json:"carrier"`
	LineCost        decimal.Decimal `json:"line_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TerminalCost    decimal.Decimal `json:"terminal_cost"`
	BillLines       []BillLine      `json:"bill_lines"`
	Summary         BillSummary     `json:"summary"`
	Confidence      float64         `json:"confidence"`
	Reliable        bool            `json:"reliable"`
	Method          string          `json:"method"`
	AnalysisDetails []string        `json:"analysis_details"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
}

// GateReliability recomputes the reliable flag from the confidence value.
func (r *AnalysisResult) GateReliability() {
	r.Reliable = r.Confidence >= ReliabilityThreshold
}
