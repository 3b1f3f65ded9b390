package analyzer

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/harunari/meisai/internal/model"
)

// Reconciliation policy constants.
var (
	// reconciliationTolerance is the allowance, in currency units, when
	// checking subtotal + tax == total.
	reconciliationTolerance = decimal.NewFromInt(5)
)

// VAT plausibility band: Japanese consumption tax is 10%, accepted with a
// margin for rounding and partial-period proration.
const (
	minTaxRatio = 0.085
	maxTaxRatio = 0.115
)

// Outcome is the reconciler's decision: the trusted line-cost figure, the
// tier confidence, and the method that produced it.
type Outcome struct {
	LineCost   decimal.Decimal
	Confidence float64
	Method     string
}

// reconcile applies the tiered consistency policy over the three anchors.
// Exactly one tier fires for any resolution state; tiers are tried in order
// and the first match wins.
func reconcile(subtotal, tax, total Resolution) Outcome {
	// A total below the aggregate minimum is a mis-grabbed footnote, not a
	// headline figure. Treat it as unresolved before tier evaluation.
	total = sanitizeTotal(total)

	// Tier 1: all three anchors agree and the tax ratio is plausible.
	if subtotal.Resolved && tax.Resolved && total.Resolved {
		computed := subtotal.Amount.Add(tax.Amount)
		drift := computed.Sub(total.Amount).Abs()
		if drift.LessThanOrEqual(reconciliationTolerance) && plausibleTaxRatio(tax.Amount, subtotal.Amount) {
			slog.Debug("reconciliation tier 1", "total", total.Amount, "drift", drift)
			return Outcome{LineCost: total.Amount, Confidence: 0.95, Method: model.MethodReconciledTotal}
		}
	}

	// Tier 2: subtotal and tax agree even though the total is missing or
	// inconsistent.
	if subtotal.Resolved && tax.Resolved && plausibleTaxRatio(tax.Amount, subtotal.Amount) {
		sum := subtotal.Amount.Add(tax.Amount)
		slog.Debug("reconciliation tier 2", "line_cost", sum)
		return Outcome{LineCost: sum, Confidence: 0.90, Method: model.MethodSubtotalPlusTax}
	}

	// Tier 3: only the total survived.
	if total.Resolved {
		slog.Debug("reconciliation tier 3", "total", total.Amount)
		return Outcome{LineCost: total.Amount, Confidence: 0.80, Method: model.MethodTotalOnly}
	}

	// Tier 4: no trustworthy evidence. Refuse to guess.
	slog.Debug("reconciliation tier 4: unreliable")
	return Outcome{LineCost: decimal.Zero, Confidence: 0, Method: model.MethodUnreliable}
}

func sanitizeTotal(total Resolution) Resolution {
	if total.Resolved && total.Amount.LessThan(minAggregateAmount) {
		return Unresolved()
	}
	return total
}

// plausibleTaxRatio checks tax/subtotal against the VAT band.
func plausibleTaxRatio(tax, subtotal decimal.Decimal) bool {
	if !subtotal.IsPositive() || !tax.IsPositive() {
		return false
	}
	ratio := tax.InexactFloat64() / subtotal.InexactFloat64()
	return ratio >= minTaxRatio && ratio <= maxTaxRatio
}
