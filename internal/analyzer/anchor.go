package analyzer

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harunari/meisai/internal/model"
)

// Resolution is the explicit outcome of one anchor search. A missing anchor
// stays Unresolved; defaulting to zero is a decision the reconciler makes,
// never the resolver.
type Resolution struct {
	Amount   decimal.Decimal
	Resolved bool
}

// Unresolved is the zero Resolution, named for readability at call sites.
func Unresolved() Resolution {
	return Resolution{}
}

// Resolved wraps an accepted anchor amount.
func Resolved(amount decimal.Decimal) Resolution {
	return Resolution{Amount: amount, Resolved: true}
}

// anchorSpec describes how to locate one aggregate figure.
type anchorSpec struct {
	name         string
	labelPattern *regexp.Regexp
	minAmount    decimal.Decimal
}

// minAggregateAmount rejects footnote and fee numbers being mistaken for the
// headline subtotal or total.
var minAggregateAmount = decimal.NewFromInt(1000)

var (
	subtotalAnchor = anchorSpec{
		name:         "subtotal",
		labelPattern: regexp.MustCompile(`(?i)小計|課税対象額|subtotal|taxable amount`),
		minAmount:    minAggregateAmount,
	}
	taxAnchor = anchorSpec{
		name:         "tax",
		labelPattern: regexp.MustCompile(`(?i)消費税等?|tax`),
	}
	totalAnchor = anchorSpec{
		name:         "total",
		labelPattern: regexp.MustCompile(`(?i)ご請求金額|ご請求額|合計請求額|請求金額|合計|total|billed amount`),
		minAmount:    minAggregateAmount,
	}

	// Loose token shape for scanning a raw line right to left.
	anchorTokenPattern = regexp.MustCompile(`[¥￥]?\s*-?\d{1,3}(?:,\d{3})*(?:\.\d+)?`)
)

// resolveAnchors locates the three aggregate figures. Resolution order is
// subtotal, tax, total; a line claimed by an earlier aggregate is never
// reused by a later one, so a "taxable amount" line cannot double as the tax
// anchor.
func resolveAnchors(lines []model.BillLine) (subtotal, tax, total Resolution) {
	claimed := make(map[int]bool, 3)

	subtotal = resolveAnchor(lines, subtotalAnchor, claimed)
	tax = resolveAnchor(lines, taxAnchor, claimed)
	total = resolveAnchor(lines, totalAnchor, claimed)
	return subtotal, tax, total
}

// resolveAnchor scans lines in order for the first unclaimed line whose label
// matches the anchor pattern and whose rightmost same-line numeric token is
// plausible.
func resolveAnchor(lines []model.BillLine, spec anchorSpec, claimed map[int]bool) Resolution {
	for i := range lines {
		if claimed[i] {
			continue
		}
		if !spec.labelPattern.MatchString(lines[i].Label) {
			continue
		}

		amount, ok := rightmostAmount(lines[i].RawText)
		if !ok || !validAnchorAmount(amount, spec) {
			continue
		}

		claimed[i] = true
		slog.Debug("anchor resolved",
			"anchor", spec.name, "label", lines[i].Label, "amount", amount)
		return Resolved(amount)
	}

	slog.Debug("anchor unresolved", "anchor", spec.name)
	return Unresolved()
}

// rightmostAmount extracts the rightmost plausible numeric token from a raw
// line. The raw line is scanned rather than the parsed amount so a line
// carrying several numbers (a percentage and a yen figure, say) still yields
// the headline figure printed at the right edge.
func rightmostAmount(rawText string) (decimal.Decimal, bool) {
	tokens := anchorTokenPattern.FindAllString(rawText, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "").Replace(tokens[i])
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			continue
		}
		if amount.IsZero() || amount.Abs().GreaterThanOrEqual(maxLineAmount) {
			continue
		}
		return amount, true
	}
	return decimal.Zero, false
}

// validAnchorAmount applies the per-aggregate bounds: positive, below the
// plausibility ceiling, and at least the aggregate's minimum.
func validAnchorAmount(amount decimal.Decimal, spec anchorSpec) bool {
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxLineAmount) {
		return false
	}
	return amount.GreaterThanOrEqual(spec.minAmount)
}
