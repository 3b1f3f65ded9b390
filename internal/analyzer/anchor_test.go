package analyzer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunari/meisai/internal/model"
)

func billLinesFrom(t *testing.T, rawLines ...string) []model.BillLine {
	t.Helper()
	var lines []model.BillLine
	for _, raw := range rawLines {
		extraction, ok := extractLabelAndAmount(raw)
		require.True(t, ok, "line %q should extract", raw)
		lines = append(lines, model.NewBillLine(extraction.Label, extraction.Amount, raw))
	}
	return lines
}

func TestResolveAnchors_AllPresent(t *testing.T) {
	lines := billLinesFrom(t,
		"小計 ¥4,000",
		"消費税等 ¥400",
		"ご請求金額 ¥4,400",
	)

	subtotal, tax, total := resolveAnchors(lines)

	require.True(t, subtotal.Resolved)
	require.True(t, tax.Resolved)
	require.True(t, total.Resolved)
	assert.Equal(t, "4000", subtotal.Amount.String())
	assert.Equal(t, "400", tax.Amount.String())
	assert.Equal(t, "4400", total.Amount.String())
}

func TestResolveAnchors_RightmostTokenWins(t *testing.T) {
	// The tax line carries a percentage and the yen figure; the rightmost
	// plausible token is the amount.
	lines := billLinesFrom(t, "消費税等 10% 400円")

	_, tax, _ := resolveAnchors(lines)

	require.True(t, tax.Resolved)
	assert.Equal(t, "400", tax.Amount.String())
}

func TestResolveAnchors_SubtotalBelowMinimumSkipped(t *testing.T) {
	// A footnote-sized number must not be mistaken for the subtotal.
	lines := billLinesFrom(t, "小計 ¥500")

	subtotal, _, _ := resolveAnchors(lines)

	assert.False(t, subtotal.Resolved)
}

func TestResolveAnchors_TaxMayBeSmall(t *testing.T) {
	lines := billLinesFrom(t, "消費税 ¥80")

	_, tax, _ := resolveAnchors(lines)

	require.True(t, tax.Resolved)
	assert.Equal(t, "80", tax.Amount.String())
}

func TestResolveAnchors_MissingAnchorStaysUnresolved(t *testing.T) {
	lines := billLinesFrom(t, "あんしん保証 ¥500")

	subtotal, tax, total := resolveAnchors(lines)

	assert.False(t, subtotal.Resolved)
	assert.False(t, tax.Resolved)
	assert.False(t, total.Resolved)
	assert.True(t, subtotal.Amount.IsZero(), "unresolved anchors carry no amount")
}

func TestResolveAnchors_ClaimedLineNotReused(t *testing.T) {
	// "Taxable amount" matches both the subtotal and the tax pattern. The
	// subtotal search runs first and claims the line; the tax search must
	// not reuse it.
	lines := billLinesFrom(t, "Taxable amount ¥4,000")

	subtotal, tax, _ := resolveAnchors(lines)

	require.True(t, subtotal.Resolved)
	assert.Equal(t, "4000", subtotal.Amount.String())
	assert.False(t, tax.Resolved)
}

func TestResolveAnchors_SameValueOnDifferentLinesIsNotReuse(t *testing.T) {
	lines := billLinesFrom(t,
		"小計 ¥4,000",
		"ご請求金額 ¥4,000",
	)

	subtotal, _, total := resolveAnchors(lines)

	require.True(t, subtotal.Resolved)
	require.True(t, total.Resolved)
	assert.Equal(t, subtotal.Amount.String(), total.Amount.String())
}

func TestRightmostAmount(t *testing.T) {
	tests := []struct {
		name    string
		rawText string
		want    string
		wantOK  bool
	}{
		{"single token", "小計 ¥4,000", "4000", true},
		{"rightmost of several", "通話 30分 ¥1,200", "1200", true},
		{"skips implausibly large rightmost", "合計 ¥4,400 ¥999,999,999", "4400", true},
		{"no tokens", "ご利用明細", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rightmostAmount(tt.rawText)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestValidAnchorAmount(t *testing.T) {
	assert.True(t, validAnchorAmount(decimal.NewFromInt(4000), subtotalAnchor))
	assert.False(t, validAnchorAmount(decimal.NewFromInt(999), subtotalAnchor))
	assert.False(t, validAnchorAmount(decimal.NewFromInt(-400), taxAnchor))
	assert.True(t, validAnchorAmount(decimal.NewFromInt(400), taxAnchor))
	assert.False(t, validAnchorAmount(decimal.NewFromInt(100000), totalAnchor))
}
