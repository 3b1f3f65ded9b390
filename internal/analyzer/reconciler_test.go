package analyzer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harunari/meisai/internal/model"
)

func res(amount int64) Resolution {
	return Resolved(decimal.NewFromInt(amount))
}

func TestReconcile_TierSelection(t *testing.T) {
	tests := []struct {
		name           string
		subtotal       Resolution
		tax            Resolution
		total          Resolution
		wantLineCost   string
		wantConfidence float64
		wantMethod     string
	}{
		{
			name:           "tier 1: all consistent",
			subtotal:       res(4000),
			tax:            res(400),
			total:          res(4400),
			wantLineCost:   "4400",
			wantConfidence: 0.95,
			wantMethod:     model.MethodReconciledTotal,
		},
		{
			name:           "tier 1: within tolerance",
			subtotal:       res(4000),
			tax:            res(400),
			total:          res(4404),
			wantLineCost:   "4404",
			wantConfidence: 0.95,
			wantMethod:     model.MethodReconciledTotal,
		},
		{
			name:           "tier 2: total missing",
			subtotal:       res(4000),
			tax:            res(400),
			total:          Unresolved(),
			wantLineCost:   "4400",
			wantConfidence: 0.90,
			wantMethod:     model.MethodSubtotalPlusTax,
		},
		{
			name:           "tier 2: total inconsistent beyond tolerance",
			subtotal:       res(4000),
			tax:            res(400),
			total:          res(9900),
			wantLineCost:   "4400",
			wantConfidence: 0.90,
			wantMethod:     model.MethodSubtotalPlusTax,
		},
		{
			name:           "tier 3: only total",
			subtotal:       Unresolved(),
			tax:            Unresolved(),
			total:          res(5280),
			wantLineCost:   "5280",
			wantConfidence: 0.80,
			wantMethod:     model.MethodTotalOnly,
		},
		{
			name:           "tier 3: tax ratio implausible drops tier 1 and 2",
			subtotal:       res(4000),
			tax:            res(4000),
			total:          res(8000),
			wantLineCost:   "8000",
			wantConfidence: 0.80,
			wantMethod:     model.MethodTotalOnly,
		},
		{
			name:           "tier 4: nothing resolved",
			subtotal:       Unresolved(),
			tax:            Unresolved(),
			total:          Unresolved(),
			wantLineCost:   "0",
			wantConfidence: 0,
			wantMethod:     model.MethodUnreliable,
		},
		{
			name:           "tier 4: only implausible tax",
			subtotal:       Unresolved(),
			tax:            res(400),
			total:          Unresolved(),
			wantLineCost:   "0",
			wantConfidence: 0,
			wantMethod:     model.MethodUnreliable,
		},
		{
			name:           "tier 4: footnote-sized total sanitized away",
			subtotal:       Unresolved(),
			tax:            Unresolved(),
			total:          res(800),
			wantLineCost:   "0",
			wantConfidence: 0,
			wantMethod:     model.MethodUnreliable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile(tt.subtotal, tt.tax, tt.total)

			assert.Equal(t, tt.wantLineCost, got.LineCost.String())
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 0.001)
			assert.Equal(t, tt.wantMethod, got.Method)
		})
	}
}

func TestReconcile_ExactlyOneTierFires(t *testing.T) {
	// Exhaustive over resolution states: every combination lands in exactly
	// one tier and produces a well-formed outcome.
	states := []Resolution{Unresolved(), res(4000)}
	taxStates := []Resolution{Unresolved(), res(400)}
	totalStates := []Resolution{Unresolved(), res(4400)}

	for _, subtotal := range states {
		for _, tax := range taxStates {
			for _, total := range totalStates {
				got := reconcile(subtotal, tax, total)
				assert.Contains(t, []string{
					model.MethodReconciledTotal,
					model.MethodSubtotalPlusTax,
					model.MethodTotalOnly,
					model.MethodUnreliable,
				}, got.Method)
				assert.False(t, got.LineCost.IsNegative())
			}
		}
	}
}

func TestPlausibleTaxRatio(t *testing.T) {
	tests := []struct {
		name     string
		tax      int64
		subtotal int64
		want     bool
	}{
		{"exactly 10 percent", 400, 4000, true},
		{"lower bound", 85, 1000, true},
		{"upper bound", 115, 1000, true},
		{"below band", 84, 1000, false},
		{"above band", 116, 1000, false},
		{"zero tax", 0, 4000, false},
		{"zero subtotal", 400, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plausibleTaxRatio(decimal.NewFromInt(tt.tax), decimal.NewFromInt(tt.subtotal))
			assert.Equal(t, tt.want, got)
		})
	}
}
