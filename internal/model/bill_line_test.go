package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillLine_Defaults(t *testing.T) {
	line := NewBillLine("基本プラン", decimal.NewFromInt(2980), "基本プラン ¥2,980")

	assert.Equal(t, TaxCategoryTaxable, line.TaxCategory)
	assert.Equal(t, CategoryOption, line.BillCategory)
	assert.InDelta(t, ConfidenceUnclassified, line.Confidence, 0.001)
	assert.Equal(t, "基本プラン ¥2,980", line.RawText)
}

func TestBillLine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    BillLine
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid classified line",
			line: BillLine{
				Label:        "消費税等",
				Amount:       decimal.NewFromInt(400),
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: CategoryTax,
				Confidence:   0.9,
			},
			wantErr: false,
		},
		{
			name: "valid multibyte label counts runes not bytes",
			line: BillLine{
				Label:        "割引",
				Amount:       decimal.NewFromInt(-500),
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: CategoryDiscount,
				Confidence:   0.9,
			},
			wantErr: false,
		},
		{
			name: "label too short",
			line: BillLine{
				Label:        "a",
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: CategoryOption,
				Confidence:   0.5,
			},
			wantErr: true,
			errMsg:  "label must be 2-100 characters",
		},
		{
			name: "label too long",
			line: BillLine{
				Label:        strings.Repeat("あ", 101),
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: CategoryOption,
				Confidence:   0.5,
			},
			wantErr: true,
			errMsg:  "label must be 2-100 characters",
		},
		{
			name: "confidence out of range",
			line: BillLine{
				Label:        "データ通信料",
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: CategoryData,
				Confidence:   1.2,
			},
			wantErr: true,
			errMsg:  "confidence must be between 0 and 1",
		},
		{
			name: "unknown bill category",
			line: BillLine{
				Label:        "データ通信料",
				TaxCategory:  TaxCategoryTaxable,
				BillCategory: BillCategory("MYSTERY"),
				Confidence:   0.5,
			},
			wantErr: true,
			errMsg:  "unknown bill category",
		},
		{
			name: "unknown tax category",
			line: BillLine{
				Label:        "データ通信料",
				TaxCategory:  TaxCategory("maybe"),
				BillCategory: CategoryData,
				Confidence:   0.5,
			},
			wantErr: true,
			errMsg:  "unknown tax category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBillLine_JSONAmountIsBareNumber(t *testing.T) {
	line := NewBillLine("小計", decimal.NewFromInt(4000), "小計 ¥4,000")

	data, err := json.Marshal(line)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":4000`)
}

func TestCarrier_Valid(t *testing.T) {
	for _, c := range KnownCarriers() {
		assert.True(t, c.Valid(), "carrier %s should be valid", c)
	}
	assert.True(t, CarrierGeneric.Valid())
	assert.False(t, Carrier("rakuten").Valid())
}

func TestAnalysisResult_GateReliability(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       bool
	}{
		{"above threshold", 0.95, true},
		{"exactly threshold", 0.8, true},
		{"below threshold", 0.79, false},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalysisResult{Confidence: tt.confidence}
			result.GateReliability()
			assert.Equal(t, tt.want, result.Reliable)
		})
	}
}
