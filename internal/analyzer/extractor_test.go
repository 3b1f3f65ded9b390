package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLabelAndAmount(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantLabel  string
		wantAmount string
		wantOK     bool
	}{
		{
			name:       "yen prefix with separator",
			line:       "基本プラン ¥2,980",
			wantLabel:  "基本プラン",
			wantAmount: "2980",
			wantOK:     true,
		},
		{
			name:       "yen suffix with separator",
			line:       "基本プラン 2,980円",
			wantLabel:  "基本プラン",
			wantAmount: "2980",
			wantOK:     true,
		},
		{
			name:       "bare digits",
			line:       "基本プラン 2980",
			wantLabel:  "基本プラン",
			wantAmount: "2980",
			wantOK:     true,
		},
		{
			name:       "fullwidth yen sign",
			line:       "基本プラン ￥2,980",
			wantLabel:  "基本プラン",
			wantAmount: "2980",
			wantOK:     true,
		},
		{
			name:       "triangle negative",
			line:       "家族割 ▲1,000",
			wantLabel:  "家族割",
			wantAmount: "-1000",
			wantOK:     true,
		},
		{
			name:       "minus sign negative",
			line:       "おうち割 −550",
			wantLabel:  "おうち割",
			wantAmount: "-550",
			wantOK:     true,
		},
		{
			name:       "hyphen negative",
			line:       "割引 -550円",
			wantLabel:  "割引",
			wantAmount: "-550",
			wantOK:     true,
		},
		{
			name:       "trailing colon stripped from label",
			line:       "オプション料: ¥300",
			wantLabel:  "オプション料",
			wantAmount: "300",
			wantOK:     true,
		},
		{
			name:       "two decimal places accepted",
			line:       "日割料金 ¥98.50",
			wantLabel:  "日割料金",
			wantAmount: "98.5",
			wantOK:     true,
		},
		{
			name:   "three decimal places rejected",
			line:   "日割料金 ¥98.505",
			wantOK: false,
		},
		{
			name:   "slash date excluded",
			line:   "ご利用期間 2025/06/01",
			wantOK: false,
		},
		{
			name:   "compact date excluded",
			line:   "発行日 20250601",
			wantOK: false,
		},
		{
			name:   "phone number excluded",
			line:   "連絡先 090-1234-5678",
			wantOK: false,
		},
		{
			name:   "long digit run excluded",
			line:   "請求番号 12345678901234",
			wantOK: false,
		},
		{
			name:   "amount above ceiling rejected",
			line:   "謎の金額 ¥250,000",
			wantOK: false,
		},
		{
			name:   "no amount at all",
			line:   "ご利用明細",
			wantOK: false,
		},
		{
			name:   "label only digits and brackets",
			line:   "(12) 800円",
			wantOK: false,
		},
		{
			name:   "label too long",
			line:   strings.Repeat("あ", 101) + " ¥500",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractLabelAndAmount(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantAmount, got.Amount.String())
		})
	}
}

func TestExtractLabelAndAmount_SeparatorEquivalence(t *testing.T) {
	// All separator and currency-symbol spellings of the same figure must
	// extract the same value as the bare form.
	variants := []string{
		"基本プラン 2980",
		"基本プラン 2,980",
		"基本プラン ¥2,980",
		"基本プラン ￥2,980",
		"基本プラン 2,980円",
		"基本プラン 2980円",
	}

	for _, line := range variants {
		got, ok := extractLabelAndAmount(line)
		require.True(t, ok, "line %q should extract", line)
		assert.Equal(t, "2980", got.Amount.String(), "line %q", line)
	}
}
