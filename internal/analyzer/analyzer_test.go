package analyzer

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunari/meisai/internal/model"
)

func TestAnalyze_AllAnchorsReconcile(t *testing.T) {
	text := "ご利用明細\n小計 ¥4,000\n消費税等 ¥400\nご請求金額 ¥4,400\n"

	result := New().Analyze(text, "")

	assert.Equal(t, "4400", result.LineCost.String())
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
	assert.Equal(t, model.MethodReconciledTotal, result.Method)
	assert.True(t, result.Reliable)
	assert.Equal(t, "4000", result.Summary.Subtotal.String())
	assert.Equal(t, "400", result.Summary.TaxAmount.String())
	assert.Equal(t, "4400", result.Summary.TotalAmount.String())
}

func TestAnalyze_MissingTotalFallsBackToSubtotalPlusTax(t *testing.T) {
	text := "ご利用明細\n小計 ¥4,000\n消費税等 ¥400\n"

	result := New().Analyze(text, "")

	assert.Equal(t, "4400", result.LineCost.String())
	assert.True(t, result.TotalCost.IsZero(), "total_cost carries the resolved anchor or zero, never the reconciled figure")
	assert.InDelta(t, 0.90, result.Confidence, 0.001)
	assert.Equal(t, model.MethodSubtotalPlusTax, result.Method)
	assert.True(t, result.Reliable)
}

func TestAnalyze_TotalOnly(t *testing.T) {
	text := "ご利用明細\nご請求金額 ¥5,280\n"

	result := New().Analyze(text, "")

	assert.Equal(t, "5280", result.LineCost.String())
	assert.InDelta(t, 0.80, result.Confidence, 0.001)
	assert.Equal(t, model.MethodTotalOnly, result.Method)
	assert.True(t, result.Reliable)
}

func TestAnalyze_NoAnchorsIsUnreliable(t *testing.T) {
	text := "ご利用明細\nあんしん保証 ¥500\nオプション ¥300\n"

	result := New().Analyze(text, "")

	assert.True(t, result.LineCost.IsZero())
	assert.InDelta(t, 0.0, result.Confidence, 0.001)
	assert.Equal(t, model.MethodUnreliable, result.Method)
	assert.False(t, result.Reliable)
	assert.NotEmpty(t, result.AnalysisDetails)
}

func TestAnalyze_DeviceInstallmentExcludedFromLineCost(t *testing.T) {
	text := "ご利用明細\n端末分割金 ¥3,000\nご請求金額 ¥8,280\n"

	result := New().Analyze(text, "")

	assert.Equal(t, "3000", result.TerminalCost.String())
	assert.Equal(t, "5280", result.LineCost.String(), "device charge must be excluded")
	assert.Equal(t, "8280", result.TotalCost.String())
}

func TestAnalyze_CarrierHintBypassesDetection(t *testing.T) {
	text := "ご利用明細\nご請求金額 ¥5,280\n"

	result := New().Analyze(text, model.CarrierDocomo)

	assert.Equal(t, model.CarrierDocomo, result.Carrier)
}

func TestAnalyze_InvalidHintFallsBackToDetection(t *testing.T) {
	text := "ご利用明細\nご請求金額 ¥5,280\n"

	result := New().Analyze(text, model.Carrier("rakuten"))

	assert.Equal(t, model.CarrierGeneric, result.Carrier)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result := New().Analyze("", "")

	assert.True(t, result.LineCost.IsZero())
	assert.False(t, result.Reliable)
	assert.NotEmpty(t, result.AnalysisDetails)
}

func TestAnalyze_ZeroLineCostCapsConfidence(t *testing.T) {
	// Classified lines exist but no anchor is resolvable; whatever the
	// per-line confidence says, the gate must stay shut.
	text := "割引 ▲500\nあんしん保証 ¥500\n"

	result := New().Analyze(text, "")

	assert.True(t, result.LineCost.IsZero())
	assert.LessOrEqual(t, result.Confidence, 0.3)
	assert.False(t, result.Reliable)
}

func TestAnalyze_ReliabilityGateMatchesThreshold(t *testing.T) {
	texts := []string{
		"小計 ¥4,000\n消費税等 ¥400\nご請求金額 ¥4,400\n",
		"ご請求金額 ¥5,280\n",
		"あんしん保証 ¥500\n",
		"",
	}
	for _, text := range texts {
		result := New().Analyze(text, "")
		assert.Equal(t, result.Confidence >= model.ReliabilityThreshold, result.Reliable,
			"reliable flag must equal confidence >= 0.8 for input %q", text)
	}
}

func TestAnalyze_IndependentInvocations(t *testing.T) {
	a := New()
	text := "小計 ¥4,000\n消費税等 ¥400\nご請求金額 ¥4,400\n"

	first := a.Analyze(text, "")

	// An in-between run with different anchors must not leak into the next.
	a.Analyze("ご請求金額 ¥9,900\n", "")

	second := a.Analyze(text, "")
	assert.Equal(t, first.LineCost.String(), second.LineCost.String())
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Method, second.Method)
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	a := New()
	text := "小計 ¥4,000\n消費税等 ¥400\nご請求金額 ¥4,400\n"

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := a.Analyze(text, "")
			assert.Equal(t, "4400", result.LineCost.String())
		}()
	}
	wg.Wait()
}

func TestAnalyze_OutputContractFieldNames(t *testing.T) {
	result := New().Analyze("小計 ¥4,000\n消費税等 ¥400\nご請求金額 ¥4,400\n", "")

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"carrier", "line_cost", "total_cost", "terminal_cost",
		"bill_lines", "summary", "confidence", "reliable", "analysis_details",
	} {
		assert.Contains(t, decoded, key)
	}

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"subtotal", "tax_amount", "total_amount", "line_cost"} {
		assert.Contains(t, summary, key)
	}

	lines, ok := decoded["bill_lines"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, lines)
	first, ok := lines[0].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"label", "amount", "tax_category", "bill_category", "confidence", "raw_text"} {
		assert.Contains(t, first, key)
	}
}

func TestFallbackAnalysis(t *testing.T) {
	result := fallbackAnalysis(model.CarrierGeneric, "謎のテキスト 12,800円 340円 9,999,999円")

	assert.Equal(t, "12800", result.LineCost.String(), "maximum in-range token wins")
	assert.InDelta(t, 0.3, result.Confidence, 0.001)
	assert.False(t, result.Reliable)
	assert.Equal(t, model.MethodAmountScan, result.Method)
	assert.NotEmpty(t, result.AnalysisDetails)
}

func TestFallbackAnalysis_NoTokens(t *testing.T) {
	result := fallbackAnalysis(model.CarrierGeneric, "読み取り不能")

	assert.True(t, result.LineCost.IsZero())
	assert.InDelta(t, 0.0, result.Confidence, 0.001)
	assert.False(t, result.Reliable)
}
