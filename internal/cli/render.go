package cli

import (
	"fmt"
	"strings"

	"github.com/harunari/meisai/internal/model"
	"github.com/harunari/meisai/internal/service"
	"github.com/shopspring/decimal"
)

// FormatYen renders a decimal amount as a yen string with thousands separators.
func FormatYen(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	whole := amount.Truncate(0)
	frac := amount.Sub(whole)

	digits := whole.String()
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	s := sign + "¥" + strings.Join(groups, ",")
	if !frac.IsZero() {
		s += strings.TrimPrefix(frac.String(), "0")
	}
	return s
}

// RenderResult renders one analysis result for human consumption.
func RenderResult(result *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(FormatTitle("請求明細分析"))
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("回線費用: "))
	b.WriteString(FormatYen(result.LineCost))
	b.WriteString("\n")

	if !result.TerminalCost.IsZero() {
		b.WriteString(BoldStyle.Render("端末費用: "))
		b.WriteString(FormatYen(result.TerminalCost))
		b.WriteString("\n")
	}

	b.WriteString(BoldStyle.Render("キャリア: "))
	b.WriteString(string(result.Carrier))
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("信頼度: "))
	confidence := fmt.Sprintf("%.0f%% (%s)", result.Confidence*100, result.Method)
	if result.Reliable {
		b.WriteString(SuccessStyle.Render(confidence))
	} else {
		b.WriteString(WarningStyle.Render(confidence))
	}
	b.WriteString("\n")

	if len(result.BillLines) > 0 {
		b.WriteString("\n")
		b.WriteString(renderBillLines(result.BillLines))
	}

	if len(result.AnalysisDetails) > 0 {
		b.WriteString("\n")
		for _, detail := range result.AnalysisDetails {
			b.WriteString(SubtleStyle.Render("  " + detail))
			b.WriteString("\n")
		}
	}

	if !result.Reliable {
		b.WriteString("\n")
		b.WriteString(FormatWarning("信頼度が低いため、金額は目安としてご利用ください"))
		b.WriteString("\n")
	}

	return b.String()
}

func renderBillLines(lines []model.BillLine) string {
	var b strings.Builder

	header := fmt.Sprintf("%-30s %12s  %-10s", "項目", "金額", "分類")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, line := range lines {
		amount := FormatYen(line.Amount)
		row := fmt.Sprintf("%-30s %12s  %-10s", truncate(line.Label, 30), amount, line.BillCategory)
		if line.BillCategory == model.CategoryDiscount {
			b.WriteString(SuccessStyle.Render(row))
		} else {
			b.WriteString(TableCellStyle.Render(row))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderResultList renders stored analyses as a summary table.
func RenderResultList(results []model.AnalysisResult) string {
	if len(results) == 0 {
		return SubtleStyle.Render("保存された分析結果はありません") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%-36s %-10s %12s %6s  %-19s", "ID", "キャリア", "回線費用", "信頼度", "分析日時")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i := range results {
		r := &results[i]
		confidence := fmt.Sprintf("%.2f", r.Confidence)
		row := fmt.Sprintf("%-36s %-10s %12s %6s  %-19s",
			r.ID,
			r.Carrier,
			FormatYen(r.LineCost),
			confidence,
			r.AnalyzedAt.Format("2006-01-02 15:04:05"),
		)
		if r.Reliable {
			b.WriteString(row)
		} else {
			b.WriteString(SubtleStyle.Render(row))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderUsageStats renders the aggregated analysis history.
func RenderUsageStats(stats *service.UsageStats) string {
	var b strings.Builder

	b.WriteString(FormatTitle("分析統計"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %d\n", BoldStyle.Render("分析件数:"), stats.TotalAnalyses))
	b.WriteString(fmt.Sprintf("%s %d\n", BoldStyle.Render("信頼可能:"), stats.ReliableCount))
	if stats.TotalAnalyses > 0 {
		b.WriteString(fmt.Sprintf("%s %.2f\n", BoldStyle.Render("平均信頼度:"), stats.AvgConfidence))
	}
	if stats.OldestAnalyzed != nil && stats.LatestAnalyzed != nil {
		b.WriteString(fmt.Sprintf("%s %s 〜 %s\n",
			BoldStyle.Render("期間:"),
			stats.OldestAnalyzed.Format("2006-01-02"),
			stats.LatestAnalyzed.Format("2006-01-02"),
		))
	}

	if len(stats.ByCarrier) > 0 {
		b.WriteString("\n")
		header := fmt.Sprintf("%-10s %6s %6s %10s %14s", "キャリア", "件数", "信頼", "平均信頼度", "平均回線費用")
		b.WriteString(TableHeaderStyle.Render(header))
		b.WriteString("\n")
		for _, cs := range stats.ByCarrier {
			b.WriteString(fmt.Sprintf("%-10s %6d %6d %10.2f %14s\n",
				cs.Carrier, cs.Count, cs.ReliableCount, cs.AvgConfidence,
				FormatYen(decimal.NewFromFloat(cs.AvgLineCostYen).Round(0))))
		}
	}

	return b.String()
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-1]) + "…"
}
