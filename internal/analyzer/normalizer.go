package analyzer

import (
	"log/slog"

	"github.com/harunari/meisai/internal/model"
)

// normalizeAmounts enforces sign conventions after classification: a
// discount is always a deduction, whatever sign OCR produced.
func normalizeAmounts(lines []model.BillLine) {
	for i := range lines {
		line := &lines[i]
		if line.BillCategory == model.CategoryDiscount && line.Amount.IsPositive() {
			line.Amount = line.Amount.Neg()
			slog.Debug("discount sign normalized", "label", line.Label, "amount", line.Amount)
		}
	}
}
