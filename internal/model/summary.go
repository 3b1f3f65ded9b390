package model

import "github.com/shopspring/decimal"

// BillSummary aggregates the anchored figures of one analyzed invoice.
// Each field defaults to zero when the corresponding anchor was not found.
type BillSummary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCost    decimal.Decimal `json:"line_cost"`
}
