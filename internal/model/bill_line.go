// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func init() {
	// The output contract emits amounts as bare JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// TaxCategory indicates how a line item is treated for consumption tax.
type TaxCategory string

// Tax category constants.
const (
	TaxCategoryTaxable    TaxCategory = "TAXABLE"
	TaxCategoryNonTaxable TaxCategory = "NON_TAXABLE"
	TaxCategoryExempt     TaxCategory = "EXEMPT"
)

// BillCategory classifies what a bill line charges for.
type BillCategory string

// Bill category constants.
const (
	CategoryBase     BillCategory = "BASE"
	CategoryVoice    BillCategory = "VOICE"
	CategoryData     BillCategory = "DATA"
	CategoryDiscount BillCategory = "DISCOUNT"
	CategoryOption   BillCategory = "OPTION"
	CategoryFee      BillCategory = "FEE"
	CategoryDevice   BillCategory = "DEVICE"
	CategoryTax      BillCategory = "TAX"
	CategorySubtotal BillCategory = "SUBTOTAL"
	CategoryTotal    BillCategory = "TOTAL"
)

// Classification confidence levels assigned by the classifier.
const (
	ConfidenceExactMatch   = 0.9
	ConfidenceNoisePattern = 0.75
	ConfidenceFuzzyMatch   = 0.7
	ConfidenceUnclassified = 0.5
)

// BillLine represents one classified, amount-bearing row extracted from OCR text.
type BillLine struct {
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	TaxCategory  TaxCategory     `json:"tax_category"`
	BillCategory BillCategory    `json:"bill_category"`
	Confidence   float64         `json:"confidence"`
	RawText      string          `json:"raw_text"`
}

// NewBillLine creates a bill line with the defaults every freshly extracted
// line starts from: taxable, unclassified option, baseline confidence.
func NewBillLine(label string, amount decimal.Decimal, rawText string) BillLine {
	return BillLine{
		Label:        label,
		Amount:       amount,
		TaxCategory:  TaxCategoryTaxable,
		BillCategory: CategoryOption,
		Confidence:   ConfidenceUnclassified,
		RawText:      rawText,
	}
}

// Validate checks the structural constraints on a bill line.
func (l *BillLine) Validate() error {
	length := utf8.RuneCountInString(l.Label)
	if length < 2 || length > 100 {
		return fmt.Errorf("label must be 2-100 characters, got %d", length)
	}
	if strings.TrimSpace(l.Label) == "" {
		return fmt.Errorf("label must not be blank")
	}
	if l.Confidence < 0 || l.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", l.Confidence)
	}
	if !l.BillCategory.Valid() {
		return fmt.Errorf("unknown bill category %q", l.BillCategory)
	}
	if !l.TaxCategory.Valid() {
		return fmt.Errorf("unknown tax category %q", l.TaxCategory)
	}
	return nil
}

// Valid reports whether the category is one of the known constants.
func (c BillCategory) Valid() bool {
	switch c {
	case CategoryBase, CategoryVoice, CategoryData, CategoryDiscount,
		CategoryOption, CategoryFee, CategoryDevice, CategoryTax,
		CategorySubtotal, CategoryTotal:
		return true
	}
	return false
}

// Valid reports whether the tax category is one of the known constants.
func (c TaxCategory) Valid() bool {
	switch c {
	case TaxCategoryTaxable, TaxCategoryNonTaxable, TaxCategoryExempt:
		return true
	}
	return false
}
