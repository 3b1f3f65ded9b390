package analyzer

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// maxLineAmount is the largest believable single-line charge. Anything above
// it is an ID or OCR garbage, not money.
var maxLineAmount = decimal.NewFromInt(100000)

// Extraction is the successful outcome of parsing one line: the label text
// with every amount token removed, and the signed amount.
type Extraction struct {
	Label  string
	Amount decimal.Decimal
}

var (
	// Token shapes that are never monetary, checked before any amount parsing.
	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`), // date 2025/06/01
		regexp.MustCompile(`\d{8}`),                       // date 20250601
		regexp.MustCompile(`\d{3}-\d{4}-\d{4}`),           // phone 090-1234-5678
		regexp.MustCompile(`\d{10,}`),                     // invoice/account numbers
	}

	// Negative amounts are tried first; carriers print discounts with a
	// leading ▲, minus sign, or hyphen.
	negativeAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`▲([0-9][0-9,]*(?:\.[0-9]+)?)`),
		regexp.MustCompile(`−([0-9][0-9,]*(?:\.[0-9]+)?)`),
		regexp.MustCompile(`-([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}

	// Positive patterns in priority order: currency prefix, yen suffix,
	// bare digit group.
	positiveAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[¥￥]\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
		regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)円`),
		regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}

	// Used to erase every amount-shaped token when deriving the label.
	amountTokenPattern = regexp.MustCompile(`[¥￥]?\s*[▲−-]?[0-9][0-9,]*(?:\.[0-9]+)?\s*円?`)

	trailingColonPattern = regexp.MustCompile(`[：:]\s*$`)

	// A label made solely of digits, whitespace, and bracket/punctuation
	// noise carries no meaning.
	meaninglessLabelPattern = regexp.MustCompile(`^[\d\s\-_()\[\]{}]+$`)
)

// extractLabelAndAmount parses one candidate line into a label/amount pair.
// The second return value is false when the line is rejected: excluded token
// shapes, no parseable amount, out-of-range amount, or a meaningless label.
func extractLabelAndAmount(line string) (Extraction, bool) {
	for _, pattern := range excludePatterns {
		if pattern.MatchString(line) {
			slog.Debug("line excluded by pre-filter", "line", line, "pattern", pattern.String())
			return Extraction{}, false
		}
	}

	token, negative := findAmountToken(line)
	if token == "" {
		return Extraction{}, false
	}

	amount, ok := parseAmountToken(token)
	if !ok {
		slog.Debug("amount failed validity check", "line", line, "token", token)
		return Extraction{}, false
	}
	if negative {
		amount = amount.Neg()
	}

	label := deriveLabel(line)
	if !validLabel(label) {
		slog.Debug("label failed validity check", "line", line, "label", label)
		return Extraction{}, false
	}

	return Extraction{Label: label, Amount: amount}, true
}

// findAmountToken returns the first matching digit group and whether a
// negative pattern claimed it. Negative patterns win over positive ones.
func findAmountToken(line string) (token string, negative bool) {
	for _, pattern := range negativeAmountPatterns {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	for _, pattern := range positiveAmountPatterns {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return m[1], false
		}
	}
	return "", false
}

// parseAmountToken converts a digit group to a decimal and applies the
// validity bounds: nonzero, at most 100000 in magnitude, at most 2 decimal
// places.
func parseAmountToken(token string) (decimal.Decimal, bool) {
	if dot := strings.IndexByte(token, '.'); dot >= 0 && len(token)-dot-1 > 2 {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	if amount.IsZero() || amount.Abs().GreaterThan(maxLineAmount) {
		return decimal.Zero, false
	}
	return amount, true
}

// deriveLabel removes every amount-shaped token and a trailing colon from
// the line, leaving the free-text label.
func deriveLabel(line string) string {
	label := amountTokenPattern.ReplaceAllString(line, "")
	label = trailingColonPattern.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

// validLabel enforces the 2-100 rune bound and requires at least one
// meaningful (non-digit, non-symbol) character.
func validLabel(label string) bool {
	length := utf8.RuneCountInString(label)
	if length < 2 || length > 100 {
		return false
	}
	return !meaninglessLabelPattern.MatchString(label)
}
