package valueobject

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// displayLanguage drives digit grouping in formatted amounts
var displayLanguage = language.English

// FormatAmount renders a monetary amount with digit grouping and two
// fraction digits, e.g. 12500 -> "12,500.00". Display only; never parse it back.
func FormatAmount(amount decimal.Decimal) string {
	p := message.NewPrinter(displayLanguage)
	return p.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// FormatPercent renders a percentage with one fraction digit, e.g. "12.5%"
func FormatPercent(percent decimal.Decimal) string {
	return percent.StringFixed(1) + "%"
}
