package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// HundredPercent is the upper bound of any percentage
	HundredPercent = decimal.NewFromInt(100)
)

// PercentOf returns amount × percent / 100.
// The division is a decimal shift, so the result is exact.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent.Shift(-2))
}

// ValidatePercent checks that a percentage lies in [0, 100]
func ValidatePercent(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return errors.New("percentage cannot be negative")
	}
	if percent.GreaterThan(HundredPercent) {
		return errors.New("percentage cannot exceed 100")
	}
	return nil
}

// ClampPercent limits percent to the closed range [lo, hi]
func ClampPercent(percent, lo, hi decimal.Decimal) decimal.Decimal {
	if percent.LessThan(lo) {
		return lo
	}
	if percent.GreaterThan(hi) {
		return hi
	}
	return percent
}
