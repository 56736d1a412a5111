package strategy

import (
	"github.com/shopspring/decimal"
)

// Strategy names, also used as registry keys
const (
	DiscountStandard  = "standard"
	DiscountWholesale = "wholesale"
	DiscountVIP       = "vip"
)

// DiscountStrategy converts a running purchase total into a discount.
// Implementations must not depend on customer state.
type DiscountStrategy interface {
	Strategy
	// GetDiscountPercentage returns the percentage in [0, 100] that applies to total
	GetDiscountPercentage(total decimal.Decimal) decimal.Decimal
	// CalculateDiscount returns total × GetDiscountPercentage(total) / 100
	CalculateDiscount(total decimal.Decimal) decimal.Decimal
	// DisplayName returns the tier-specific strategy name shown to users
	DisplayName() string
}

// DiscountBand is one row of a discount table.
// The band applies to totals strictly below UpperBound.
type DiscountBand struct {
	UpperBound decimal.Decimal
	Percent    decimal.Decimal
}

// DiscountTable maps totals to percentages through ascending bands
type DiscountTable struct {
	Bands []DiscountBand
	// Top applies to totals at or above the last band's upper bound
	Top decimal.Decimal
}

// PercentFor looks up the percentage for total
func (t DiscountTable) PercentFor(total decimal.Decimal) decimal.Decimal {
	for _, band := range t.Bands {
		if total.LessThan(band.UpperBound) {
			return band.Percent
		}
	}
	return t.Top
}

func band(upper, percent int64) DiscountBand {
	return DiscountBand{
		UpperBound: decimal.NewFromInt(upper),
		Percent:    decimal.NewFromInt(percent),
	}
}
