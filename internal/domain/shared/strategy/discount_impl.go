package strategy

import (
	"errors"
	"sync"

	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Defaults for the tiered strategies
var (
	DefaultWholesaleMinimumOrder = decimal.NewFromInt(10000)
	DefaultVIPBasePercent        = decimal.NewFromInt(25)
	MinVIPBasePercent            = decimal.NewFromInt(20)
	MaxVIPBasePercent            = decimal.NewFromInt(35)
)

var standardTable = DiscountTable{
	Bands: []DiscountBand{
		band(1000, 0),
		band(5000, 2),
		band(10000, 3),
		band(20000, 4),
	},
	Top: decimal.NewFromInt(5),
}

var wholesaleTable = DiscountTable{
	Bands: []DiscountBand{
		band(30000, 10),
		band(50000, 12),
		band(100000, 15),
		band(200000, 18),
	},
	Top: decimal.NewFromInt(20),
}

// vipTable holds the bands above the base band (total >= 5000)
var vipTable = DiscountTable{
	Bands: []DiscountBand{
		band(20000, 26),
		band(50000, 27),
		band(100000, 28),
		band(200000, 29),
	},
	Top: decimal.NewFromInt(30),
}

var vipBaseBandLimit = decimal.NewFromInt(5000)

// StandardDiscountStrategy applies the regular customer table
type StandardDiscountStrategy struct {
	BaseStrategy
}

// NewStandardDiscountStrategy creates a new standard discount strategy
func NewStandardDiscountStrategy() *StandardDiscountStrategy {
	return &StandardDiscountStrategy{
		BaseStrategy: NewBaseStrategy(
			DiscountStandard,
			StrategyTypeDiscount,
			"Standard discount grows from 0% to 5% with the purchase total",
		),
	}
}

// GetDiscountPercentage returns the percentage for total
func (s *StandardDiscountStrategy) GetDiscountPercentage(total decimal.Decimal) decimal.Decimal {
	return standardTable.PercentFor(total)
}

// CalculateDiscount returns the monetary discount for total
func (s *StandardDiscountStrategy) CalculateDiscount(total decimal.Decimal) decimal.Decimal {
	return valueobject.PercentOf(total, s.GetDiscountPercentage(total))
}

// DisplayName returns "Standard discount"
func (s *StandardDiscountStrategy) DisplayName() string {
	return "Standard discount"
}

// WholesaleDiscountStrategy applies the wholesale table once the total
// reaches the minimum order amount.
// The minimum is the only mutable strategy state; it is guarded so the
// strategy may be shared between a customer and a reader.
type WholesaleDiscountStrategy struct {
	BaseStrategy
	mu                 sync.RWMutex
	minimumOrderAmount decimal.Decimal
}

// NewWholesaleDiscountStrategy creates a wholesale strategy with the given minimum order.
// A negative minimum is rejected.
func NewWholesaleDiscountStrategy(minimumOrderAmount decimal.Decimal) (*WholesaleDiscountStrategy, error) {
	if minimumOrderAmount.IsNegative() {
		return nil, errors.New("minimum order amount cannot be negative")
	}
	return &WholesaleDiscountStrategy{
		BaseStrategy: NewBaseStrategy(
			DiscountWholesale,
			StrategyTypeDiscount,
			"Wholesale discount from 10% to 20% for orders at or above the minimum order amount",
		),
		minimumOrderAmount: minimumOrderAmount,
	}, nil
}

// NewDefaultWholesaleDiscountStrategy creates a wholesale strategy with the default minimum
func NewDefaultWholesaleDiscountStrategy() *WholesaleDiscountStrategy {
	s, _ := NewWholesaleDiscountStrategy(DefaultWholesaleMinimumOrder)
	return s
}

// MinimumOrderAmount returns the current minimum order amount
func (s *WholesaleDiscountStrategy) MinimumOrderAmount() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minimumOrderAmount
}

// SetMinimumOrderAmount changes the minimum order amount
func (s *WholesaleDiscountStrategy) SetMinimumOrderAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("minimum order amount cannot be negative")
	}
	s.mu.Lock()
	s.minimumOrderAmount = amount
	s.mu.Unlock()
	return nil
}

// ValidateMinimumOrder reports whether amount reaches the minimum order
func (s *WholesaleDiscountStrategy) ValidateMinimumOrder(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(s.MinimumOrderAmount())
}

// GetDiscountPercentage returns 0 below the minimum order, else the wholesale band
func (s *WholesaleDiscountStrategy) GetDiscountPercentage(total decimal.Decimal) decimal.Decimal {
	if !s.ValidateMinimumOrder(total) {
		return decimal.Zero
	}
	return wholesaleTable.PercentFor(total)
}

// CalculateDiscount returns the monetary discount for total
func (s *WholesaleDiscountStrategy) CalculateDiscount(total decimal.Decimal) decimal.Decimal {
	if !s.ValidateMinimumOrder(total) {
		return decimal.Zero
	}
	return valueobject.PercentOf(total, s.GetDiscountPercentage(total))
}

// DisplayName returns "Wholesale discount"
func (s *WholesaleDiscountStrategy) DisplayName() string {
	return "Wholesale discount"
}

// VIPDiscountStrategy grants a configurable base percentage on small
// totals and a growing percentage above 5000.
type VIPDiscountStrategy struct {
	BaseStrategy
	basePercent decimal.Decimal
}

// NewVIPDiscountStrategy creates a VIP strategy.
// basePercent is clamped into [20, 35].
func NewVIPDiscountStrategy(basePercent decimal.Decimal) *VIPDiscountStrategy {
	return &VIPDiscountStrategy{
		BaseStrategy: NewBaseStrategy(
			DiscountVIP,
			StrategyTypeDiscount,
			"VIP discount from the base percentage up to 30% for large totals",
		),
		basePercent: valueobject.ClampPercent(basePercent, MinVIPBasePercent, MaxVIPBasePercent),
	}
}

// NewDefaultVIPDiscountStrategy creates a VIP strategy with a 25% base
func NewDefaultVIPDiscountStrategy() *VIPDiscountStrategy {
	return NewVIPDiscountStrategy(DefaultVIPBasePercent)
}

// BasePercent returns the clamped base percentage
func (s *VIPDiscountStrategy) BasePercent() decimal.Decimal {
	return s.basePercent
}

// GetDiscountPercentage returns the base below 5000, else the VIP band
func (s *VIPDiscountStrategy) GetDiscountPercentage(total decimal.Decimal) decimal.Decimal {
	if total.LessThan(vipBaseBandLimit) {
		return s.basePercent
	}
	return vipTable.PercentFor(total)
}

// GetBonusDiscountPercentage returns the percentage granted above the base
func (s *VIPDiscountStrategy) GetBonusDiscountPercentage(total decimal.Decimal) decimal.Decimal {
	return s.GetDiscountPercentage(total).Sub(s.basePercent)
}

// CalculateDiscount returns the monetary discount for total
func (s *VIPDiscountStrategy) CalculateDiscount(total decimal.Decimal) decimal.Decimal {
	return valueobject.PercentOf(total, s.GetDiscountPercentage(total))
}

// DisplayName returns "VIP discount"
func (s *VIPDiscountStrategy) DisplayName() string {
	return "VIP discount"
}

// Compile-time interface checks
var (
	_ DiscountStrategy = (*StandardDiscountStrategy)(nil)
	_ DiscountStrategy = (*WholesaleDiscountStrategy)(nil)
	_ DiscountStrategy = (*VIPDiscountStrategy)(nil)
)
