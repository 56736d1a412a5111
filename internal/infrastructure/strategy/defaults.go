package strategy

import (
	"github.com/crm/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// NewRegistryWithDefaults creates a registry holding the three tier
// strategies with their built-in parameters. Standard is the default.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	return NewRegistryWithParameters(strategy.DefaultWholesaleMinimumOrder, strategy.DefaultVIPBasePercent)
}

// NewRegistryWithParameters creates a registry holding the three tier
// strategies, using the given wholesale minimum order and VIP base percentage.
// These instances serve quotes only; customers get their own strategies.
func NewRegistryWithParameters(wholesaleMinimum, vipBasePercent decimal.Decimal) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	standard := strategy.NewStandardDiscountStrategy()
	if err := r.RegisterDiscountStrategy(standard); err != nil {
		return nil, err
	}

	wholesale, err := strategy.NewWholesaleDiscountStrategy(wholesaleMinimum)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterDiscountStrategy(wholesale); err != nil {
		return nil, err
	}

	vip := strategy.NewVIPDiscountStrategy(vipBasePercent)
	if err := r.RegisterDiscountStrategy(vip); err != nil {
		return nil, err
	}

	// Set defaults
	if err := r.SetDefault(strategy.StrategyTypeDiscount, standard.Name()); err != nil {
		return nil, err
	}

	return r, nil
}
