package partner

import (
	"fmt"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// TierDefaults are the tier parameters applied by CustomerFactory
type TierDefaults struct {
	WholesaleMinimumOrder decimal.Decimal
	VIPBasePercent        decimal.Decimal
	VIPBonusAccrualRate   decimal.Decimal
	DefaultManager        string
}

// DefaultTierDefaults returns the built-in tier parameters
func DefaultTierDefaults() TierDefaults {
	return TierDefaults{
		WholesaleMinimumOrder: strategy.DefaultWholesaleMinimumOrder,
		VIPBasePercent:        strategy.DefaultVIPBasePercent,
		VIPBonusAccrualRate:   DefaultBonusAccrualRate,
		DefaultManager:        DefaultPersonalManager,
	}
}

// CustomerFactory builds customers with their discount strategy wired in,
// so a customer never exists with a strategy of another tier.
type CustomerFactory struct {
	defaults TierDefaults
}

// NewCustomerFactory creates a factory using defaults
func NewCustomerFactory(defaults TierDefaults) *CustomerFactory {
	return &CustomerFactory{defaults: defaults}
}

// Defaults returns the factory's tier parameters
func (f *CustomerFactory) Defaults() TierDefaults {
	return f.defaults
}

// CreateCustomer creates a customer of tier.
// Nil data yields a blank customer; otherwise data must pass ValidateCustomerData.
func (f *CustomerFactory) CreateCustomer(tier CustomerTier, data *CustomerData) (*Customer, error) {
	if data != nil {
		if err := validateFactoryData(data); err != nil {
			return nil, err
		}
	}

	switch tier {
	case CustomerTierRegular:
		return NewRegularCustomer(data)
	case CustomerTierWholesale:
		return f.newWholesale(data, f.defaults.WholesaleMinimumOrder)
	case CustomerTierVIP:
		return f.newVIP(data, f.defaults.DefaultManager)
	default:
		return nil, unknownTier(tier)
	}
}

// CreateWholesaleCustomer creates a wholesale customer with its own minimum order amount
func (f *CustomerFactory) CreateWholesaleCustomer(data *CustomerData, minimumOrder decimal.Decimal) (*Customer, error) {
	if err := validateFactoryData(data); err != nil {
		return nil, err
	}
	return f.newWholesale(data, minimumOrder)
}

// CreateVIPCustomer creates a VIP customer with a personal manager
func (f *CustomerFactory) CreateVIPCustomer(data *CustomerData, manager string) (*Customer, error) {
	if err := validateFactoryData(data); err != nil {
		return nil, err
	}
	return f.newVIP(data, manager)
}

// CreateDiscountStrategy returns a fresh strategy for tier
func (f *CustomerFactory) CreateDiscountStrategy(tier CustomerTier) (strategy.DiscountStrategy, error) {
	switch tier {
	case CustomerTierRegular:
		return strategy.NewStandardDiscountStrategy(), nil
	case CustomerTierWholesale:
		s, err := strategy.NewWholesaleDiscountStrategy(f.defaults.WholesaleMinimumOrder)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_MINIMUM_ORDER", err.Error())
		}
		return s, nil
	case CustomerTierVIP:
		return strategy.NewVIPDiscountStrategy(f.defaults.VIPBasePercent), nil
	default:
		return nil, unknownTier(tier)
	}
}

// CreateSampleCustomer creates a demo customer of tier with fixed data
func (f *CustomerFactory) CreateSampleCustomer(tier CustomerTier) (*Customer, error) {
	switch tier {
	case CustomerTierRegular:
		return f.CreateCustomer(CustomerTierRegular, NewCustomerData(
			"Ivanov Ivan Ivanovich",
			"ivanov@example.com",
			"+375 (44) 123-45-67",
			"Mogilev, Lenina st. 1",
		))
	case CustomerTierWholesale:
		return f.CreateWholesaleCustomer(NewCustomerData(
			"OOO Opttorg",
			"opttorg@example.com",
			"+375 (29) 987-65-43",
			"",
		), decimal.NewFromInt(15000))
	case CustomerTierVIP:
		return f.CreateVIPCustomer(NewCustomerData(
			"Petrov Petr Petrovich",
			"petrov@example.com",
			"+7 (999) 555-55-55",
			"",
		), "Sidorov Sergey")
	default:
		return nil, unknownTier(tier)
	}
}

func (f *CustomerFactory) newWholesale(data *CustomerData, minimumOrder decimal.Decimal) (*Customer, error) {
	s, err := strategy.NewWholesaleDiscountStrategy(minimumOrder)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MINIMUM_ORDER", "Minimum order amount cannot be negative")
	}
	return NewWholesaleCustomer(data, s)
}

func (f *CustomerFactory) newVIP(data *CustomerData, manager string) (*Customer, error) {
	s := strategy.NewVIPDiscountStrategy(f.defaults.VIPBasePercent)
	return NewVIPCustomer(data, s, manager, f.defaults.VIPBonusAccrualRate)
}

// ValidateCustomerData reports whether name, email and phone are present
// and the email contains '@'
func ValidateCustomerData(fullName, email, phone string) bool {
	return strings.TrimSpace(fullName) != "" &&
		strings.TrimSpace(email) != "" &&
		strings.TrimSpace(phone) != "" &&
		strings.Contains(email, "@")
}

func validateFactoryData(data *CustomerData) error {
	if data == nil {
		return shared.NewDomainError("INVALID_CUSTOMER_DATA", "Customer data cannot be nil")
	}
	if !ValidateCustomerData(data.FullName, data.Email, data.Phone) {
		return shared.NewDomainError("INVALID_CUSTOMER_DATA", "Full name, email and phone are required and email must contain '@'")
	}
	return data.Validate()
}

func unknownTier(tier CustomerTier) error {
	return fmt.Errorf("%w: unknown customer tier %q", shared.ErrInvalidInput, tier)
}
