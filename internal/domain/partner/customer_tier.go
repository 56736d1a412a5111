package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// CustomerTier classifies a customer and selects its discount strategy
type CustomerTier string

const (
	CustomerTierRegular   CustomerTier = "regular"
	CustomerTierWholesale CustomerTier = "wholesale"
	CustomerTierVIP       CustomerTier = "vip"
)

// String returns the string representation of the tier
func (t CustomerTier) String() string {
	return string(t)
}

// IsValid returns true if the tier is one of the known tiers
func (t CustomerTier) IsValid() bool {
	switch t {
	case CustomerTierRegular, CustomerTierWholesale, CustomerTierVIP:
		return true
	default:
		return false
	}
}

// Label returns the tag shown in customer summaries
func (t CustomerTier) Label() string {
	switch t {
	case CustomerTierRegular:
		return "Regular"
	case CustomerTierWholesale:
		return "Wholesale"
	case CustomerTierVIP:
		return "VIP"
	default:
		return string(t)
	}
}

// AllCustomerTiers returns all valid tiers
func AllCustomerTiers() []CustomerTier {
	return []CustomerTier{
		CustomerTierRegular,
		CustomerTierWholesale,
		CustomerTierVIP,
	}
}

// ParseCustomerTier parses a tier name, case-insensitively
func ParseCustomerTier(s string) (CustomerTier, error) {
	tier := CustomerTier(strings.ToLower(strings.TrimSpace(s)))
	if !tier.IsValid() {
		return "", shared.NewDomainError("INVALID_TIER", "Unknown customer tier: "+s)
	}
	return tier, nil
}
