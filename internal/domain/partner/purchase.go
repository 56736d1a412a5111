package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a single line item bought by a customer.
// DiscountPercent is assigned by the caller, never computed here.
type Purchase struct {
	ID              string
	ProductName     string
	Quantity        int
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
	PurchaseDate    time.Time
}

// NewPurchase creates a valid purchase dated now
func NewPurchase(productName string, quantity int, price decimal.Decimal) (*Purchase, error) {
	p := &Purchase{
		ID:              uuid.NewString(),
		ProductName:     productName,
		Quantity:        quantity,
		Price:           price,
		DiscountPercent: decimal.Zero,
		PurchaseDate:    time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Clone returns an independent copy of the purchase
func (p *Purchase) Clone() *Purchase {
	clone := *p
	return &clone
}

// Validate checks the line item fields
func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.ProductName) == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if p.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	return nil
}

// IsValid returns true if the purchase passes validation
func (p *Purchase) IsValid() bool {
	return p.Validate() == nil
}

// SetDiscountPercent assigns the discount percentage for this line
func (p *Purchase) SetDiscountPercent(percent decimal.Decimal) error {
	if err := valueobject.ValidatePercent(percent); err != nil {
		return shared.NewDomainError("INVALID_DISCOUNT_PERCENT", "Discount "+err.Error())
	}
	p.DiscountPercent = percent
	return nil
}

// TotalPrice returns the gross line total
func (p *Purchase) TotalPrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// DiscountAmount returns the discount on the gross line total
func (p *Purchase) DiscountAmount() decimal.Decimal {
	return valueobject.PercentOf(p.TotalPrice(), p.DiscountPercent)
}

// FinalAmount returns the net line total
func (p *Purchase) FinalAmount() decimal.Decimal {
	return p.TotalPrice().Sub(p.DiscountAmount())
}

// String returns a human-readable summary
func (p *Purchase) String() string {
	return fmt.Sprintf("%s x %d = %s", p.ProductName, p.Quantity, valueobject.FormatAmount(p.TotalPrice()))
}
