package partner

import (
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer.
// MinimumOrder applies to wholesale customers, PersonalManager to VIPs;
// when omitted the factory defaults are used.
type CreateCustomerRequest struct {
	Tier            string           `json:"tier" validate:"required,oneof=regular wholesale vip"`
	FullName        string           `json:"full_name" validate:"notblank,max=200"`
	Email           string           `json:"email" validate:"notblank,max=200,contains=@"`
	Phone           string           `json:"phone" validate:"notblank,max=50"`
	Address         string           `json:"address" validate:"max=500"`
	MinimumOrder    *decimal.Decimal `json:"minimum_order,omitempty"`
	PersonalManager string           `json:"personal_manager,omitempty" validate:"max=200"`
}

// UpdateCustomerRequest represents a request to replace a customer's personal data
type UpdateCustomerRequest struct {
	FullName string `json:"full_name" validate:"notblank,max=200"`
	Email    string `json:"email" validate:"notblank,max=200,contains=@"`
	Phone    string `json:"phone" validate:"notblank,max=50"`
	Address  string `json:"address" validate:"max=500"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Tier                string `json:"tier" validate:"omitempty,oneof=regular wholesale vip"`
	ActiveContractsOnly bool   `json:"active_contracts_only"`
}

// CustomerResponse represents a customer in service responses.
// Tier-specific fields are nil for other tiers.
type CustomerResponse struct {
	ID                  string            `json:"id"`
	Tier                string            `json:"tier"`
	FullName            string            `json:"full_name"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone"`
	Address             string            `json:"address"`
	Contract            *ContractResponse `json:"contract,omitempty"`
	PurchaseCount       int               `json:"purchase_count"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	DiscountPercent     decimal.Decimal   `json:"discount_percent"`
	DiscountAmount      decimal.Decimal   `json:"discount_amount"`
	TotalWithDiscount   decimal.Decimal   `json:"total_with_discount"`
	MinimumOrder        *decimal.Decimal  `json:"minimum_order,omitempty"`
	MeetsMinimumOrder   *bool             `json:"meets_minimum_order,omitempty"`
	PaymentDeferralDays *int              `json:"payment_deferral_days,omitempty"`
	BonusPoints         *decimal.Decimal  `json:"bonus_points,omitempty"`
	BonusAccrualRate    *decimal.Decimal  `json:"bonus_accrual_rate,omitempty"`
	PersonalManager     string            `json:"personal_manager,omitempty"`
	Summary             string            `json:"summary"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse.
// It does not refresh the customer's displayed discount percentage.
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	total := c.TotalAmount()
	percent, discount := decimal.Zero, decimal.Zero
	if s := c.DiscountStrategy(); s != nil {
		percent = s.GetDiscountPercentage(total)
		discount = s.CalculateDiscount(total)
	}

	resp := CustomerResponse{
		ID:                c.ID,
		Tier:              c.Tier().String(),
		FullName:          c.FullName,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		PurchaseCount:     c.PurchaseCount(),
		TotalAmount:       total,
		DiscountPercent:   percent,
		DiscountAmount:    discount,
		TotalWithDiscount: total.Sub(discount),
		Summary:           c.String(),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}

	if contract := c.Contract(); contract != nil {
		cr := ToContractResponse(contract)
		resp.Contract = &cr
	}

	switch {
	case c.IsWholesale():
		minimum := c.MinimumOrderAmount()
		meets := c.ValidateMinimumOrder()
		days := c.PaymentDeferralDays()
		resp.MinimumOrder = &minimum
		resp.MeetsMinimumOrder = &meets
		resp.PaymentDeferralDays = &days
	case c.IsVIP():
		points := c.BonusPoints()
		rate := c.BonusAccrualRate()
		resp.BonusPoints = &points
		resp.BonusAccrualRate = &rate
		resp.PersonalManager = c.PersonalManager()
	}

	return resp
}

// ToCustomerResponses converts customers in order
func ToCustomerResponses(customers []*partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = ToCustomerResponse(c)
	}
	return out
}

// =============================================================================
// Contract DTOs
// =============================================================================

// SignContractRequest represents a request to sign a contract.
// A nil SignDate means now.
type SignContractRequest struct {
	Number   string     `json:"number" validate:"notblank,max=50"`
	SignDate *time.Time `json:"sign_date,omitempty"`
}

// RenewContractRequest represents a request to renew a terminated contract
type RenewContractRequest struct {
	SignDate *time.Time `json:"sign_date,omitempty"`
}

// ContractResponse represents a contract in service responses
type ContractResponse struct {
	Number          string     `json:"number"`
	SignDate        time.Time  `json:"sign_date"`
	Status          string     `json:"status"`
	Active          bool       `json:"active"`
	TerminationDate *time.Time `json:"termination_date,omitempty"`
	Summary         string     `json:"summary"`
}

// ToContractResponse converts a domain Contract to ContractResponse
func ToContractResponse(c *partner.Contract) ContractResponse {
	return ContractResponse{
		Number:          c.Number,
		SignDate:        c.SignDate,
		Status:          c.Status(),
		Active:          c.IsActive(),
		TerminationDate: c.TerminationDate,
		Summary:         c.String(),
	}
}

// =============================================================================
// Purchase DTOs
// =============================================================================

// PurchaseLine is one line of an AddPurchasesRequest
type PurchaseLine struct {
	ProductName string          `json:"product_name" validate:"notblank,max=200"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price"`
}

// AddPurchasesRequest represents a batch of purchases quoted and added together
type AddPurchasesRequest struct {
	Lines []PurchaseLine `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseResponse represents a purchase in service responses
type PurchaseResponse struct {
	ID              string          `json:"id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	Summary         string          `json:"summary"`
}

// ToPurchaseResponse converts a domain Purchase to PurchaseResponse
func ToPurchaseResponse(p *partner.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:              p.ID,
		ProductName:     p.ProductName,
		Quantity:        p.Quantity,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		TotalPrice:      p.TotalPrice(),
		FinalAmount:     p.FinalAmount(),
		PurchaseDate:    p.PurchaseDate,
		Summary:         p.String(),
	}
}

// AddPurchasesResponse reports a batch added to a customer
type AddPurchasesResponse struct {
	CustomerID      string             `json:"customer_id"`
	Purchases       []PurchaseResponse `json:"purchases"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	GrossTotal      decimal.Decimal    `json:"gross_total"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	NetTotal        decimal.Decimal    `json:"net_total"`
	BonusCredited   decimal.Decimal    `json:"bonus_credited"`
}

// =============================================================================
// Payment and bonus DTOs
// =============================================================================

// PaymentResponse represents the outcome of a payment
type PaymentResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Summary         string          `json:"summary"`
}

// ToPaymentResponse converts a PaymentResult to PaymentResponse
func ToPaymentResponse(r partner.PaymentResult) PaymentResponse {
	return PaymentResponse{
		Success:         r.IsSuccess(),
		Message:         r.Message(),
		PaidAmount:      r.PaidAmount(),
		RemainingAmount: r.RemainingAmount(),
		TransactionDate: r.TransactionDate(),
		Summary:         r.String(),
	}
}

// BonusRedemptionResponse reports a bonus redemption attempt
type BonusRedemptionResponse struct {
	Redeemed bool            `json:"redeemed"`
	Amount   decimal.Decimal `json:"amount"`
	Balance  decimal.Decimal `json:"balance"`
}

// PaymentDeferralResponse reports a payment deferral request or cancellation
type PaymentDeferralResponse struct {
	Granted bool `json:"granted"`
	Days    int  `json:"days"`
}

// =============================================================================
// Discount and summary DTOs
// =============================================================================

// DiscountQuoteResponse reports what a strategy grants on an amount
type DiscountQuoteResponse struct {
	Strategy        string          `json:"strategy"`
	DisplayName     string          `json:"display_name"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
}

// String formats the quote for display
func (q DiscountQuoteResponse) String() string {
	return q.DisplayName + ": " + valueobject.FormatPercent(q.DiscountPercent) +
		" of " + valueobject.FormatAmount(q.Amount) +
		" = " + valueobject.FormatAmount(q.DiscountAmount) +
		", total " + valueobject.FormatAmount(q.Total)
}

// TierSummary aggregates the customers of one tier
type TierSummary struct {
	Tier            string          `json:"tier"`
	Customers       int             `json:"customers"`
	ActiveContracts int             `json:"active_contracts"`
	Purchases       int             `json:"purchases"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
}

// CustomerSummaryResponse aggregates every stored customer
type CustomerSummaryResponse struct {
	TotalCustomers  int             `json:"total_customers"`
	ActiveContracts int             `json:"active_contracts"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	Tiers           []TierSummary   `json:"tiers"`
}

// EventResponse represents a recorded domain event
type EventResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToEventResponse converts a domain event to EventResponse
func ToEventResponse(e shared.DomainEvent) EventResponse {
	return EventResponse{
		ID:         e.EventID().String(),
		Type:       e.EventType(),
		OccurredAt: e.OccurredAt(),
	}
}
