package partner

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated         = "CustomerCreated"
	EventTypeCustomerUpdated         = "CustomerUpdated"
	EventTypeCustomerDeleted         = "CustomerDeleted"
	EventTypeContractSigned          = "ContractSigned"
	EventTypeContractTerminated      = "ContractTerminated"
	EventTypeContractRenewed         = "ContractRenewed"
	EventTypePurchaseAdded           = "PurchaseAdded"
	EventTypePaymentAccepted         = "PaymentAccepted"
	EventTypeBonusPointsChanged      = "BonusPointsChanged"
	EventTypePersonalManagerAssigned = "PersonalManagerAssigned"
	EventTypePaymentDeferralChanged  = "PaymentDeferralChanged"
	EventTypeMinimumOrderChanged     = "MinimumOrderChanged"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID string       `json:"customer_id"`
	Tier       CustomerTier `json:"tier"`
	FullName   string       `json:"full_name"`
	Email      string       `json:"email"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Tier:            customer.Tier(),
		FullName:        customer.FullName,
		Email:           customer.Email,
	}
}

// CustomerUpdatedEvent is published when personal data changes
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID string `json:"customer_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address,omitempty"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		FullName:        customer.FullName,
		Email:           customer.Email,
		Phone:           customer.Phone,
		Address:         customer.Address,
	}
}

// CustomerDeletedEvent is published when a customer is removed from the repository
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID string       `json:"customer_id"`
	Tier       CustomerTier `json:"tier"`
}

// NewCustomerDeletedEvent creates a new CustomerDeletedEvent
func NewCustomerDeletedEvent(customer *Customer) *CustomerDeletedEvent {
	return &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeleted, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Tier:            customer.Tier(),
	}
}

// ContractEvent is published on every contract lifecycle transition.
// Its Type tells signed, terminated and renewed apart.
type ContractEvent struct {
	shared.BaseDomainEvent
	CustomerID      string     `json:"customer_id"`
	ContractNumber  string     `json:"contract_number"`
	SignDate        time.Time  `json:"sign_date"`
	TerminationDate *time.Time `json:"termination_date,omitempty"`
}

// NewContractEvent creates a contract event of the given type
func NewContractEvent(eventType string, customer *Customer, contract *Contract) *ContractEvent {
	return &ContractEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		ContractNumber:  contract.Number,
		SignDate:        contract.SignDate,
		TerminationDate: contract.TerminationDate,
	}
}

// PurchaseAddedEvent is published when a purchase is appended
type PurchaseAddedEvent struct {
	shared.BaseDomainEvent
	CustomerID      string          `json:"customer_id"`
	PurchaseID      string          `json:"purchase_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	BonusCredited   decimal.Decimal `json:"bonus_credited"`
}

// NewPurchaseAddedEvent creates a new PurchaseAddedEvent
func NewPurchaseAddedEvent(customer *Customer, purchase *Purchase, bonus decimal.Decimal) *PurchaseAddedEvent {
	return &PurchaseAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseAdded, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		PurchaseID:      purchase.ID,
		ProductName:     purchase.ProductName,
		Quantity:        purchase.Quantity,
		TotalPrice:      purchase.TotalPrice(),
		DiscountPercent: purchase.DiscountPercent,
		BonusCredited:   bonus,
	}
}

// PaymentAcceptedEvent is published when a payment succeeds
type PaymentAcceptedEvent struct {
	shared.BaseDomainEvent
	CustomerID      string          `json:"customer_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewPaymentAcceptedEvent creates a new PaymentAcceptedEvent
func NewPaymentAcceptedEvent(customer *Customer, result PaymentResult) *PaymentAcceptedEvent {
	return &PaymentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAccepted, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		PaidAmount:      result.PaidAmount(),
		RemainingAmount: result.RemainingAmount(),
	}
}

// BonusPointsChangedEvent is published when a VIP bonus balance changes
type BonusPointsChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID string          `json:"customer_id"`
	OldBalance decimal.Decimal `json:"old_balance"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Reason     string          `json:"reason"` // accrual or redemption
}

// NewBonusPointsChangedEvent creates a new BonusPointsChangedEvent
func NewBonusPointsChangedEvent(customer *Customer, oldBalance, newBalance decimal.Decimal, reason string) *BonusPointsChangedEvent {
	return &BonusPointsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBonusPointsChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		Reason:          reason,
	}
}

// PersonalManagerAssignedEvent is published when a VIP manager changes
type PersonalManagerAssignedEvent struct {
	shared.BaseDomainEvent
	CustomerID string `json:"customer_id"`
	OldManager string `json:"old_manager"`
	NewManager string `json:"new_manager"`
}

// NewPersonalManagerAssignedEvent creates a new PersonalManagerAssignedEvent
func NewPersonalManagerAssignedEvent(customer *Customer, oldManager, newManager string) *PersonalManagerAssignedEvent {
	return &PersonalManagerAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePersonalManagerAssigned, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldManager:      oldManager,
		NewManager:      newManager,
	}
}

// PaymentDeferralChangedEvent is published when a deferral is granted or cancelled
type PaymentDeferralChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID string `json:"customer_id"`
	OldDays    int    `json:"old_days"`
	NewDays    int    `json:"new_days"`
}

// NewPaymentDeferralChangedEvent creates a new PaymentDeferralChangedEvent
func NewPaymentDeferralChangedEvent(customer *Customer, oldDays, newDays int) *PaymentDeferralChangedEvent {
	return &PaymentDeferralChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeferralChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldDays:         oldDays,
		NewDays:         newDays,
	}
}

// MinimumOrderChangedEvent is published when a wholesale minimum changes
type MinimumOrderChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID string          `json:"customer_id"`
	OldMinimum decimal.Decimal `json:"old_minimum"`
	NewMinimum decimal.Decimal `json:"new_minimum"`
}

// NewMinimumOrderChangedEvent creates a new MinimumOrderChangedEvent
func NewMinimumOrderChangedEvent(customer *Customer, oldMinimum, newMinimum decimal.Decimal) *MinimumOrderChangedEvent {
	return &MinimumOrderChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMinimumOrderChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldMinimum:      oldMinimum,
		NewMinimum:      newMinimum,
	}
}
