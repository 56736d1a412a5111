package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/strategy"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Policy constants
const (
	MaxPaymentDeferralDays = 30
	DefaultPersonalManager = "Not assigned"
)

var (
	// DefaultBonusAccrualRate is the share of each purchase credited to a VIP, in percent
	DefaultBonusAccrualRate = decimal.NewFromInt(5)
	// DefaultWholesaleDisplayPercent is shown until the first discount is applied
	DefaultWholesaleDisplayPercent = decimal.NewFromInt(10)
)

// WholesaleTerms is the wholesale tier extension.
// The minimum order amount is not stored here; it lives on the
// customer's wholesale discount strategy.
type WholesaleTerms struct {
	PaymentDeferralDays int
	DiscountPercent     decimal.Decimal
}

// VIPProfile is the VIP tier extension
type VIPProfile struct {
	BonusPoints      decimal.Decimal
	PersonalManager  string
	BonusAccrualRate decimal.Decimal
	DiscountPercent  decimal.Decimal
}

// Customer represents a buyer in the partner context.
// It is the aggregate root for contracts, purchases and payments.
// Tier selects the extension: wholesale customers carry WholesaleTerms,
// VIP customers carry a VIPProfile, regular customers carry neither.
type Customer struct {
	shared.BaseAggregateRoot
	FullName string
	Email    string
	Phone    string
	Address  string

	tier             CustomerTier
	contract         *Contract
	purchases        []*Purchase
	discountStrategy strategy.DiscountStrategy
	wholesale        *WholesaleTerms
	vip              *VIPProfile
}

func newCustomer(tier CustomerTier, data *CustomerData, discount strategy.DiscountStrategy) (*Customer, error) {
	if data != nil {
		if err := data.Validate(); err != nil {
			return nil, err
		}
	} else {
		data = &CustomerData{}
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FullName:          data.FullName,
		Email:             data.Email,
		Phone:             data.Phone,
		Address:           data.Address,
		tier:              tier,
		purchases:         make([]*Purchase, 0),
		discountStrategy:  discount,
	}, nil
}

// NewRegularCustomer creates a regular customer with the standard discount.
// Nil data yields a blank customer.
func NewRegularCustomer(data *CustomerData) (*Customer, error) {
	c, err := newCustomer(CustomerTierRegular, data, strategy.NewStandardDiscountStrategy())
	if err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// NewWholesaleCustomer creates a wholesale customer bound to discount
func NewWholesaleCustomer(data *CustomerData, discount *strategy.WholesaleDiscountStrategy) (*Customer, error) {
	if discount == nil {
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Wholesale customer requires a wholesale discount strategy")
	}
	c, err := newCustomer(CustomerTierWholesale, data, discount)
	if err != nil {
		return nil, err
	}
	c.wholesale = &WholesaleTerms{
		PaymentDeferralDays: 0,
		DiscountPercent:     DefaultWholesaleDisplayPercent,
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// NewVIPCustomer creates a VIP customer bound to discount.
// A blank manager is recorded as not assigned.
func NewVIPCustomer(data *CustomerData, discount *strategy.VIPDiscountStrategy, manager string, accrualRate decimal.Decimal) (*Customer, error) {
	if discount == nil {
		return nil, shared.NewDomainError("INVALID_STRATEGY", "VIP customer requires a VIP discount strategy")
	}
	if err := valueobject.ValidatePercent(accrualRate); err != nil {
		return nil, shared.NewDomainError("INVALID_ACCRUAL_RATE", "Bonus accrual "+err.Error())
	}
	if strings.TrimSpace(manager) == "" {
		manager = DefaultPersonalManager
	}
	c, err := newCustomer(CustomerTierVIP, data, discount)
	if err != nil {
		return nil, err
	}
	c.vip = &VIPProfile{
		BonusPoints:      decimal.Zero,
		PersonalManager:  manager,
		BonusAccrualRate: accrualRate,
		DiscountPercent:  discount.BasePercent(),
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Tier returns the tier fixed at construction
func (c *Customer) Tier() CustomerTier {
	return c.tier
}

// IsRegular returns true for regular customers
func (c *Customer) IsRegular() bool {
	return c.tier == CustomerTierRegular
}

// IsWholesale returns true for wholesale customers
func (c *Customer) IsWholesale() bool {
	return c.tier == CustomerTierWholesale && c.wholesale != nil
}

// IsVIP returns true for VIP customers
func (c *Customer) IsVIP() bool {
	return c.tier == CustomerTierVIP && c.vip != nil
}

// DiscountStrategy returns the strategy bound at construction, or nil
func (c *Customer) DiscountStrategy() strategy.DiscountStrategy {
	return c.discountStrategy
}

// WholesaleTerms returns a copy of the wholesale extension, or nil
func (c *Customer) WholesaleTerms() *WholesaleTerms {
	if c.wholesale == nil {
		return nil
	}
	terms := *c.wholesale
	return &terms
}

// VIPProfile returns a copy of the VIP extension, or nil
func (c *Customer) VIPProfile() *VIPProfile {
	if c.vip == nil {
		return nil
	}
	profile := *c.vip
	return &profile
}

// ---------------------------------------------------------------------------
// Contract
// ---------------------------------------------------------------------------

// Contract returns a copy of the current contract, or nil if none was signed
func (c *Customer) Contract() *Contract {
	if c.contract == nil {
		return nil
	}
	return c.contract.Clone()
}

// HasActiveContract returns true if purchases and payments are allowed
func (c *Customer) HasActiveContract() bool {
	return c.contract != nil && c.contract.IsActive()
}

// SignContract creates a new active contract.
// A terminated contract is replaced; an active one blocks signing.
func (c *Customer) SignContract(number string, signDate time.Time) error {
	if strings.TrimSpace(number) == "" {
		return shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if c.HasActiveContract() {
		return shared.NewDomainError("CONTRACT_ALREADY_ACTIVE", "Customer already has an active contract")
	}

	contract, err := NewContract(number, signDate)
	if err != nil {
		return err
	}
	c.contract = contract
	c.Touch()

	c.AddDomainEvent(NewContractEvent(EventTypeContractSigned, c, contract))

	return nil
}

// TerminateContract terminates the active contract
func (c *Customer) TerminateContract() error {
	if c.contract == nil {
		return shared.NewDomainError("NO_CONTRACT", "Contract has not been signed")
	}
	if err := c.contract.Terminate(); err != nil {
		return err
	}
	c.Touch()

	c.AddDomainEvent(NewContractEvent(EventTypeContractTerminated, c, c.contract))

	return nil
}

// RenewContract reactivates a terminated contract from signDate
func (c *Customer) RenewContract(signDate time.Time) error {
	if c.contract == nil {
		return shared.NewDomainError("NO_CONTRACT", "Contract has not been signed")
	}
	if err := c.contract.Renew(signDate); err != nil {
		return err
	}
	c.Touch()

	c.AddDomainEvent(NewContractEvent(EventTypeContractRenewed, c, c.contract))

	return nil
}

// ---------------------------------------------------------------------------
// Personal data
// ---------------------------------------------------------------------------

// PersonalData returns a copy of the customer's personal details
func (c *Customer) PersonalData() *CustomerData {
	return NewCustomerData(c.FullName, c.Email, c.Phone, c.Address)
}

// UpdatePersonalData overwrites name, email, phone and address
func (c *Customer) UpdatePersonalData(data *CustomerData) error {
	if data == nil {
		return shared.NewDomainError("INVALID_CUSTOMER_DATA", "Customer data cannot be nil")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c.FullName = data.FullName
	c.Email = data.Email
	c.Phone = data.Phone
	c.Address = data.Address
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// ---------------------------------------------------------------------------
// Purchases
// ---------------------------------------------------------------------------

// AddPurchase appends a copy of a valid purchase while the contract is active.
// VIP customers are credited bonus points on the purchase's gross total.
func (c *Customer) AddPurchase(purchase *Purchase) error {
	if purchase == nil {
		return shared.NewDomainError("INVALID_PURCHASE", "Purchase cannot be nil")
	}
	if err := purchase.Validate(); err != nil {
		return err
	}
	if !c.HasActiveContract() {
		return shared.NewDomainError("NO_ACTIVE_CONTRACT", "Cannot add a purchase without an active contract")
	}

	purchase = purchase.Clone()
	c.purchases = append(c.purchases, purchase)

	bonus := decimal.Zero
	if c.IsVIP() {
		bonus = c.creditBonus(purchase.TotalPrice())
	}
	c.Touch()

	c.AddDomainEvent(NewPurchaseAddedEvent(c, purchase, bonus))

	return nil
}

// QuotePurchases assigns every line the discount percentage for the
// batch's gross total and returns that percentage.
// The lines are not added to the customer.
func (c *Customer) QuotePurchases(purchases []*Purchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range purchases {
		if p != nil {
			total = total.Add(p.TotalPrice())
		}
	}

	percent := decimal.Zero
	if c.discountStrategy != nil {
		percent = c.discountStrategy.GetDiscountPercentage(total)
	}

	for _, p := range purchases {
		if p != nil {
			p.DiscountPercent = percent
		}
	}
	return percent
}

// Purchases returns copies of the purchases in insertion order
func (c *Customer) Purchases() []*Purchase {
	out := make([]*Purchase, len(c.purchases))
	for i, p := range c.purchases {
		out[i] = p.Clone()
	}
	return out
}

// PurchaseCount returns the number of purchases
func (c *Customer) PurchaseCount() int {
	return len(c.purchases)
}

// ClearPurchases removes all purchases
func (c *Customer) ClearPurchases() {
	c.purchases = make([]*Purchase, 0)
	c.Touch()
}

// TotalAmount returns the sum of gross line totals
func (c *Customer) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.purchases {
		total = total.Add(p.TotalPrice())
	}
	return total
}

// ---------------------------------------------------------------------------
// Discount and payment
// ---------------------------------------------------------------------------

// ApplyDiscount returns the discount on TotalAmount.
// Wholesale and VIP customers also refresh their displayed percentage.
func (c *Customer) ApplyDiscount() decimal.Decimal {
	if c.discountStrategy == nil {
		return decimal.Zero
	}

	total := c.TotalAmount()
	discount := c.discountStrategy.CalculateDiscount(total)

	switch {
	case c.IsWholesale():
		c.wholesale.DiscountPercent = c.discountStrategy.GetDiscountPercentage(total)
	case c.IsVIP():
		c.vip.DiscountPercent = c.discountStrategy.GetDiscountPercentage(total)
	}

	return discount
}

// GetTotalWithDiscount returns TotalAmount minus ApplyDiscount
func (c *Customer) GetTotalWithDiscount() decimal.Decimal {
	return c.TotalAmount().Sub(c.ApplyDiscount())
}

// ProcessPayment checks a payment against the discounted total.
// Rejections are reported in the result, never as an error.
func (c *Customer) ProcessPayment(amount decimal.Decimal) PaymentResult {
	if !amount.IsPositive() {
		return PaymentFailed("Payment amount must be greater than zero")
	}
	if !c.HasActiveContract() {
		return PaymentFailed("Cannot accept a payment without an active contract")
	}

	due := c.GetTotalWithDiscount()
	if amount.GreaterThan(due) {
		return PaymentFailed(fmt.Sprintf("Payment amount (%s) exceeds the amount due (%s)",
			valueobject.FormatAmount(amount), valueobject.FormatAmount(due)))
	}

	result := PaymentSucceeded(amount, due.Sub(amount))
	c.AddDomainEvent(NewPaymentAcceptedEvent(c, result))
	return result
}

// ---------------------------------------------------------------------------
// Wholesale
// ---------------------------------------------------------------------------

func (c *Customer) wholesaleStrategy() (*strategy.WholesaleDiscountStrategy, bool) {
	if !c.IsWholesale() {
		return nil, false
	}
	s, ok := c.discountStrategy.(*strategy.WholesaleDiscountStrategy)
	return s, ok
}

func (c *Customer) tierMismatch(operation string) error {
	return fmt.Errorf("%w: %s is not available for %s customers", shared.ErrTierMismatch, operation, c.tier)
}

// MinimumOrderAmount returns the wholesale minimum, zero for other tiers
func (c *Customer) MinimumOrderAmount() decimal.Decimal {
	s, ok := c.wholesaleStrategy()
	if !ok {
		return decimal.Zero
	}
	return s.MinimumOrderAmount()
}

// SetMinimumOrderAmount changes the wholesale minimum order amount
func (c *Customer) SetMinimumOrderAmount(amount decimal.Decimal) error {
	s, ok := c.wholesaleStrategy()
	if !ok {
		return c.tierMismatch("minimum order amount")
	}

	oldMinimum := s.MinimumOrderAmount()
	if err := s.SetMinimumOrderAmount(amount); err != nil {
		return shared.NewDomainError("INVALID_MINIMUM_ORDER", "Minimum order amount cannot be negative")
	}
	c.Touch()

	c.AddDomainEvent(NewMinimumOrderChangedEvent(c, oldMinimum, amount))

	return nil
}

// ValidateMinimumOrder reports whether TotalAmount reaches the minimum order
func (c *Customer) ValidateMinimumOrder() bool {
	s, ok := c.wholesaleStrategy()
	if !ok {
		return false
	}
	return s.ValidateMinimumOrder(c.TotalAmount())
}

// WholesaleDiscount returns the discount the strategy grants on orderAmount
func (c *Customer) WholesaleDiscount(orderAmount decimal.Decimal) decimal.Decimal {
	s, ok := c.wholesaleStrategy()
	if !ok {
		return decimal.Zero
	}
	return s.CalculateDiscount(orderAmount)
}

// PaymentDeferralDays returns the granted deferral, 0 when none
func (c *Customer) PaymentDeferralDays() int {
	if !c.IsWholesale() {
		return 0
	}
	return c.wholesale.PaymentDeferralDays
}

// RequestPaymentDeferral grants a deferral of 1 to 30 days.
// It returns false when the request is outside policy or no contract is active.
func (c *Customer) RequestPaymentDeferral(days int) bool {
	if !c.IsWholesale() {
		return false
	}
	if days <= 0 || days > MaxPaymentDeferralDays {
		return false
	}
	if !c.HasActiveContract() {
		return false
	}

	oldDays := c.wholesale.PaymentDeferralDays
	c.wholesale.PaymentDeferralDays = days
	c.Touch()

	c.AddDomainEvent(NewPaymentDeferralChangedEvent(c, oldDays, days))

	return true
}

// CancelPaymentDeferral clears a granted deferral.
// It returns false when there was nothing to cancel.
func (c *Customer) CancelPaymentDeferral() bool {
	if !c.IsWholesale() || c.wholesale.PaymentDeferralDays == 0 {
		return false
	}

	oldDays := c.wholesale.PaymentDeferralDays
	c.wholesale.PaymentDeferralDays = 0
	c.Touch()

	c.AddDomainEvent(NewPaymentDeferralChangedEvent(c, oldDays, 0))

	return true
}

// ---------------------------------------------------------------------------
// VIP
// ---------------------------------------------------------------------------

func (c *Customer) creditBonus(amount decimal.Decimal) decimal.Decimal {
	bonus := valueobject.PercentOf(amount, c.vip.BonusAccrualRate)
	c.vip.BonusPoints = c.vip.BonusPoints.Add(bonus)
	return bonus
}

// BonusPoints returns the VIP bonus balance, zero for other tiers
func (c *Customer) BonusPoints() decimal.Decimal {
	if !c.IsVIP() {
		return decimal.Zero
	}
	return c.vip.BonusPoints
}

// BonusAccrualRate returns the VIP accrual rate in percent, zero for other tiers
func (c *Customer) BonusAccrualRate() decimal.Decimal {
	if !c.IsVIP() {
		return decimal.Zero
	}
	return c.vip.BonusAccrualRate
}

// SetBonusAccrualRate changes the VIP accrual rate; rate must lie in [0, 100]
func (c *Customer) SetBonusAccrualRate(rate decimal.Decimal) error {
	if !c.IsVIP() {
		return c.tierMismatch("bonus accrual rate")
	}
	if err := valueobject.ValidatePercent(rate); err != nil {
		return shared.NewDomainError("INVALID_ACCRUAL_RATE", "Bonus accrual "+err.Error())
	}

	c.vip.BonusAccrualRate = rate
	c.Touch()

	return nil
}

// AddBonusPoints credits amount × accrual rate / 100 to the bonus balance
func (c *Customer) AddBonusPoints(amount decimal.Decimal) error {
	if !c.IsVIP() {
		return c.tierMismatch("bonus points")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amount must be greater than zero")
	}

	oldBalance := c.vip.BonusPoints
	c.creditBonus(amount)
	c.Touch()

	c.AddDomainEvent(NewBonusPointsChangedEvent(c, oldBalance, c.vip.BonusPoints, "accrual"))

	return nil
}

// CanUseBonusPoints reports whether amount can be redeemed
func (c *Customer) CanUseBonusPoints(amount decimal.Decimal) bool {
	if !c.IsVIP() {
		return false
	}
	return amount.IsPositive() && amount.LessThanOrEqual(c.vip.BonusPoints)
}

// UseBonusPoints debits amount from the bonus balance.
// It returns false when amount is not positive or exceeds the balance.
func (c *Customer) UseBonusPoints(amount decimal.Decimal) bool {
	if !c.CanUseBonusPoints(amount) {
		return false
	}

	oldBalance := c.vip.BonusPoints
	c.vip.BonusPoints = c.vip.BonusPoints.Sub(amount)
	c.Touch()

	c.AddDomainEvent(NewBonusPointsChangedEvent(c, oldBalance, c.vip.BonusPoints, "redemption"))

	return true
}

// PersonalManager returns the VIP manager name, empty for other tiers
func (c *Customer) PersonalManager() string {
	if !c.IsVIP() {
		return ""
	}
	return c.vip.PersonalManager
}

// AssignPersonalManager sets the VIP personal manager
func (c *Customer) AssignPersonalManager(name string) error {
	if !c.IsVIP() {
		return c.tierMismatch("personal manager")
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_MANAGER_NAME", "Manager name cannot be empty")
	}

	oldManager := c.vip.PersonalManager
	c.vip.PersonalManager = name
	c.Touch()

	c.AddDomainEvent(NewPersonalManagerAssignedEvent(c, oldManager, name))

	return nil
}

// VIPDiscount returns the discount on TotalAmount for VIP customers
func (c *Customer) VIPDiscount() decimal.Decimal {
	if !c.IsVIP() || c.discountStrategy == nil {
		return decimal.Zero
	}
	return c.discountStrategy.CalculateDiscount(c.TotalAmount())
}

// DisplayDiscountPercent returns the percentage last refreshed by ApplyDiscount.
// Regular customers report the current strategy percentage.
func (c *Customer) DisplayDiscountPercent() decimal.Decimal {
	switch {
	case c.IsWholesale():
		return c.wholesale.DiscountPercent
	case c.IsVIP():
		return c.vip.DiscountPercent
	case c.discountStrategy != nil:
		return c.discountStrategy.GetDiscountPercentage(c.TotalAmount())
	default:
		return decimal.Zero
	}
}

// String returns a tier-specific summary
func (c *Customer) String() string {
	switch {
	case c.IsWholesale():
		deferral := "No deferral"
		if days := c.wholesale.PaymentDeferralDays; days > 0 {
			deferral = fmt.Sprintf("Deferral: %d days", days)
		}
		return fmt.Sprintf("[%s] %s | %s | Min order: %s | %s",
			c.tier.Label(), c.FullName, c.Email, valueobject.FormatAmount(c.MinimumOrderAmount()), deferral)
	case c.IsVIP():
		return fmt.Sprintf("[%s] %s | %s | Manager: %s | Bonus: %s",
			c.tier.Label(), c.FullName, c.Email, c.vip.PersonalManager, c.vip.BonusPoints.StringFixed(2))
	default:
		status := "No active contract"
		if c.HasActiveContract() {
			status = "Contract active"
		}
		return fmt.Sprintf("[%s] %s | %s | Purchases: %d | %s",
			c.tier.Label(), c.FullName, c.Email, len(c.purchases), status)
	}
}
