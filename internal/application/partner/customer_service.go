package partner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DiscountStrategyLookup resolves discount strategies by name
type DiscountStrategyLookup interface {
	GetDiscountStrategy(name string) (strategy.DiscountStrategy, error)
}

// EventHistoryReader returns the recorded events of an aggregate
type EventHistoryReader interface {
	ForAggregate(aggregateID string) ([]shared.DomainEvent, error)
}

// CustomerService handles customer-related business operations.
// Mutating use cases are serialized, since a Customer is not safe
// for concurrent use.
type CustomerService struct {
	mu             sync.Mutex
	customerRepo   partner.CustomerRepository
	factory        *partner.CustomerFactory
	strategies     DiscountStrategyLookup
	eventPublisher shared.EventPublisher
	history        EventHistoryReader
	logger         *zap.Logger
}

// CustomerServiceOption is a functional option for configuring the service
type CustomerServiceOption func(*CustomerService)

// WithEventPublisher sets the publisher for domain events
func WithEventPublisher(publisher shared.EventPublisher) CustomerServiceOption {
	return func(s *CustomerService) {
		s.eventPublisher = publisher
	}
}

// WithEventHistory sets the source for History
func WithEventHistory(history EventHistoryReader) CustomerServiceOption {
	return func(s *CustomerService) {
		s.history = history
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *zap.Logger) CustomerServiceOption {
	return func(s *CustomerService) {
		s.logger = logger
	}
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	factory *partner.CustomerFactory,
	strategies DiscountStrategyLookup,
	opts ...CustomerServiceOption,
) *CustomerService {
	s := &CustomerService{
		customerRepo: customerRepo,
		factory:      factory,
		strategies:   strategies,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new customer of the requested tier
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	tier, err := partner.ParseCustomerTier(req.Tier)
	if err != nil {
		return nil, err
	}

	data := partner.NewCustomerData(req.FullName, req.Email, req.Phone, req.Address)

	var customer *partner.Customer
	switch {
	case tier == partner.CustomerTierWholesale && req.MinimumOrder != nil:
		customer, err = s.factory.CreateWholesaleCustomer(data, *req.MinimumOrder)
	case tier == partner.CustomerTierVIP && req.PersonalManager != "":
		customer, err = s.factory.CreateVIPCustomer(data, req.PersonalManager)
	default:
		customer, err = s.factory.CreateCustomer(tier, data)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.customerRepo.Add(customer); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, customer)

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID),
		zap.String("tier", customer.Tier().String()),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID string) (*CustomerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers in insertion order, optionally filtered
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, error) {
	if err := shared.ValidateStruct(filter); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var customers []*partner.Customer
	if filter.Tier != "" {
		tier, err := partner.ParseCustomerTier(filter.Tier)
		if err != nil {
			return nil, err
		}
		customers = s.customerRepo.FindByTier(tier)
	} else {
		customers = s.customerRepo.FindAll()
	}

	if filter.ActiveContractsOnly {
		active := customers[:0:0]
		for _, c := range customers {
			if c.HasActiveContract() {
				active = append(active, c)
			}
		}
		customers = active
	}

	return ToCustomerResponses(customers), nil
}

// UpdatePersonalData replaces a customer's personal data
func (s *CustomerService) UpdatePersonalData(ctx context.Context, customerID string, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, customerID, "update personal data", func(c *partner.Customer) error {
		return c.UpdatePersonalData(partner.NewCustomerData(req.FullName, req.Email, req.Phone, req.Address))
	})
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return err
	}
	if !s.customerRepo.Remove(customerID) {
		return shared.ErrNotFound
	}

	customer.AddDomainEvent(partner.NewCustomerDeletedEvent(customer))
	s.publishDomainEvents(ctx, customer)

	s.logger.Info("customer deleted", zap.String("customer_id", customerID))
	return nil
}

// SignContract signs a new contract for a customer
func (s *CustomerService) SignContract(ctx context.Context, customerID string, req SignContractRequest) (*CustomerResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, customerID, "sign contract", func(c *partner.Customer) error {
		return c.SignContract(req.Number, dateOrNow(req.SignDate))
	})
}

// TerminateContract terminates a customer's active contract
func (s *CustomerService) TerminateContract(ctx context.Context, customerID string) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, "terminate contract", func(c *partner.Customer) error {
		return c.TerminateContract()
	})
}

// RenewContract renews a customer's terminated contract
func (s *CustomerService) RenewContract(ctx context.Context, customerID string, req RenewContractRequest) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, "renew contract", func(c *partner.Customer) error {
		return c.RenewContract(dateOrNow(req.SignDate))
	})
}

// AddPurchases quotes a batch at the discount for its gross total and
// appends every line to the customer. Either all lines are added or none.
func (s *CustomerService) AddPurchases(ctx context.Context, customerID string, req AddPurchasesRequest) (*AddPurchasesResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}

	purchases := make([]*partner.Purchase, 0, len(req.Lines))
	for i, line := range req.Lines {
		p, err := partner.NewPurchase(line.ProductName, line.Quantity, line.Price)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		purchases = append(purchases, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	if !customer.HasActiveContract() {
		return nil, shared.NewDomainError("NO_ACTIVE_CONTRACT", "Cannot add a purchase without an active contract")
	}

	percent := customer.QuotePurchases(purchases)
	bonusBefore := customer.BonusPoints()

	response := &AddPurchasesResponse{
		CustomerID:      customer.ID,
		Purchases:       make([]PurchaseResponse, 0, len(purchases)),
		DiscountPercent: percent,
		GrossTotal:      decimal.Zero,
		DiscountAmount:  decimal.Zero,
	}
	for _, p := range purchases {
		if err := customer.AddPurchase(p); err != nil {
			return nil, err
		}
		response.Purchases = append(response.Purchases, ToPurchaseResponse(p))
		response.GrossTotal = response.GrossTotal.Add(p.TotalPrice())
		response.DiscountAmount = response.DiscountAmount.Add(p.DiscountAmount())
	}
	response.NetTotal = response.GrossTotal.Sub(response.DiscountAmount)
	response.BonusCredited = customer.BonusPoints().Sub(bonusBefore)

	s.customerRepo.Update(customer)
	s.publishDomainEvents(ctx, customer)

	s.logger.Info("purchases added",
		zap.String("customer_id", customer.ID),
		zap.Int("lines", len(purchases)),
		zap.String("gross_total", response.GrossTotal.String()),
		zap.String("discount_percent", percent.String()),
	)

	return response, nil
}

// ProcessPayment accepts or rejects a payment against the discounted total.
// A rejected payment is reported in the response, not as an error.
func (s *CustomerService) ProcessPayment(ctx context.Context, customerID string, amount decimal.Decimal) (*PaymentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}

	result := customer.ProcessPayment(amount)
	if result.IsSuccess() {
		s.customerRepo.Update(customer)
		s.publishDomainEvents(ctx, customer)
		s.logger.Info("payment accepted",
			zap.String("customer_id", customer.ID),
			zap.String("amount", amount.String()),
			zap.String("remaining", result.RemainingAmount().String()),
		)
	} else {
		s.logger.Warn("payment rejected",
			zap.String("customer_id", customer.ID),
			zap.String("amount", amount.String()),
			zap.String("reason", result.Message()),
		)
	}

	response := ToPaymentResponse(result)
	return &response, nil
}

// RedeemBonusPoints debits a VIP customer's bonus balance.
// An amount above the balance is reported in the response.
func (s *CustomerService) RedeemBonusPoints(ctx context.Context, customerID string, amount decimal.Decimal) (*BonusRedemptionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsVIP() {
		return nil, fmt.Errorf("%w: bonus points are not available for %s customers", shared.ErrTierMismatch, customer.Tier())
	}

	redeemed := customer.UseBonusPoints(amount)
	if redeemed {
		s.customerRepo.Update(customer)
		s.publishDomainEvents(ctx, customer)
	}

	return &BonusRedemptionResponse{
		Redeemed: redeemed,
		Amount:   amount,
		Balance:  customer.BonusPoints(),
	}, nil
}

// AssignPersonalManager sets a VIP customer's personal manager
func (s *CustomerService) AssignPersonalManager(ctx context.Context, customerID, manager string) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, "assign personal manager", func(c *partner.Customer) error {
		return c.AssignPersonalManager(manager)
	})
}

// RequestPaymentDeferral asks for a payment deferral for a wholesale customer.
// A request outside policy is reported in the response.
func (s *CustomerService) RequestPaymentDeferral(ctx context.Context, customerID string, days int) (*PaymentDeferralResponse, error) {
	return s.deferral(ctx, customerID, func(c *partner.Customer) bool {
		return c.RequestPaymentDeferral(days)
	})
}

// CancelPaymentDeferral clears a wholesale customer's payment deferral
func (s *CustomerService) CancelPaymentDeferral(ctx context.Context, customerID string) (*PaymentDeferralResponse, error) {
	return s.deferral(ctx, customerID, (*partner.Customer).CancelPaymentDeferral)
}

func (s *CustomerService) deferral(ctx context.Context, customerID string, change func(*partner.Customer) bool) (*PaymentDeferralResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsWholesale() {
		return nil, fmt.Errorf("%w: payment deferral is not available for %s customers", shared.ErrTierMismatch, customer.Tier())
	}

	granted := change(customer)
	if granted {
		s.customerRepo.Update(customer)
		s.publishDomainEvents(ctx, customer)
	}

	return &PaymentDeferralResponse{
		Granted: granted,
		Days:    customer.PaymentDeferralDays(),
	}, nil
}

// SetMinimumOrderAmount changes a wholesale customer's minimum order amount
func (s *CustomerService) SetMinimumOrderAmount(ctx context.Context, customerID string, amount decimal.Decimal) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, "set minimum order amount", func(c *partner.Customer) error {
		return c.SetMinimumOrderAmount(amount)
	})
}

// QuoteDiscount computes what a discount strategy grants on amount.
// name is a strategy name or a customer tier.
func (s *CustomerService) QuoteDiscount(ctx context.Context, name string, amount decimal.Decimal) (*DiscountQuoteResponse, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Amount cannot be negative")
	}

	if tier, err := partner.ParseCustomerTier(name); err == nil {
		name = StrategyNameForTier(tier)
	}
	discount, err := s.strategies.GetDiscountStrategy(name)
	if err != nil {
		return nil, err
	}

	discountAmount := discount.CalculateDiscount(amount)
	return &DiscountQuoteResponse{
		Strategy:        discount.Name(),
		DisplayName:     discount.DisplayName(),
		Amount:          amount,
		DiscountPercent: discount.GetDiscountPercentage(amount),
		DiscountAmount:  discountAmount,
		Total:           amount.Sub(discountAmount),
	}, nil
}

// StrategyNameForTier returns the registered discount strategy name of a tier
func StrategyNameForTier(tier partner.CustomerTier) string {
	switch tier {
	case partner.CustomerTierWholesale:
		return strategy.DiscountWholesale
	case partner.CustomerTierVIP:
		return strategy.DiscountVIP
	default:
		return strategy.DiscountStandard
	}
}

// Summary aggregates all customers overall and per tier
func (s *CustomerService) Summary(ctx context.Context) (*CustomerSummaryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tiers := partner.AllCustomerTiers()
	byTier := make(map[partner.CustomerTier]*TierSummary, len(tiers))
	summary := &CustomerSummaryResponse{
		GrossTotal:    decimal.Zero,
		DiscountTotal: decimal.Zero,
		Tiers:         make([]TierSummary, 0, len(tiers)),
	}
	for _, tier := range tiers {
		byTier[tier] = &TierSummary{Tier: tier.String(), GrossTotal: decimal.Zero, DiscountTotal: decimal.Zero}
	}

	for _, c := range s.customerRepo.FindAll() {
		ts, ok := byTier[c.Tier()]
		if !ok {
			continue
		}
		total := c.TotalAmount()
		discount := decimal.Zero
		if d := c.DiscountStrategy(); d != nil {
			discount = d.CalculateDiscount(total)
		}

		ts.Customers++
		ts.Purchases += c.PurchaseCount()
		ts.GrossTotal = ts.GrossTotal.Add(total)
		ts.DiscountTotal = ts.DiscountTotal.Add(discount)
		if c.HasActiveContract() {
			ts.ActiveContracts++
		}
	}

	for _, tier := range tiers {
		ts := byTier[tier]
		summary.TotalCustomers += ts.Customers
		summary.ActiveContracts += ts.ActiveContracts
		summary.GrossTotal = summary.GrossTotal.Add(ts.GrossTotal)
		summary.DiscountTotal = summary.DiscountTotal.Add(ts.DiscountTotal)
		summary.Tiers = append(summary.Tiers, *ts)
	}

	return summary, nil
}

// History returns the recorded events of a customer, oldest first
func (s *CustomerService) History(ctx context.Context, customerID string) ([]EventResponse, error) {
	if s.history == nil {
		return []EventResponse{}, nil
	}

	events, err := s.history.ForAggregate(customerID)
	if err != nil {
		return nil, err
	}

	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = ToEventResponse(e)
	}
	return out, nil
}

// SeedSampleCustomers creates one sample customer per tier, each with
// an active contract.
func (s *CustomerService) SeedSampleCustomers(ctx context.Context) ([]CustomerResponse, error) {
	responses := make([]CustomerResponse, 0, len(partner.AllCustomerTiers()))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tier := range partner.AllCustomerTiers() {
		customer, err := s.factory.CreateSampleCustomer(tier)
		if err != nil {
			return nil, err
		}
		if err := customer.SignContract(fmt.Sprintf("S-%03d", i+1), time.Now()); err != nil {
			return nil, err
		}
		if err := s.customerRepo.Add(customer); err != nil {
			return nil, err
		}
		s.publishDomainEvents(ctx, customer)
		responses = append(responses, ToCustomerResponse(customer))
	}

	s.logger.Info("sample customers seeded", zap.Int("count", len(responses)))
	return responses, nil
}

// mutate loads a customer, applies change, stores it and publishes its events
func (s *CustomerService) mutate(ctx context.Context, customerID, operation string, change func(*partner.Customer) error) (*CustomerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		return nil, err
	}

	if err := change(customer); err != nil {
		s.logger.Debug("customer operation rejected",
			zap.String("customer_id", customerID),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return nil, err
	}

	s.customerRepo.Update(customer)
	s.publishDomainEvents(ctx, customer)

	s.logger.Info("customer updated",
		zap.String("customer_id", customerID),
		zap.String("operation", operation),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// publishDomainEvents publishes and clears the customer's pending events
func (s *CustomerService) publishDomainEvents(ctx context.Context, customer *partner.Customer) {
	events := customer.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish domain events",
				zap.String("customer_id", customer.ID),
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
	}
	customer.ClearDomainEvents()
}

func dateOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
