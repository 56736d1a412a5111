package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

func (c *Console) registerCommands() map[string]command {
	return map[string]command{
		"help":      {"help", "Show this list", c.help},
		"list":      {"list [regular|wholesale|vip] [active]", "List customers", c.list},
		"show":      {"show <id>", "Show a customer", c.show},
		"create":    {"create <tier> <name>;<email>;<phone>[;<address>[;<minimum order|manager>]]", "Create a customer", c.create},
		"update":    {"update <id> <name>;<email>;<phone>[;<address>]", "Replace personal data", c.update},
		"sign":      {"sign <id> <number> [dd.mm.yyyy]", "Sign a contract", c.sign},
		"terminate": {"terminate <id>", "Terminate the contract", c.terminate},
		"renew":     {"renew <id> [dd.mm.yyyy]", "Renew a terminated contract", c.renew},
		"buy":       {"buy <id> <product>;<qty>;<price>[|...]", "Add a batch of purchases", c.buy},
		"pay":       {"pay <id> <amount>", "Process a payment", c.pay},
		"bonus":     {"bonus <id> <amount>", "Redeem VIP bonus points", c.bonus},
		"defer":     {"defer <id> <days>", "Request a wholesale payment deferral", c.deferPayment},
		"undefer":   {"undefer <id>", "Cancel the payment deferral", c.undefer},
		"minimum":   {"minimum <id> <amount>", "Set the wholesale minimum order", c.minimum},
		"manager":   {"manager <id> <name>", "Assign a VIP personal manager", c.manager},
		"quote":     {"quote <tier|strategy> <amount>", "Quote a discount", c.quote},
		"history":   {"history <id>", "Show recorded events", c.history},
		"summary":   {"summary", "Show totals per tier", c.summary},
		"delete":    {"delete <id>", "Delete a customer", c.deleteCustomer},
		"quit":      {"quit", "Leave the console", c.quit},
	}
}

// =============================================================================
// Argument parsing
// =============================================================================

// splitArgs splits args into the first word and the trimmed remainder
func splitArgs(args string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	return first, strings.TrimSpace(rest)
}

// splitFields splits a ';'-separated list and trims each field
func splitFields(s string) []string {
	fields := strings.Split(s, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid amount: "+s)
	}
	return amount, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(partner.ContractDateLayout, s, time.Local)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid date, expected dd.mm.yyyy: "+s)
	}
	return &t, nil
}

// requireID returns the single id argument
func requireID(args, usage string) (string, error) {
	id, rest := splitArgs(args)
	if id == "" || rest != "" {
		return "", usageError(usage)
	}
	return id, nil
}

// idAndAmount parses "<id> <amount>"
func idAndAmount(args, usage string) (string, decimal.Decimal, error) {
	id, rest := splitArgs(args)
	if id == "" || rest == "" {
		return "", decimal.Zero, usageError(usage)
	}
	amount, err := parseAmount(rest)
	return id, amount, err
}

// =============================================================================
// Customers
// =============================================================================

func (c *Console) list(ctx context.Context, args string) error {
	var filter partnerapp.CustomerListFilter
	for _, word := range strings.Fields(args) {
		if strings.EqualFold(word, "active") {
			filter.ActiveContractsOnly = true
			continue
		}
		filter.Tier = strings.ToLower(word)
	}

	customers, err := c.service.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		c.printf("No customers\n")
		return nil
	}
	for _, customer := range customers {
		c.printf("%s  %s\n", customer.ID, customer.Summary)
	}
	return nil
}

func (c *Console) show(ctx context.Context, args string) error {
	id, err := requireID(args, c.commands["show"].usage)
	if err != nil {
		return err
	}
	customer, err := c.service.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.printCustomer(customer)
	return nil
}

func (c *Console) printCustomer(customer *partnerapp.CustomerResponse) {
	c.printf("%s\n", customer.Summary)
	c.printf("  ID:        %s\n", customer.ID)
	c.printf("  Phone:     %s\n", customer.Phone)
	if customer.Address != "" {
		c.printf("  Address:   %s\n", customer.Address)
	}
	if customer.Contract != nil {
		c.printf("  Contract:  %s\n", customer.Contract.Summary)
	} else {
		c.printf("  Contract:  none\n")
	}
	c.printf("  Purchases: %d, total %s\n", customer.PurchaseCount, valueobject.FormatAmount(customer.TotalAmount))
	c.printf("  Discount:  %s (%s), due %s\n",
		valueobject.FormatPercent(customer.DiscountPercent),
		valueobject.FormatAmount(customer.DiscountAmount),
		valueobject.FormatAmount(customer.TotalWithDiscount))
	if customer.MinimumOrder != nil {
		c.printf("  Minimum:   %s, reached: %t\n", valueobject.FormatAmount(*customer.MinimumOrder), *customer.MeetsMinimumOrder)
	}
	if customer.BonusPoints != nil {
		c.printf("  Bonus:     %s at %s\n", customer.BonusPoints.StringFixed(2), valueobject.FormatPercent(*customer.BonusAccrualRate))
	}
}

func (c *Console) create(ctx context.Context, args string) error {
	usage := c.commands["create"].usage
	tier, rest := splitArgs(args)
	fields := splitFields(rest)
	if tier == "" || len(fields) < 3 || len(fields) > 5 {
		return usageError(usage)
	}

	req := partnerapp.CreateCustomerRequest{
		Tier:     strings.ToLower(tier),
		FullName: fields[0],
		Email:    fields[1],
		Phone:    fields[2],
	}
	if len(fields) >= 4 {
		req.Address = fields[3]
	}
	// the fifth field is the wholesale minimum order or the VIP manager
	if len(fields) == 5 && fields[4] != "" {
		switch req.Tier {
		case partner.CustomerTierWholesale.String():
			minimum, err := parseAmount(fields[4])
			if err != nil {
				return err
			}
			req.MinimumOrder = &minimum
		case partner.CustomerTierVIP.String():
			req.PersonalManager = fields[4]
		default:
			return usageError(usage)
		}
	}

	customer, err := c.service.Create(ctx, req)
	if err != nil {
		return err
	}
	c.printf("Created %s customer %s\n", customer.Tier, customer.ID)
	return nil
}

func (c *Console) update(ctx context.Context, args string) error {
	usage := c.commands["update"].usage
	id, rest := splitArgs(args)
	fields := splitFields(rest)
	if id == "" || len(fields) < 3 || len(fields) > 4 {
		return usageError(usage)
	}

	req := partnerapp.UpdateCustomerRequest{FullName: fields[0], Email: fields[1], Phone: fields[2]}
	if len(fields) == 4 {
		req.Address = fields[3]
	}

	customer, err := c.service.UpdatePersonalData(ctx, id, req)
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Summary)
	return nil
}

func (c *Console) deleteCustomer(ctx context.Context, args string) error {
	id, err := requireID(args, c.commands["delete"].usage)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx, id); err != nil {
		return err
	}
	c.printf("Deleted %s\n", id)
	return nil
}

// =============================================================================
// Contracts
// =============================================================================

func (c *Console) sign(ctx context.Context, args string) error {
	usage := c.commands["sign"].usage
	id, rest := splitArgs(args)
	number, date := splitArgs(rest)
	if id == "" || number == "" {
		return usageError(usage)
	}
	signDate, err := parseDate(date)
	if err != nil {
		return err
	}

	customer, err := c.service.SignContract(ctx, id, partnerapp.SignContractRequest{Number: number, SignDate: signDate})
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Contract.Summary)
	return nil
}

func (c *Console) terminate(ctx context.Context, args string) error {
	id, err := requireID(args, c.commands["terminate"].usage)
	if err != nil {
		return err
	}
	customer, err := c.service.TerminateContract(ctx, id)
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Contract.Summary)
	return nil
}

func (c *Console) renew(ctx context.Context, args string) error {
	id, date := splitArgs(args)
	if id == "" {
		return usageError(c.commands["renew"].usage)
	}
	signDate, err := parseDate(date)
	if err != nil {
		return err
	}

	customer, err := c.service.RenewContract(ctx, id, partnerapp.RenewContractRequest{SignDate: signDate})
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Contract.Summary)
	return nil
}

// =============================================================================
// Purchases and payments
// =============================================================================

func (c *Console) buy(ctx context.Context, args string) error {
	usage := c.commands["buy"].usage
	id, rest := splitArgs(args)
	if id == "" || rest == "" {
		return usageError(usage)
	}

	var req partnerapp.AddPurchasesRequest
	for _, item := range strings.Split(rest, "|") {
		fields := splitFields(item)
		if len(fields) != 3 {
			return usageError(usage)
		}
		quantity, err := strconv.Atoi(fields[1])
		if err != nil {
			return shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid quantity: "+fields[1])
		}
		price, err := parseAmount(fields[2])
		if err != nil {
			return err
		}
		req.Lines = append(req.Lines, partnerapp.PurchaseLine{ProductName: fields[0], Quantity: quantity, Price: price})
	}

	telemetry.SetAttributes(telemetry.SpanFromContext(ctx),
		telemetry.SpanAttrCustomerID, id,
		telemetry.SpanAttrLineCount, len(req.Lines))

	resp, err := c.service.AddPurchases(ctx, id, req)
	if err != nil {
		return err
	}
	for _, p := range resp.Purchases {
		c.printf("  %s\n", p.Summary)
	}
	c.printf("Discount %s: total %s, discount %s, due %s\n",
		valueobject.FormatPercent(resp.DiscountPercent),
		valueobject.FormatAmount(resp.GrossTotal),
		valueobject.FormatAmount(resp.DiscountAmount),
		valueobject.FormatAmount(resp.NetTotal))
	if resp.BonusCredited.IsPositive() {
		c.printf("Bonus points credited: %s\n", resp.BonusCredited.StringFixed(2))
	}
	return nil
}

func (c *Console) pay(ctx context.Context, args string) error {
	id, amount, err := idAndAmount(args, c.commands["pay"].usage)
	if err != nil {
		return err
	}
	telemetry.SetAttributes(telemetry.SpanFromContext(ctx),
		telemetry.SpanAttrCustomerID, id,
		telemetry.SpanAttrAmount, amount)

	resp, err := c.service.ProcessPayment(ctx, id, amount)
	if err != nil {
		return err
	}
	c.printf("%s\n", resp.Summary)
	return nil
}

// =============================================================================
// Tier operations
// =============================================================================

func (c *Console) bonus(ctx context.Context, args string) error {
	id, amount, err := idAndAmount(args, c.commands["bonus"].usage)
	if err != nil {
		return err
	}
	resp, err := c.service.RedeemBonusPoints(ctx, id, amount)
	if err != nil {
		return err
	}
	if resp.Redeemed {
		c.printf("Redeemed %s bonus points, balance %s\n", resp.Amount.StringFixed(2), resp.Balance.StringFixed(2))
	} else {
		c.printf("Bonus points not redeemed, balance %s\n", resp.Balance.StringFixed(2))
	}
	return nil
}

func (c *Console) deferPayment(ctx context.Context, args string) error {
	usage := c.commands["defer"].usage
	id, rest := splitArgs(args)
	if id == "" || rest == "" {
		return usageError(usage)
	}
	days, err := strconv.Atoi(rest)
	if err != nil {
		return usageError(usage)
	}

	resp, err := c.service.RequestPaymentDeferral(ctx, id, days)
	if err != nil {
		return err
	}
	if resp.Granted {
		c.printf("Payment deferral granted: %d days\n", resp.Days)
	} else {
		c.printf("Payment deferral refused (1 to %d days with an active contract), current %d days\n",
			partner.MaxPaymentDeferralDays, resp.Days)
	}
	return nil
}

func (c *Console) undefer(ctx context.Context, args string) error {
	id, err := requireID(args, c.commands["undefer"].usage)
	if err != nil {
		return err
	}
	resp, err := c.service.CancelPaymentDeferral(ctx, id)
	if err != nil {
		return err
	}
	if resp.Granted {
		c.printf("Payment deferral cancelled\n")
	} else {
		c.printf("No payment deferral to cancel\n")
	}
	return nil
}

func (c *Console) minimum(ctx context.Context, args string) error {
	id, amount, err := idAndAmount(args, c.commands["minimum"].usage)
	if err != nil {
		return err
	}
	customer, err := c.service.SetMinimumOrderAmount(ctx, id, amount)
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Summary)
	return nil
}

func (c *Console) manager(ctx context.Context, args string) error {
	id, name := splitArgs(args)
	if id == "" || name == "" {
		return usageError(c.commands["manager"].usage)
	}
	customer, err := c.service.AssignPersonalManager(ctx, id, name)
	if err != nil {
		return err
	}
	c.printf("%s\n", customer.Summary)
	return nil
}

// =============================================================================
// Reports
// =============================================================================

func (c *Console) quote(ctx context.Context, args string) error {
	name, rest := splitArgs(args)
	if name == "" || rest == "" {
		return usageError(c.commands["quote"].usage)
	}
	amount, err := parseAmount(rest)
	if err != nil {
		return err
	}
	telemetry.SetAttributes(telemetry.SpanFromContext(ctx),
		telemetry.SpanAttrStrategy, name,
		telemetry.SpanAttrAmount, amount)

	resp, err := c.service.QuoteDiscount(ctx, name, amount)
	if err != nil {
		return err
	}
	c.printf("%s\n", resp.String())
	return nil
}

func (c *Console) history(ctx context.Context, args string) error {
	id, err := requireID(args, c.commands["history"].usage)
	if err != nil {
		return err
	}
	events, err := c.service.History(ctx, id)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		c.printf("No recorded events\n")
		return nil
	}
	for _, e := range events {
		c.printf("%s  %s\n", e.OccurredAt.Format(time.DateTime), e.Type)
	}
	return nil
}

func (c *Console) summary(ctx context.Context, args string) error {
	resp, err := c.service.Summary(ctx)
	if err != nil {
		return err
	}
	c.printf("Customers: %d, active contracts: %d, total %s, discount %s\n",
		resp.TotalCustomers, resp.ActiveContracts,
		valueobject.FormatAmount(resp.GrossTotal), valueobject.FormatAmount(resp.DiscountTotal))
	for _, tier := range resp.Tiers {
		c.printf("  %-10s %3d customers, %3d purchases, total %s, discount %s\n",
			tier.Tier, tier.Customers, tier.Purchases,
			valueobject.FormatAmount(tier.GrossTotal), valueobject.FormatAmount(tier.DiscountTotal))
	}
	return nil
}

func (c *Console) quit(ctx context.Context, args string) error {
	c.printf("Bye\n")
	return ErrQuit
}
