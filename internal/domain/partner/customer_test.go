package partner

import (
	"errors"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() *CustomerData {
	return NewCustomerData("Test Customer", "test@example.com", "+1 555 0100", "Main st 1")
}

func newRegular(t *testing.T) *Customer {
	t.Helper()
	c, err := NewRegularCustomer(testData())
	require.NoError(t, err)
	return c
}

func newWholesale(t *testing.T, minimum int64) *Customer {
	t.Helper()
	s, err := strategy.NewWholesaleDiscountStrategy(decimal.NewFromInt(minimum))
	require.NoError(t, err)
	c, err := NewWholesaleCustomer(testData(), s)
	require.NoError(t, err)
	return c
}

func newVIP(t *testing.T) *Customer {
	t.Helper()
	c, err := NewVIPCustomer(testData(), strategy.NewDefaultVIPDiscountStrategy(), "Manager One", DefaultBonusAccrualRate)
	require.NoError(t, err)
	return c
}

func withContract(t *testing.T, c *Customer) *Customer {
	t.Helper()
	require.NoError(t, c.SignContract("C-1", time.Now()))
	return c
}

func mustPurchase(t *testing.T, product string, qty int, price string) *Purchase {
	t.Helper()
	p, err := NewPurchase(product, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return p
}

func TestNewCustomer(t *testing.T) {
	t.Run("creates regular customer with standard strategy", func(t *testing.T) {
		c := newRegular(t)

		assert.NotEmpty(t, c.ID)
		assert.Equal(t, CustomerTierRegular, c.Tier())
		assert.Equal(t, "Test Customer", c.FullName)
		assert.Equal(t, "Main st 1", c.Address)
		assert.True(t, c.IsRegular())
		assert.Nil(t, c.WholesaleTerms())
		assert.Nil(t, c.VIPProfile())
		assert.Equal(t, strategy.DiscountStandard, c.DiscountStrategy().Name())
		assert.Nil(t, c.Contract())
		assert.Equal(t, 0, c.PurchaseCount())

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCustomerCreated, events[0].EventType())
		assert.Equal(t, c.ID, events[0].AggregateID())
	})

	t.Run("nil data yields a blank customer", func(t *testing.T) {
		c, err := NewRegularCustomer(nil)

		require.NoError(t, err)
		assert.Empty(t, c.FullName)
		assert.NotEmpty(t, c.ID)
	})

	t.Run("fails with invalid data", func(t *testing.T) {
		c, err := NewRegularCustomer(NewCustomerData("", "a@b.c", "1", ""))

		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("wholesale requires a strategy", func(t *testing.T) {
		c, err := NewWholesaleCustomer(testData(), nil)

		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("vip requires a strategy", func(t *testing.T) {
		c, err := NewVIPCustomer(testData(), nil, "", DefaultBonusAccrualRate)

		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("vip blank manager is not assigned", func(t *testing.T) {
		c, err := NewVIPCustomer(testData(), strategy.NewDefaultVIPDiscountStrategy(), " ", DefaultBonusAccrualRate)

		require.NoError(t, err)
		assert.Equal(t, DefaultPersonalManager, c.PersonalManager())
	})

	t.Run("vip rejects out of range accrual rate", func(t *testing.T) {
		_, err := NewVIPCustomer(testData(), strategy.NewDefaultVIPDiscountStrategy(), "M", decimal.NewFromInt(101))
		assert.Error(t, err)
	})
}

func TestCustomer_Contract(t *testing.T) {
	t.Run("sign creates an active contract", func(t *testing.T) {
		c := newRegular(t)
		c.ClearDomainEvents()

		require.NoError(t, c.SignContract("C-100", time.Now()))

		assert.True(t, c.HasActiveContract())
		assert.Equal(t, "C-100", c.Contract().Number)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeContractSigned, c.GetDomainEvents()[0].EventType())
	})

	t.Run("sign fails with blank number", func(t *testing.T) {
		c := newRegular(t)

		err := c.SignContract("", time.Now())

		assert.Error(t, err)
		assert.False(t, c.HasActiveContract())
	})

	t.Run("sign fails while a contract is active", func(t *testing.T) {
		c := withContract(t, newRegular(t))

		err := c.SignContract("C-2", time.Now())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already has an active contract")
		assert.Equal(t, "C-1", c.Contract().Number)
	})

	t.Run("sign replaces a terminated contract", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.TerminateContract())

		require.NoError(t, c.SignContract("C-2", time.Now()))

		assert.Equal(t, "C-2", c.Contract().Number)
		assert.True(t, c.HasActiveContract())
	})

	t.Run("terminate without contract fails", func(t *testing.T) {
		c := newRegular(t)
		assert.Error(t, c.TerminateContract())
	})

	t.Run("terminate twice fails", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.TerminateContract())

		err := c.TerminateContract()

		assert.Error(t, err)
		assert.False(t, c.HasActiveContract())
	})

	t.Run("renew without contract fails", func(t *testing.T) {
		c := newRegular(t)
		assert.Error(t, c.RenewContract(time.Now()))
	})

	t.Run("renew an active contract fails", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		assert.Error(t, c.RenewContract(time.Now()))
	})

	t.Run("renew a terminated contract", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.TerminateContract())
		renewDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, c.RenewContract(renewDate))

		contract := c.Contract()
		assert.True(t, contract.IsActive())
		assert.Equal(t, renewDate, contract.SignDate)
		assert.Nil(t, contract.TerminationDate)
	})

	t.Run("returned contract is a copy", func(t *testing.T) {
		c := withContract(t, newRegular(t))

		c.Contract().Active = false

		assert.True(t, c.HasActiveContract())
	})
}

func TestCustomer_AddPurchase(t *testing.T) {
	t.Run("fails without an active contract", func(t *testing.T) {
		c := newRegular(t)

		err := c.AddPurchase(mustPurchase(t, "Pen", 1, "10"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "without an active contract")
		assert.Equal(t, 0, c.PurchaseCount())
	})

	t.Run("fails after termination", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.TerminateContract())

		assert.Error(t, c.AddPurchase(mustPurchase(t, "Pen", 1, "10")))
	})

	t.Run("fails with nil or invalid purchase", func(t *testing.T) {
		c := withContract(t, newRegular(t))

		assert.Error(t, c.AddPurchase(nil))
		assert.Error(t, c.AddPurchase(&Purchase{ProductName: "Pen", Quantity: 0, Price: decimal.NewFromInt(1)}))
		assert.Equal(t, 0, c.PurchaseCount())
	})

	t.Run("appends in order and totals gross amounts", func(t *testing.T) {
		c := withContract(t, newRegular(t))

		require.NoError(t, c.AddPurchase(mustPurchase(t, "Pen", 2, "10")))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Book", 1, "25.50")))

		purchases := c.Purchases()
		require.Len(t, purchases, 2)
		assert.Equal(t, "Pen", purchases[0].ProductName)
		assert.Equal(t, "Book", purchases[1].ProductName)
		assert.True(t, c.TotalAmount().Equal(decimal.RequireFromString("45.50")))
	})

	t.Run("purchase list is a snapshot", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Pen", 1, "10")))

		purchases := c.Purchases()
		purchases[0] = nil
		_ = append(purchases, mustPurchase(t, "Extra", 1, "1"))

		assert.Equal(t, 1, c.PurchaseCount())
		assert.NotNil(t, c.Purchases()[0])
	})

	t.Run("stored purchases are isolated from callers", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		added := mustPurchase(t, "Pen", 2, "10")
		require.NoError(t, c.AddPurchase(added))

		added.Quantity = 0
		read := c.Purchases()[0]
		read.Quantity = 0
		read.Price = decimal.Zero

		stored := c.Purchases()[0]
		assert.Equal(t, 2, stored.Quantity)
		assert.True(t, stored.IsValid())
		assert.True(t, c.TotalAmount().Equal(decimal.NewFromInt(20)))
	})

	t.Run("vip accrues bonus points on gross total", func(t *testing.T) {
		c := withContract(t, newVIP(t))

		require.NoError(t, c.AddPurchase(mustPurchase(t, "Sofa", 1, "1000")))

		assert.True(t, c.BonusPoints().Equal(decimal.NewFromInt(50)))
	})

	t.Run("clear removes purchases", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Pen", 1, "10")))

		c.ClearPurchases()

		assert.Equal(t, 0, c.PurchaseCount())
		assert.True(t, c.TotalAmount().IsZero())
	})
}

func TestCustomer_QuotePurchases(t *testing.T) {
	c := newRegular(t)
	lines := []*Purchase{
		mustPurchase(t, "Desk", 1, "3000"),
		mustPurchase(t, "Chair", 4, "500"),
	}

	percent := c.QuotePurchases(lines)

	assert.True(t, percent.Equal(decimal.NewFromInt(3)))
	for _, p := range lines {
		assert.True(t, p.DiscountPercent.Equal(decimal.NewFromInt(3)))
	}
	assert.Equal(t, 0, c.PurchaseCount())
}

func TestCustomer_Discount(t *testing.T) {
	t.Run("regular gets the standard percentage", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "TV", 1, "1000")))

		assert.True(t, c.ApplyDiscount().Equal(decimal.NewFromInt(20)))
		assert.True(t, c.GetTotalWithDiscount().Equal(decimal.NewFromInt(980)))
	})

	t.Run("no strategy means no discount", func(t *testing.T) {
		c := withContract(t, newRegular(t))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "TV", 1, "1000")))
		c.discountStrategy = nil

		assert.True(t, c.ApplyDiscount().IsZero())
		assert.True(t, c.GetTotalWithDiscount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("vip refreshes its display percentage", func(t *testing.T) {
		c := withContract(t, newVIP(t))
		assert.True(t, c.DisplayDiscountPercent().Equal(decimal.NewFromInt(25)))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Car", 1, "60000")))

		discount := c.ApplyDiscount()

		assert.True(t, discount.Equal(decimal.NewFromInt(16800)))
		assert.True(t, c.DisplayDiscountPercent().Equal(decimal.NewFromInt(28)))
		assert.True(t, c.VIPDiscount().Equal(decimal.NewFromInt(16800)))
	})

	t.Run("wholesale refreshes its display percentage", func(t *testing.T) {
		c := withContract(t, newWholesale(t, 10000))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Pallet", 10, "4000")))

		assert.True(t, c.ApplyDiscount().Equal(decimal.NewFromInt(4800)))
		assert.True(t, c.DisplayDiscountPercent().Equal(decimal.NewFromInt(12)))
	})
}

func TestCustomer_ProcessPayment(t *testing.T) {
	setup := func(t *testing.T) *Customer {
		c := newRegular(t)
		c.discountStrategy = fixedPercent{percent: decimal.NewFromInt(5)}
		withContract(t, c)
		require.NoError(t, c.AddPurchase(mustPurchase(t, "TV", 1, "1000")))
		return c
	}

	t.Run("pays the full discounted total", func(t *testing.T) {
		c := setup(t)

		r := c.ProcessPayment(decimal.NewFromInt(950))

		assert.True(t, r.IsSuccess())
		assert.True(t, r.PaidAmount().Equal(decimal.NewFromInt(950)))
		assert.True(t, r.RemainingAmount().IsZero())
	})

	t.Run("partial payment leaves a remainder", func(t *testing.T) {
		c := setup(t)

		r := c.ProcessPayment(decimal.NewFromInt(900))

		assert.True(t, r.IsSuccess())
		assert.True(t, r.RemainingAmount().Equal(decimal.NewFromInt(50)))
	})

	t.Run("overpayment fails", func(t *testing.T) {
		c := setup(t)

		r := c.ProcessPayment(decimal.NewFromInt(951))

		assert.False(t, r.IsSuccess())
		assert.Contains(t, r.Message(), "exceeds")
	})

	t.Run("non-positive amount fails", func(t *testing.T) {
		c := setup(t)

		assert.False(t, c.ProcessPayment(decimal.Zero).IsSuccess())
		assert.False(t, c.ProcessPayment(decimal.NewFromInt(-5)).IsSuccess())
	})

	t.Run("no active contract fails", func(t *testing.T) {
		c := setup(t)
		require.NoError(t, c.TerminateContract())

		r := c.ProcessPayment(decimal.NewFromInt(10))

		assert.False(t, r.IsSuccess())
		assert.Contains(t, r.Message(), "active contract")
	})
}

func TestCustomer_PersonalData(t *testing.T) {
	t.Run("returns a copy", func(t *testing.T) {
		c := newRegular(t)
		data := c.PersonalData()
		data.FullName = "Changed"

		assert.Equal(t, "Test Customer", c.FullName)
	})

	t.Run("updates all fields", func(t *testing.T) {
		c := newRegular(t)
		c.ClearDomainEvents()

		err := c.UpdatePersonalData(NewCustomerData("New Name", "new@example.com", "222", "New st"))

		require.NoError(t, err)
		assert.Equal(t, "New Name", c.FullName)
		assert.Equal(t, "new@example.com", c.Email)
		assert.Equal(t, "222", c.Phone)
		assert.Equal(t, "New st", c.Address)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCustomerUpdated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects nil and invalid data", func(t *testing.T) {
		c := newRegular(t)

		assert.Error(t, c.UpdatePersonalData(nil))
		assert.Error(t, c.UpdatePersonalData(NewCustomerData("Name", "", "1", "")))
		assert.Equal(t, "Test Customer", c.FullName)
	})
}

func TestCustomer_Wholesale(t *testing.T) {
	t.Run("minimum reads through to the strategy", func(t *testing.T) {
		c := newWholesale(t, 15000)
		ws := c.DiscountStrategy().(*strategy.WholesaleDiscountStrategy)

		assert.True(t, c.MinimumOrderAmount().Equal(decimal.NewFromInt(15000)))

		require.NoError(t, c.SetMinimumOrderAmount(decimal.NewFromInt(20000)))
		assert.True(t, ws.MinimumOrderAmount().Equal(decimal.NewFromInt(20000)))
		assert.True(t, c.MinimumOrderAmount().Equal(decimal.NewFromInt(20000)))
	})

	t.Run("negative minimum fails", func(t *testing.T) {
		c := newWholesale(t, 10000)

		assert.Error(t, c.SetMinimumOrderAmount(decimal.NewFromInt(-1)))
		assert.True(t, c.MinimumOrderAmount().Equal(decimal.NewFromInt(10000)))
	})

	t.Run("raising the minimum removes the discount", func(t *testing.T) {
		c := withContract(t, newWholesale(t, 10000))
		require.NoError(t, c.AddPurchase(mustPurchase(t, "Crate", 12, "1000")))
		assert.True(t, c.ApplyDiscount().Equal(decimal.NewFromInt(1200)))
		assert.True(t, c.ValidateMinimumOrder())

		require.NoError(t, c.SetMinimumOrderAmount(decimal.NewFromInt(15000)))

		assert.True(t, c.ApplyDiscount().IsZero())
		assert.False(t, c.ValidateMinimumOrder())
	})

	t.Run("wholesale discount on an arbitrary order", func(t *testing.T) {
		c := newWholesale(t, 10000)
		assert.True(t, c.WholesaleDiscount(decimal.NewFromInt(50000)).Equal(decimal.NewFromInt(7500)))
		assert.True(t, c.WholesaleDiscount(decimal.NewFromInt(5000)).IsZero())
	})

	t.Run("deferral requires an active contract", func(t *testing.T) {
		c := newWholesale(t, 10000)

		assert.False(t, c.RequestPaymentDeferral(10))
		assert.Equal(t, 0, c.PaymentDeferralDays())
	})

	t.Run("deferral bounds", func(t *testing.T) {
		c := withContract(t, newWholesale(t, 10000))

		assert.False(t, c.RequestPaymentDeferral(0))
		assert.False(t, c.RequestPaymentDeferral(31))
		assert.True(t, c.RequestPaymentDeferral(1))
		assert.True(t, c.RequestPaymentDeferral(30))
		assert.Equal(t, 30, c.PaymentDeferralDays())
	})

	t.Run("cancel deferral", func(t *testing.T) {
		c := withContract(t, newWholesale(t, 10000))
		assert.False(t, c.CancelPaymentDeferral())

		require.True(t, c.RequestPaymentDeferral(14))
		assert.True(t, c.CancelPaymentDeferral())
		assert.Equal(t, 0, c.PaymentDeferralDays())
		assert.False(t, c.CancelPaymentDeferral())
	})

	t.Run("wholesale operations on other tiers", func(t *testing.T) {
		c := withContract(t, newRegular(t))

		err := c.SetMinimumOrderAmount(decimal.NewFromInt(1))
		assert.True(t, errors.Is(err, shared.ErrTierMismatch))
		assert.False(t, c.RequestPaymentDeferral(5))
		assert.False(t, c.CancelPaymentDeferral())
		assert.False(t, c.ValidateMinimumOrder())
		assert.True(t, c.MinimumOrderAmount().IsZero())
	})
}

func TestCustomer_VIP(t *testing.T) {
	t.Run("add bonus points uses the accrual rate", func(t *testing.T) {
		c := newVIP(t)

		require.NoError(t, c.AddBonusPoints(decimal.NewFromInt(200)))

		assert.True(t, c.BonusPoints().Equal(decimal.NewFromInt(10)))
	})

	t.Run("add bonus points rejects non-positive amounts", func(t *testing.T) {
		c := newVIP(t)

		assert.Error(t, c.AddBonusPoints(decimal.Zero))
		assert.Error(t, c.AddBonusPoints(decimal.NewFromInt(-10)))
		assert.True(t, c.BonusPoints().IsZero())
	})

	t.Run("use bonus points", func(t *testing.T) {
		c := newVIP(t)
		require.NoError(t, c.AddBonusPoints(decimal.NewFromInt(1000)))

		assert.False(t, c.UseBonusPoints(decimal.Zero))
		assert.False(t, c.UseBonusPoints(decimal.NewFromInt(51)))
		assert.True(t, c.CanUseBonusPoints(decimal.NewFromInt(50)))
		assert.True(t, c.UseBonusPoints(decimal.NewFromInt(20)))
		assert.True(t, c.BonusPoints().Equal(decimal.NewFromInt(30)))
	})

	t.Run("accrual rate can be changed", func(t *testing.T) {
		c := newVIP(t)
		require.NoError(t, c.SetBonusAccrualRate(decimal.NewFromInt(10)))
		require.NoError(t, c.AddBonusPoints(decimal.NewFromInt(100)))

		assert.True(t, c.BonusPoints().Equal(decimal.NewFromInt(10)))
		assert.Error(t, c.SetBonusAccrualRate(decimal.NewFromInt(-1)))
	})

	t.Run("assign personal manager", func(t *testing.T) {
		c := newVIP(t)

		require.NoError(t, c.AssignPersonalManager("Jane Doe"))
		assert.Equal(t, "Jane Doe", c.PersonalManager())
		assert.Error(t, c.AssignPersonalManager("  "))
		assert.Equal(t, "Jane Doe", c.PersonalManager())
	})

	t.Run("vip operations on other tiers", func(t *testing.T) {
		c := newWholesale(t, 10000)

		assert.True(t, errors.Is(c.AddBonusPoints(decimal.NewFromInt(5)), shared.ErrTierMismatch))
		assert.True(t, errors.Is(c.AssignPersonalManager("X"), shared.ErrTierMismatch))
		assert.True(t, errors.Is(c.SetBonusAccrualRate(decimal.NewFromInt(5)), shared.ErrTierMismatch))
		assert.False(t, c.UseBonusPoints(decimal.NewFromInt(1)))
		assert.False(t, c.CanUseBonusPoints(decimal.NewFromInt(1)))
		assert.True(t, c.VIPDiscount().IsZero())
		assert.Empty(t, c.PersonalManager())
	})
}

func TestCustomer_String(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		c := newRegular(t)
		assert.Equal(t, "[Regular] Test Customer | test@example.com | Purchases: 0 | No active contract", c.String())

		withContract(t, c)
		assert.Equal(t, "[Regular] Test Customer | test@example.com | Purchases: 0 | Contract active", c.String())
	})

	t.Run("wholesale", func(t *testing.T) {
		c := withContract(t, newWholesale(t, 15000))
		assert.Equal(t, "[Wholesale] Test Customer | test@example.com | Min order: 15,000.00 | No deferral", c.String())

		require.True(t, c.RequestPaymentDeferral(7))
		assert.Equal(t, "[Wholesale] Test Customer | test@example.com | Min order: 15,000.00 | Deferral: 7 days", c.String())
	})

	t.Run("vip", func(t *testing.T) {
		c := newVIP(t)
		assert.Equal(t, "[VIP] Test Customer | test@example.com | Manager: Manager One | Bonus: 0.00", c.String())
	})
}

// fixedPercent is a discount strategy with a constant percentage
type fixedPercent struct {
	percent decimal.Decimal
}

func (f fixedPercent) Name() string                                          { return "fixed" }
func (f fixedPercent) Type() strategy.StrategyType                           { return strategy.StrategyTypeDiscount }
func (f fixedPercent) Description() string                                   { return "fixed percentage" }
func (f fixedPercent) DisplayName() string                                   { return "Fixed discount" }
func (f fixedPercent) GetDiscountPercentage(decimal.Decimal) decimal.Decimal { return f.percent }
func (f fixedPercent) CalculateDiscount(total decimal.Decimal) decimal.Decimal {
	return total.Mul(f.percent).Div(decimal.NewFromInt(100))
}
