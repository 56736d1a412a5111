package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStandardDiscountStrategy(t *testing.T) {
	strategy := NewStandardDiscountStrategy()

	t.Run("Name and Type", func(t *testing.T) {
		assert.Equal(t, "standard", strategy.Name())
		assert.Equal(t, StrategyTypeDiscount, strategy.Type())
		assert.Equal(t, "Standard discount", strategy.DisplayName())
		assert.NotEmpty(t, strategy.Description())
	})

	t.Run("GetDiscountPercentage follows the bands", func(t *testing.T) {
		tests := []struct {
			total string
			want  string
		}{
			{"0", "0"},
			{"999.99", "0"},
			{"1000", "2"},
			{"4999.99", "2"},
			{"5000", "3"},
			{"9999.99", "3"},
			{"10000", "4"},
			{"19999.99", "4"},
			{"20000", "5"},
			{"1000000", "5"},
		}
		for _, tt := range tests {
			got := strategy.GetDiscountPercentage(dec(tt.total))
			assert.True(t, got.Equal(dec(tt.want)), "total %s: got %s, want %s", tt.total, got, tt.want)
		}
	})

	t.Run("CalculateDiscount", func(t *testing.T) {
		assert.True(t, strategy.CalculateDiscount(dec("1000")).Equal(dec("20")))
		assert.True(t, strategy.CalculateDiscount(dec("20000")).Equal(dec("1000")))
		assert.True(t, strategy.CalculateDiscount(dec("500")).IsZero())
	})
}

func TestWholesaleDiscountStrategy(t *testing.T) {
	t.Run("Name and Type", func(t *testing.T) {
		strategy := NewDefaultWholesaleDiscountStrategy()
		assert.Equal(t, "wholesale", strategy.Name())
		assert.Equal(t, StrategyTypeDiscount, strategy.Type())
		assert.Equal(t, "Wholesale discount", strategy.DisplayName())
		assert.True(t, strategy.MinimumOrderAmount().Equal(dec("10000")))
	})

	t.Run("GetDiscountPercentage follows the bands", func(t *testing.T) {
		strategy := NewDefaultWholesaleDiscountStrategy()
		tests := []struct {
			total string
			want  string
		}{
			{"0", "0"},
			{"9999.99", "0"},
			{"10000", "10"},
			{"29999.99", "10"},
			{"30000", "12"},
			{"50000", "15"},
			{"100000", "18"},
			{"199999.99", "18"},
			{"200000", "20"},
		}
		for _, tt := range tests {
			got := strategy.GetDiscountPercentage(dec(tt.total))
			assert.True(t, got.Equal(dec(tt.want)), "total %s: got %s, want %s", tt.total, got, tt.want)
		}
	})

	t.Run("below the minimum the discount is zero regardless of band", func(t *testing.T) {
		strategy, err := NewWholesaleDiscountStrategy(dec("60000"))
		require.NoError(t, err)

		assert.True(t, strategy.CalculateDiscount(dec("59999")).IsZero())
		assert.True(t, strategy.GetDiscountPercentage(dec("59999")).IsZero())
		assert.True(t, strategy.GetDiscountPercentage(dec("60000")).Equal(dec("15")))
	})

	t.Run("changing the minimum re-gates the discount", func(t *testing.T) {
		strategy := NewDefaultWholesaleDiscountStrategy()
		assert.True(t, strategy.CalculateDiscount(dec("12000")).Equal(dec("1200")))

		require.NoError(t, strategy.SetMinimumOrderAmount(dec("15000")))
		assert.True(t, strategy.CalculateDiscount(dec("12000")).IsZero())
		assert.False(t, strategy.ValidateMinimumOrder(dec("12000")))
		assert.True(t, strategy.ValidateMinimumOrder(dec("15000")))
	})

	t.Run("negative minimum is rejected", func(t *testing.T) {
		_, err := NewWholesaleDiscountStrategy(dec("-1"))
		assert.Error(t, err)

		strategy := NewDefaultWholesaleDiscountStrategy()
		err = strategy.SetMinimumOrderAmount(dec("-0.01"))
		assert.Error(t, err)
		assert.True(t, strategy.MinimumOrderAmount().Equal(dec("10000")))
	})

	t.Run("zero minimum is allowed", func(t *testing.T) {
		strategy, err := NewWholesaleDiscountStrategy(decimal.Zero)
		require.NoError(t, err)
		assert.True(t, strategy.GetDiscountPercentage(dec("1")).Equal(dec("10")))
	})
}

func TestVIPDiscountStrategy(t *testing.T) {
	t.Run("Name and Type", func(t *testing.T) {
		strategy := NewDefaultVIPDiscountStrategy()
		assert.Equal(t, "vip", strategy.Name())
		assert.Equal(t, StrategyTypeDiscount, strategy.Type())
		assert.Equal(t, "VIP discount", strategy.DisplayName())
		assert.True(t, strategy.BasePercent().Equal(dec("25")))
	})

	t.Run("base percentage is clamped", func(t *testing.T) {
		assert.True(t, NewVIPDiscountStrategy(dec("10")).BasePercent().Equal(dec("20")))
		assert.True(t, NewVIPDiscountStrategy(dec("50")).BasePercent().Equal(dec("35")))
		assert.True(t, NewVIPDiscountStrategy(dec("22")).BasePercent().Equal(dec("22")))
	})

	t.Run("small totals get the configured base", func(t *testing.T) {
		strategy := NewVIPDiscountStrategy(dec("10"))
		for _, total := range []string{"0", "100", "4999.99"} {
			assert.True(t, strategy.GetDiscountPercentage(dec(total)).Equal(dec("20")), "total %s", total)
		}
	})

	t.Run("GetDiscountPercentage follows the bands", func(t *testing.T) {
		strategy := NewDefaultVIPDiscountStrategy()
		tests := []struct {
			total string
			want  string
		}{
			{"4999.99", "25"},
			{"5000", "26"},
			{"20000", "27"},
			{"50000", "28"},
			{"100000", "29"},
			{"199999.99", "29"},
			{"200000", "30"},
		}
		for _, tt := range tests {
			got := strategy.GetDiscountPercentage(dec(tt.total))
			assert.True(t, got.Equal(dec(tt.want)), "total %s: got %s, want %s", tt.total, got, tt.want)
		}
	})

	t.Run("bonus percentage is measured over the base", func(t *testing.T) {
		strategy := NewDefaultVIPDiscountStrategy()
		assert.True(t, strategy.GetBonusDiscountPercentage(dec("1000")).IsZero())
		assert.True(t, strategy.GetBonusDiscountPercentage(dec("250000")).Equal(dec("5")))
	})
}

func TestDiscountStrategiesAreExactAndMonotonic(t *testing.T) {
	strategies := []DiscountStrategy{
		NewStandardDiscountStrategy(),
		NewDefaultWholesaleDiscountStrategy(),
		NewDefaultVIPDiscountStrategy(),
	}
	totals := []string{"0", "1", "999.99", "1000", "3333.33", "5000", "9999.99", "10000", "15500.55",
		"20000", "30000", "49999.99", "50000", "99999.99", "100000", "200000", "1234567.89"}

	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			prev := decimal.Zero
			for _, raw := range totals {
				total := dec(raw)
				percent := s.GetDiscountPercentage(total)
				assert.True(t, percent.GreaterThanOrEqual(prev), "percentage decreased at %s", raw)
				prev = percent

				want := total.Mul(percent).Div(decimal.NewFromInt(100))
				assert.True(t, s.CalculateDiscount(total).Equal(want), "inexact discount at %s", raw)
			}
		})
	}
}
