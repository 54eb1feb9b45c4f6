package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteAboveFreeDeliveryThreshold(t *testing.T) {
	pricing := Quote(decimal.RequireFromString("30"))

	assert.True(t, pricing.DeliveryFee.IsZero())
	assert.True(t, decimal.RequireFromString("2.40").Equal(pricing.Tax))
	assert.True(t, decimal.RequireFromString("32.40").Equal(pricing.Total))
}

func TestQuoteBelowFreeDeliveryThreshold(t *testing.T) {
	pricing := Quote(decimal.RequireFromString("10"))

	assert.True(t, decimal.RequireFromString("3.99").Equal(pricing.DeliveryFee))
	assert.True(t, decimal.RequireFromString("0.80").Equal(pricing.Tax))
	assert.True(t, decimal.RequireFromString("14.79").Equal(pricing.Total))
}

func TestQuoteExactlyAtThresholdStillChargesDelivery(t *testing.T) {
	pricing := Quote(decimal.RequireFromString("25"))

	assert.True(t, decimal.RequireFromString("3.99").Equal(pricing.DeliveryFee))
	assert.True(t, decimal.RequireFromString("2.00").Equal(pricing.Tax))
	assert.True(t, decimal.RequireFromString("30.99").Equal(pricing.Total))
}

func TestQuoteRoundsToCents(t *testing.T) {
	pricing := Quote(decimal.RequireFromString("12.345"))

	assert.True(t, decimal.RequireFromString("12.35").Equal(pricing.Subtotal))
	// 12.35 * 0.08 = 0.988 rounds to 0.99
	assert.True(t, decimal.RequireFromString("0.99").Equal(pricing.Tax))
	assert.True(t, decimal.RequireFromString("17.33").Equal(pricing.Total))
}

func TestQuoteZeroSubtotal(t *testing.T) {
	pricing := Quote(decimal.Zero)

	assert.True(t, pricing.Subtotal.IsZero())
	assert.True(t, decimal.RequireFromString("3.99").Equal(pricing.DeliveryFee))
	assert.True(t, pricing.Tax.IsZero())
	assert.True(t, decimal.RequireFromString("3.99").Equal(pricing.Total))
}
