package service

import (
	"github.com/shopspring/decimal"
)

var (
	freeDeliveryThreshold = decimal.NewFromInt(25)
	standardDeliveryFee   = decimal.RequireFromString("3.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// Pricing is the order pricing breakdown shown at the payment step and frozen
// into the session once payment is confirmed.
type Pricing struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Quote prices an order from its subtotal: delivery is free strictly above
// the threshold, tax is a flat 8%, amounts rounded to cents.
func Quote(subtotal decimal.Decimal) Pricing {
	subtotal = subtotal.Round(2)
	fee := standardDeliveryFee
	if subtotal.GreaterThan(freeDeliveryThreshold) {
		fee = decimal.Zero
	}
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(fee).Add(tax).Round(2)
	return Pricing{Subtotal: subtotal, DeliveryFee: fee, Tax: tax, Total: total}
}
