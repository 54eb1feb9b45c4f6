package response

import (
	"github.com/shopspring/decimal"

	"github.com/greenplate/ordering/internal/domain"
)

// CartSummary is the cart-drawer view model: line items grouped by restaurant
// in insertion order plus the derived totals.
type CartSummary struct {
	Groups          []domain.RestaurantGroup `json:"groups"`
	TotalItems      int                      `json:"totalItems"`
	TotalCO2Impact  float64                  `json:"totalCo2Impact"`
	Subtotal        decimal.Decimal          `json:"subtotal"`
	SubtotalDisplay string                   `json:"subtotalDisplay"`
}

// Badge is the cart indicator snapshot.
type Badge struct {
	Count   int  `json:"count"`
	Pulsing bool `json:"pulsing"`
}
