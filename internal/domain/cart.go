package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	DietaryVegan      = "vegan"
	DietaryVegetarian = "vegetarian"
	DietaryNonVeg     = "non-veg"
)

// OtherItemsGroup is the display bucket for items without a restaurant name.
const OtherItemsGroup = "Other Items"

// ItemID is the natural key of a cart line item. Catalogs supply it as either
// a JSON string or an integer; both forms normalize to the same string key.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ItemID(n.String())
	return nil
}

// CartItem is one purchasable unit currently in the cart. Fields beyond
// Quantity arrive from the catalog and are never mutated in place.
type CartItem struct {
	ID             ItemID   `json:"id"`
	Name           string   `json:"name"`
	Price          Price    `json:"price"`
	Quantity       int      `json:"quantity"`
	IsVegan        bool     `json:"isVegan"`
	DietaryType    string   `json:"dietaryType"`
	CO2Impact      *float64 `json:"co2Impact,omitempty"`
	Image          string   `json:"image,omitempty"`
	RestaurantName string   `json:"restaurantName,omitempty"`
}

// LineTotal is the normalized price multiplied by quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Amount().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CO2Contribution is the item-supplied impact figure when present, otherwise
// two impact units per item as a fallback estimate. The fallback is never
// written back onto the item.
func (i CartItem) CO2Contribution() float64 {
	if i.CO2Impact != nil {
		return *i.CO2Impact
	}
	return float64(i.Quantity) * 2
}

type RestaurantGroup struct {
	Name  string     `json:"name"`
	Items []CartItem `json:"items"`
}

// GroupByRestaurant partitions items by restaurant name, preserving the
// insertion order of both groups and the items within them. Items without a
// restaurant name fall into the OtherItemsGroup bucket.
func GroupByRestaurant(items []CartItem) []RestaurantGroup {
	groups := []RestaurantGroup{}
	index := map[string]int{}
	for _, item := range items {
		name := item.RestaurantName
		if name == "" {
			name = OtherItemsGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, RestaurantGroup{Name: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
