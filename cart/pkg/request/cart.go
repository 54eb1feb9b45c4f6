package request

import (
	"github.com/greenplate/ordering/internal/domain"
)

// AddItem is the catalog-to-cart contract payload. Quantity is accepted for
// shape compatibility but ignored on merge; presence of an existing id always
// increments by exactly one.
type AddItem struct {
	ID             domain.ItemID `validate:"required"                                json:"id"`
	Name           string        `validate:"required"                                json:"name"`
	Price          domain.Price  `json:"price"`
	Quantity       int           `validate:"gte=0"                                   json:"quantity"`
	IsVegan        bool          `json:"isVegan"`
	DietaryType    string        `validate:"omitempty,oneof=vegan vegetarian non-veg" json:"dietaryType"`
	CO2Impact      *float64      `json:"co2Impact,omitempty"`
	Image          string        `json:"image,omitempty"`
	RestaurantName string        `json:"restaurantName,omitempty"`
}

func (r AddItem) CartItem() domain.CartItem {
	return domain.CartItem{
		ID:             r.ID,
		Name:           r.Name,
		Price:          r.Price,
		Quantity:       r.Quantity,
		IsVegan:        r.IsVegan,
		DietaryType:    r.DietaryType,
		CO2Impact:      r.CO2Impact,
		Image:          r.Image,
		RestaurantName: r.RestaurantName,
	}
}

// SetQuantity carries the exact quantity to set. Zero or negative values are
// equivalent to removing the item.
type SetQuantity struct {
	Quantity int `json:"quantity"`
}
