package response

// Meal is the catalog view of a dish. The fields mirror the payload a
// client sends when adding the dish to the cart.
type Meal struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          string   `json:"price"`
	IsVegan        bool     `json:"isVegan"`
	DietaryType    string   `json:"dietaryType"`
	CO2Impact      *float64 `json:"co2Impact,omitempty"`
	Image          string   `json:"image,omitempty"`
	RestaurantName string   `json:"restaurantName,omitempty"`
	Description    string   `json:"description,omitempty"`
}

type Menu struct {
	Meals []Meal `json:"meals"`
}
