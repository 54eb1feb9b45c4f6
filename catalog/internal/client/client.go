package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/greenplate/ordering/catalog/internal/otel"
	"github.com/greenplate/ordering/catalog/pkg/response"
	"github.com/greenplate/ordering/internal/config"
	inErrors "github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

// CatalogClient fetches the menu from an upstream catalog. When the
// upstream is unreachable or replies with garbage it serves a fixed
// fallback menu instead, so the ordering flow keeps working offline.
type CatalogClient struct {
	url    string
	client *http.Client
}

func NewCatalogClient(cfg config.Catalog) CatalogClient {
	return CatalogClient{
		url: cfg.URL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (svc CatalogClient) Meals(c context.Context) []response.Meal {
	c, span := otel.Tracer.Start(c, "CatalogClient Meals")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogClient Meals").
		Str(log.KeyMenuURL, svc.url).
		Logger()

	if svc.url == "" {
		logger.Info().Msg("catalog url is empty, serving fallback menu")
		return fallbackMeals()
	}

	logger = logger.With().Str(log.KeyProcess, "fetching menu from catalog").Logger()
	meals, err := svc.fetch(c)
	if err != nil {
		err = fmt.Errorf("failed fetching menu from catalog with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg("falling back to fixed menu")
		return fallbackMeals()
	}

	logger.Info().Msgf("fetched %d meals from catalog", len(meals))
	return meals
}

func (svc CatalogClient) fetch(c context.Context) ([]response.Meal, error) {
	req, err := http.NewRequestWithContext(c, http.MethodGet, svc.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating request with error=%w", err)
	}

	resp, err := svc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed requesting catalog with error=%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog replied with status=%d", resp.StatusCode)
	}

	menu := response.Menu{}
	if err := json.NewDecoder(resp.Body).Decode(&menu); err != nil {
		return nil, fmt.Errorf("failed decoding menu with error=%w", err)
	}
	return menu.Meals, nil
}

func co2(v float64) *float64 { return &v }

// fallbackMeals returns a fresh copy so callers can never mutate the
// shared fallback data.
func fallbackMeals() []response.Meal {
	return []response.Meal{
		{ID: "gb2", Name: "Hummus Platter", Price: "$11.99", IsVegan: true, DietaryType: "vegan", CO2Impact: co2(1.8), RestaurantName: "Green Garden Bistro", Description: "Creamy hummus with fresh vegetables and pita bread"},
		{ID: "gb1", Name: "Mediterranean Bowl", Price: "$14.99", DietaryType: "vegetarian", CO2Impact: co2(2.1), RestaurantName: "Green Garden Bistro", Description: "Fresh vegetables, quinoa, olives, and feta cheese"},
		{ID: "ee1", Name: "Buddha Bowl", Price: "$12.99", IsVegan: true, DietaryType: "vegan", CO2Impact: co2(2.3), RestaurantName: "Eco Eats Kitchen", Description: "Colorful array of vegetables, tofu, and brown rice"},
		{ID: "ee2", Name: "Miso Ramen", Price: "$15.99", DietaryType: "vegetarian", CO2Impact: co2(1.7), RestaurantName: "Eco Eats Kitchen", Description: "Rich miso broth with noodles and vegetables"},
		{ID: "ee4", Name: "Pad Thai", Price: "$13.99", IsVegan: true, DietaryType: "vegan", CO2Impact: co2(1.9), RestaurantName: "Eco Eats Kitchen", Description: "Traditional Thai noodles with tofu and vegetables"},
		{ID: "ss5", Name: "Upcycled Soup", Price: "$10.99", IsVegan: true, DietaryType: "vegan", CO2Impact: co2(3.1), RestaurantName: "Sustainable Spoon", Description: "Soup made from perfectly good vegetable scraps"},
		{ID: "sr1", Name: "Vegetable Curry", Price: "$14.99", IsVegan: true, DietaryType: "vegan", CO2Impact: co2(2.5), RestaurantName: "Spice Route Indian", Description: "Rich and aromatic vegetable curry"},
		{ID: "bv1", Name: "Margherita Pizza", Price: "$18.99", DietaryType: "vegetarian", CO2Impact: co2(2.1), RestaurantName: "Bella Vista Italian", Description: "Classic wood-fired pizza with fresh mozzarella"},
		{ID: "oh2", Name: "Seafood Bowl", Price: "$19.99", DietaryType: "non-veg", CO2Impact: co2(2.1), RestaurantName: "Ocean's Harvest", Description: "Mixed seafood with vegetables and rice"},
		{ID: "oh1", Name: "Grilled Salmon", Price: "$22.99", DietaryType: "non-veg", CO2Impact: co2(1.8), RestaurantName: "Ocean's Harvest", Description: "Sustainably caught salmon with herbs"},
	}
}
