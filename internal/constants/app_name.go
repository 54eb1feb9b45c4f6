package constants

const (
	AppOrderingService = "ordering-service"
	AppCartStore       = "cart-store"
	AppCheckoutFlow    = "checkout-flow"
	AppCatalogClient   = "catalog-client"
)
