package log

const (
	KeyAppName        = "app"
	KeyRequestID      = "requestId"
	KeyProcess        = "process"
	KeyTag            = "tag"
	KeyConfig         = "config"
	KeyRequestHost    = "host"
	KeyRequestIp      = "requesterIP"
	KeyRequestMethod  = "requestMethod"
	KeyRequestURI     = "requestURI"
	KeyRequestURL     = "requestURL"
	KeyItemID         = "itemId"
	KeyItemName       = "itemName"
	KeyQuantity       = "quantity"
	KeyItemCount      = "itemCount"
	KeyCartItems      = "cartItems"
	KeySubtotal       = "subtotal"
	KeyStorageBackend = "storageBackend"
	KeyStorageKey     = "storageKey"
	KeyCheckoutStep   = "checkoutStep"
	KeyPaymentMethod  = "paymentMethod"
	KeyOrderID        = "orderId"
	KeyTotal          = "total"
	KeyMenuURL        = "menuUrl"
	KeyDbURL          = "dbUrl"
	KeyCacheKey       = "cacheKey"
)
