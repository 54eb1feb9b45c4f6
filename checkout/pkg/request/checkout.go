package request

// SelectPaymentMethod carries the payment choice, one of a fixed set.
type SelectPaymentMethod struct {
	Method string `validate:"required,oneof=card wallet cash" json:"method"`
}
