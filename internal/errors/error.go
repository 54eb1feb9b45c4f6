package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrCartEmpty             = errors.New("cart is empty")
	ErrCheckoutClosed        = errors.New("checkout is not open")
	ErrInvalidStep           = errors.New("operation not allowed in current checkout step")
	ErrSettlementInProgress  = errors.New("settlement is in progress")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
