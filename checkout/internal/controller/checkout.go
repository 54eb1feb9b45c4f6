package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/checkout/internal/otel"
	"github.com/greenplate/ordering/checkout/internal/service"
	"github.com/greenplate/ordering/checkout/pkg/request"
	inErrors "github.com/greenplate/ordering/internal/errors"
	inHttp "github.com/greenplate/ordering/internal/http"
	"github.com/greenplate/ordering/internal/log"
)

type CheckoutController struct {
	service  *service.CheckoutService
	validate *validator.Validate
}

func AttachCheckoutController(router *mux.Router, service *service.CheckoutService) {
	controller := CheckoutController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	sub := router.PathPrefix("/checkout").Subrouter()
	sub.HandleFunc("", controller.Open).Methods(http.MethodPost)
	sub.HandleFunc("", controller.Current).Methods(http.MethodGet)
	sub.HandleFunc("", controller.Close).Methods(http.MethodDelete)
	sub.HandleFunc("/payment", controller.ProceedToPayment).Methods(http.MethodPost)
	sub.HandleFunc("/payment-method", controller.SelectPaymentMethod).Methods(http.MethodPut)
	sub.HandleFunc("/back", controller.BackToCart).Methods(http.MethodPost)
	sub.HandleFunc("/confirm", controller.ConfirmPayment).Methods(http.MethodPost)
	sub.HandleFunc("/complete", controller.Complete).Methods(http.MethodPost)
}

func (t CheckoutController) Open(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Open")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Open").
		Str(log.KeyProcess, "opening checkout").
		Logger()

	c = logger.WithContext(c)
	session := t.service.Open(c)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "opened checkout",
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) Current(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Current")
	defer span.End()

	session := t.service.Current(c)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "current checkout session",
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController ProceedToPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController ProceedToPayment").
		Str(log.KeyProcess, "moving to payment step").
		Logger()

	c = logger.WithContext(c)
	session, err := t.service.ProceedToPayment(c)
	if err != nil {
		err = fmt.Errorf("failed moving to payment step with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "moved to payment step",
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) BackToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController BackToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController BackToCart").
		Str(log.KeyProcess, "moving back to cart step").
		Logger()

	c = logger.WithContext(c)
	session, err := t.service.BackToCart(c)
	if err != nil {
		err = fmt.Errorf("failed moving back to cart step with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "moved back to cart step",
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController SelectPaymentMethod")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController SelectPaymentMethod").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.SelectPaymentMethod{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := t.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "selecting payment method").
		Str(log.KeyPaymentMethod, reqBody.Method).
		Logger()
	c = logger.WithContext(c)
	session, err := t.service.SelectPaymentMethod(c, service.PaymentMethod(reqBody.Method))
	if err != nil {
		err = fmt.Errorf("failed selecting payment method with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("selected payment method %s", reqBody.Method),
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController ConfirmPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController ConfirmPayment").
		Str(log.KeyProcess, "confirming payment").
		Logger()

	c = logger.WithContext(c)
	session, err := t.service.ConfirmPayment(c)
	if err != nil {
		err = fmt.Errorf("failed confirming payment with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("settlement started for orderId=%s", session.OrderID),
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) Complete(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Complete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Complete").
		Str(log.KeyProcess, "completing checkout").
		Logger()

	c = logger.WithContext(c)
	session, err := t.service.Complete(c)
	if err != nil {
		err = fmt.Errorf("failed completing checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("completed orderId=%s", session.OrderID),
		"data":       map[string]interface{}{"checkout": session},
	})
}

func (t CheckoutController) Close(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Close")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Close").
		Str(log.KeyProcess, "closing checkout").
		Logger()

	c = logger.WithContext(c)
	if err := t.service.Close(c); err != nil {
		err = fmt.Errorf("failed closing checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "closed checkout",
	})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrUnknownPaymentMethod):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrCheckoutClosed),
		errors.Is(err, inErrors.ErrInvalidStep),
		errors.Is(err, inErrors.ErrCartEmpty),
		errors.Is(err, inErrors.ErrSettlementInProgress),
		errors.Is(err, inErrors.ErrPaymentMethodRequired):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
