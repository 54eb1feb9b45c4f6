package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/cart/internal/service"
	"github.com/greenplate/ordering/cart/pkg/request"
	"github.com/greenplate/ordering/internal/domain"
	"github.com/greenplate/ordering/internal/errors"
	inHttp "github.com/greenplate/ordering/internal/http"
	"github.com/greenplate/ordering/internal/log"
)

type CartController struct {
	service  *service.CartService
	validate *validator.Validate
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	sub := router.PathPrefix("/cart").Subrouter()
	sub.HandleFunc("", controller.Summary).Methods(http.MethodGet)
	sub.HandleFunc("", controller.Clear).Methods(http.MethodDelete)
	sub.HandleFunc("/indicator", controller.Indicator).Methods(http.MethodGet)
	sub.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	sub.HandleFunc("/items/{itemId}", controller.SetQuantity).Methods(http.MethodPut)
	sub.HandleFunc("/items/{itemId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.AddItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		errors.HandleError(err, span)
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
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	c = logger.WithContext(c)
	summary, err := t.service.AddItem(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding itemId=%s with error=%w", reqBody.ID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("added itemId=%s to cart", reqBody.ID),
		"data":       map[string]interface{}{"cart": summary},
	})
}

func (t CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetQuantity")
	defer span.End()

	itemId := domain.ItemID(mux.Vars(r)["itemId"])

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetQuantity").
		Str(log.KeyItemID, string(itemId)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.SetQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	c = logger.WithContext(c)
	summary, err := t.service.SetQuantity(c, itemId, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed updating quantity of itemId=%s with error=%w", itemId, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("updated quantity of itemId=%s", itemId),
		"data":       map[string]interface{}{"cart": summary},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	itemId := domain.ItemID(mux.Vars(r)["itemId"])

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeyItemID, string(itemId)).
		Str(log.KeyProcess, "removing item").
		Logger()

	c = logger.WithContext(c)
	summary, err := t.service.RemoveItem(c, itemId)
	if err != nil {
		err = fmt.Errorf("failed removing itemId=%s with error=%w", itemId, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("removed itemId=%s from cart", itemId),
		"data":       map[string]interface{}{"cart": summary},
	})
}

func (t CartController) Clear(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Clear").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	c = logger.WithContext(c)
	summary, err := t.service.Clear(c)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cleared cart",
		"data":       map[string]interface{}{"cart": summary},
	})
}

func (t CartController) Summary(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Summary")
	defer span.End()

	summary := t.service.Summary(c)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart summary",
		"data":       map[string]interface{}{"cart": summary},
	})
}

func (t CartController) Indicator(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Indicator")
	defer span.End()

	badge := t.service.Badge(c)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart indicator",
		"data":       map[string]interface{}{"indicator": badge},
	})
}
