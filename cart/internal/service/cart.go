package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/indicator"
	"github.com/greenplate/ordering/cart/internal/otel"
	"github.com/greenplate/ordering/cart/internal/store"
	"github.com/greenplate/ordering/cart/pkg/request"
	"github.com/greenplate/ordering/cart/pkg/response"
	"github.com/greenplate/ordering/internal/domain"
	"github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

type CartService struct {
	store     *store.Store
	indicator *indicator.Indicator
}

func NewCartService(store *store.Store, indicator *indicator.Indicator) CartService {
	return CartService{store: store, indicator: indicator}
}

func (svc CartService) AddItem(
	c context.Context,
	param request.AddItem,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyItemID, string(param.ID)).
		Str(log.KeyItemName, param.Name).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	item, err := svc.store.AddItem(c, param.CartItem())
	if err != nil {
		err = fmt.Errorf("failed adding itemId=%s with error=%w", param.ID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Int(log.KeyQuantity, item.Quantity).Msg("added item to cart")

	return svc.summary(), nil
}

func (svc CartService) RemoveItem(
	c context.Context,
	id domain.ItemID,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyItemID, string(id)).
		Str(log.KeyProcess, "removing item from cart").
		Logger()

	logger.Info().Msg("removing item from cart")
	c = logger.WithContext(c)
	if err := svc.store.RemoveItem(c, id); err != nil {
		err = fmt.Errorf("failed removing itemId=%s with error=%w", id, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("removed item from cart")

	return svc.summary(), nil
}

func (svc CartService) SetQuantity(
	c context.Context,
	id domain.ItemID,
	quantity int,
) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetQuantity").
		Str(log.KeyItemID, string(id)).
		Int(log.KeyQuantity, quantity).
		Str(log.KeyProcess, "updating item quantity").
		Logger()

	logger.Info().Msg("updating item quantity")
	c = logger.WithContext(c)
	if err := svc.store.SetQuantity(c, id, quantity); err != nil {
		err = fmt.Errorf("failed updating quantity of itemId=%s with error=%w", id, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("updated item quantity")

	return svc.summary(), nil
}

func (svc CartService) Clear(c context.Context) (response.CartSummary, error) {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := svc.store.Clear(c); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CartSummary{}, err
	}
	logger.Info().Msg("cleared cart")

	return svc.summary(), nil
}

func (svc CartService) Summary(c context.Context) response.CartSummary {
	_, span := otel.Tracer.Start(c, "CartService Summary")
	defer span.End()
	return svc.summary()
}

func (svc CartService) Badge(c context.Context) response.Badge {
	_, span := otel.Tracer.Start(c, "CartService Badge")
	defer span.End()
	count, pulsing := svc.indicator.Snapshot()
	return response.Badge{Count: count, Pulsing: pulsing}
}

func (svc CartService) summary() response.CartSummary {
	subtotal := svc.store.Subtotal()
	return response.CartSummary{
		Groups:          svc.store.Groups(),
		TotalItems:      svc.store.TotalItemCount(),
		TotalCO2Impact:  svc.store.TotalCO2Impact(),
		Subtotal:        subtotal,
		SubtotalDisplay: "$" + subtotal.StringFixed(2),
	}
}
