package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenplate/ordering/cart/internal/store"
	"github.com/greenplate/ordering/checkout/internal/otel"
	"github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/log"
)

type Step string

const (
	StepClosed       Step = "closed"
	StepCart         Step = "cart"
	StepPayment      Step = "payment"
	StepProcessing   Step = "processing"
	StepConfirmation Step = "confirmation"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
	PaymentCash   PaymentMethod = "cash"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCard, PaymentWallet, PaymentCash:
		return true
	}
	return false
}

// Session is one checkout attempt. It never outlives the flow: closing before
// settlement discards it without touching the cart, and a fresh one is created
// at the cart step every time the flow opens.
type Session struct {
	Step             Step          `json:"step"`
	PaymentMethod    PaymentMethod `json:"paymentMethod,omitempty"`
	Pricing          Pricing       `json:"pricing"`
	OrderID          string        `json:"orderId,omitempty"`
	ItemCount        int           `json:"itemCount"`
	CO2Impact        float64       `json:"co2Impact"`
	DeliveryEstimate string        `json:"deliveryEstimate,omitempty"`
	OpenedAt         time.Time     `json:"openedAt"`
}

// CheckoutService drives the cart → payment → processing → confirmation state
// machine on top of the cart store. Pricing is recomputed from the store on
// every read until payment is confirmed, then frozen for the rest of the
// attempt. Settlement is a one-shot timer that always completes; the flow
// refuses to close while it runs.
type CheckoutService struct {
	mu               sync.Mutex
	store            *store.Store
	session          *Session
	settlementDelay  time.Duration
	deliveryEstimate string
}

func NewCheckoutService(
	store *store.Store,
	settlementDelay time.Duration,
	deliveryEstimate string,
) *CheckoutService {
	return &CheckoutService{
		store:            store,
		settlementDelay:  settlementDelay,
		deliveryEstimate: deliveryEstimate,
	}
}

// Open starts a checkout attempt at the cart step. A previous attempt that
// was abandoned mid-flow is discarded; there is no resume semantics.
func (svc *CheckoutService) Open(c context.Context) Session {
	c, span := otel.Tracer.Start(c, "CheckoutService Open")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Open").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.session = &Session{Step: StepCart, OpenedAt: time.Now()}
	logger.Info().Str(log.KeyCheckoutStep, string(StepCart)).Msg("opened checkout")
	return svc.snapshotLocked()
}

// Current returns the session with pricing recomputed fresh from the cart
// store for the pre-confirmation steps. A closed flow reports StepClosed.
func (svc *CheckoutService) Current(c context.Context) Session {
	_, span := otel.Tracer.Start(c, "CheckoutService Current")
	defer span.End()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.snapshotLocked()
}

// ProceedToPayment moves from the cart step to payment. The transition is
// unavailable while the cart is empty.
func (svc *CheckoutService) ProceedToPayment(c context.Context) (Session, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService ProceedToPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService ProceedToPayment").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStepLocked(StepCart); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	if svc.store.TotalItemCount() == 0 {
		err := errors.ErrCartEmpty
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}

	svc.session.Step = StepPayment
	logger.Info().Str(log.KeyCheckoutStep, string(StepPayment)).Msg("moved to payment step")
	return svc.snapshotLocked(), nil
}

// BackToCart returns from the payment step to the cart step.
func (svc *CheckoutService) BackToCart(c context.Context) (Session, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService BackToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService BackToCart").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStepLocked(StepPayment); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}

	svc.session.Step = StepCart
	logger.Info().Str(log.KeyCheckoutStep, string(StepCart)).Msg("moved back to cart step")
	return svc.snapshotLocked(), nil
}

// SelectPaymentMethod records the payment choice at the payment step. The
// choice is mutually exclusive; selecting again replaces the previous one.
func (svc *CheckoutService) SelectPaymentMethod(
	c context.Context,
	method PaymentMethod,
) (Session, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService SelectPaymentMethod")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService SelectPaymentMethod").
		Str(log.KeyPaymentMethod, string(method)).
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStepLocked(StepPayment); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	if !ValidPaymentMethod(method) {
		err := fmt.Errorf("method=%s with error=%w", method, errors.ErrUnknownPaymentMethod)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}

	svc.session.PaymentMethod = method
	logger.Info().Msg("selected payment method")
	return svc.snapshotLocked(), nil
}

// ConfirmPayment freezes the pricing snapshot, generates the order identifier
// and enters the processing step. Settlement is simulated by a fixed-delay
// timer that unconditionally lands in the confirmation step.
func (svc *CheckoutService) ConfirmPayment(c context.Context) (Session, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService ConfirmPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService ConfirmPayment").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStepLocked(StepPayment); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	if svc.session.PaymentMethod == "" {
		err := errors.ErrPaymentMethodRequired
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}

	svc.session.Pricing = Quote(svc.store.Subtotal())
	svc.session.ItemCount = svc.store.TotalItemCount()
	svc.session.CO2Impact = svc.store.TotalCO2Impact()
	svc.session.OrderID = newOrderID()
	svc.session.DeliveryEstimate = svc.deliveryEstimate
	svc.session.Step = StepProcessing

	logger = logger.With().
		Str(log.KeyOrderID, svc.session.OrderID).
		Str(log.KeyTotal, svc.session.Pricing.Total.StringFixed(2)).
		Logger()
	logger.Info().Str(log.KeyCheckoutStep, string(StepProcessing)).Msg("settlement started")

	orderID := svc.session.OrderID
	settleLogger := logger
	time.AfterFunc(svc.settlementDelay, func() {
		svc.settle(orderID, settleLogger)
	})

	return svc.snapshotLocked(), nil
}

// settle lands the attempt in the confirmation step once the simulated
// settlement delay elapses. There is no failure path.
func (svc *CheckoutService) settle(orderID string, logger zerolog.Logger) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.session == nil || svc.session.Step != StepProcessing ||
		svc.session.OrderID != orderID {
		return
	}
	svc.session.Step = StepConfirmation
	logger.Info().
		Str(log.KeyCheckoutStep, string(StepConfirmation)).
		Msg("settlement completed")
}

// Complete is the sole exit from the confirmation step: it clears the cart
// store and closes the flow, returning the final session for display.
func (svc *CheckoutService) Complete(c context.Context) (Session, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService Complete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Complete").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.requireStepLocked(StepConfirmation); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}

	final := *svc.session

	logger = logger.With().
		Str(log.KeyOrderID, final.OrderID).
		Str(log.KeyProcess, "clearing cart").
		Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := svc.store.Clear(c); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	logger.Info().Msg("cleared cart")

	svc.session = nil
	logger.Info().Str(log.KeyCheckoutStep, string(StepClosed)).Msg("completed checkout")
	return final, nil
}

// Close discards the session without touching the cart. Closing is refused
// during processing: the dismiss affordance is suppressed while settlement
// runs, because aborting mid-settlement would leave the attempt undefined.
func (svc *CheckoutService) Close(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CheckoutService Close")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Close").
		Logger()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.session == nil {
		return nil
	}
	if svc.session.Step == StepProcessing {
		err := errors.ErrSettlementInProgress
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	svc.session = nil
	logger.Info().Str(log.KeyCheckoutStep, string(StepClosed)).Msg("closed checkout")
	return nil
}

func (svc *CheckoutService) requireStepLocked(step Step) error {
	if svc.session == nil {
		return errors.ErrCheckoutClosed
	}
	if svc.session.Step != step {
		return fmt.Errorf(
			"step=%s with error=%w",
			svc.session.Step,
			errors.ErrInvalidStep,
		)
	}
	return nil
}

// snapshotLocked copies the session, recomputing the cart-derived figures
// fresh from the store until payment is confirmed so a cart edit mid-flow can
// never leave a stale total on display.
func (svc *CheckoutService) snapshotLocked() Session {
	if svc.session == nil {
		return Session{Step: StepClosed}
	}
	snapshot := *svc.session
	if snapshot.Step == StepCart || snapshot.Step == StepPayment {
		snapshot.Pricing = Quote(svc.store.Subtotal())
		snapshot.ItemCount = svc.store.TotalItemCount()
		snapshot.CO2Impact = svc.store.TotalCO2Impact()
	}
	return snapshot
}

func newOrderID() string {
	return fmt.Sprintf("GP-%d", time.Now().UnixMilli())
}
