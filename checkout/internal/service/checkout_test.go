package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/ordering/cart/internal/storage"
	"github.com/greenplate/ordering/cart/internal/store"
	"github.com/greenplate/ordering/internal/domain"
	inErrors "github.com/greenplate/ordering/internal/errors"
)

const testSettlementDelay = 20 * time.Millisecond

func newTestCheckout(t *testing.T) (*CheckoutService, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greenPlateCart.json")
	cartStore := store.New(context.Background(), storage.NewFileStorage(path))
	svc := NewCheckoutService(cartStore, testSettlementDelay, "25-35 min")
	return svc, cartStore
}

func addCurry(t *testing.T, s *store.Store) {
	t.Helper()
	impact := 2.5
	_, err := s.AddItem(context.Background(), domain.CartItem{
		ID:             "sr1",
		Name:           "Vegetable Curry",
		Price:          domain.PriceFromString("$14.99"),
		IsVegan:        true,
		DietaryType:    domain.DietaryVegan,
		CO2Impact:      &impact,
		RestaurantName: "Spice Route Indian",
	})
	require.NoError(t, err)
}

func openToPayment(t *testing.T, svc *CheckoutService, s *store.Store) {
	t.Helper()
	addCurry(t, s)
	svc.Open(context.Background())
	_, err := svc.ProceedToPayment(context.Background())
	require.NoError(t, err)
}

func TestOpenStartsAtCartStep(t *testing.T) {
	svc, s := newTestCheckout(t)
	addCurry(t, s)

	session := svc.Open(context.Background())
	assert.Equal(t, StepCart, session.Step)
	assert.Equal(t, 1, session.ItemCount)
	assert.Empty(t, session.OrderID)
}

func TestCurrentReportsClosedWithoutSession(t *testing.T) {
	svc, _ := newTestCheckout(t)
	assert.Equal(t, StepClosed, svc.Current(context.Background()).Step)
}

func TestProceedToPaymentRequiresNonEmptyCart(t *testing.T) {
	svc, _ := newTestCheckout(t)
	svc.Open(context.Background())

	_, err := svc.ProceedToPayment(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrCartEmpty)
	assert.Equal(t, StepCart, svc.Current(context.Background()).Step)
}

func TestProceedToPaymentRequiresOpenSession(t *testing.T) {
	svc, s := newTestCheckout(t)
	addCurry(t, s)

	_, err := svc.ProceedToPayment(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrCheckoutClosed)
}

func TestBackToCartFromPayment(t *testing.T) {
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	session, err := svc.BackToCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepCart, session.Step)
}

func TestBackToCartOnlyFromPayment(t *testing.T) {
	svc, s := newTestCheckout(t)
	addCurry(t, s)
	svc.Open(context.Background())

	_, err := svc.BackToCart(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrInvalidStep)
}

func TestSelectPaymentMethodRejectsUnknown(t *testing.T) {
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(context.Background(), "barter")
	assert.ErrorIs(t, err, inErrors.ErrUnknownPaymentMethod)
}

func TestConfirmPaymentRequiresMethod(t *testing.T) {
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.ConfirmPayment(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrPaymentMethodRequired)
}

func TestConfirmPaymentFreezesPricingAndSettles(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(c, PaymentCard)
	require.NoError(t, err)

	session, err := svc.ConfirmPayment(c)
	require.NoError(t, err)
	assert.Equal(t, StepProcessing, session.Step)
	assert.True(t, strings.HasPrefix(session.OrderID, "GP-"))
	assert.Equal(t, "25-35 min", session.DeliveryEstimate)
	assert.Equal(t, 1, session.ItemCount)
	assert.True(t, decimal.RequireFromString("14.99").Equal(session.Pricing.Subtotal))
	assert.True(t, decimal.RequireFromString("3.99").Equal(session.Pricing.DeliveryFee))

	assert.Eventually(t, func() bool {
		return svc.Current(c).Step == StepConfirmation
	}, time.Second, 5*time.Millisecond)

	// settlement never touches the cart on its own
	assert.Equal(t, 1, s.TotalItemCount())
}

func TestPricingFrozenAfterConfirmDespiteCartEdits(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(c, PaymentWallet)
	require.NoError(t, err)
	confirmed, err := svc.ConfirmPayment(c)
	require.NoError(t, err)

	addCurry(t, s)
	current := svc.Current(c)
	assert.Equal(t, confirmed.ItemCount, current.ItemCount)
	assert.True(t, confirmed.Pricing.Total.Equal(current.Pricing.Total))
}

func TestCompleteClearsCartAndClosesFlow(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(c, PaymentCard)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(c)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return svc.Current(c).Step == StepConfirmation
	}, time.Second, 5*time.Millisecond)

	final, err := svc.Complete(c)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, final.Step)
	assert.NotEmpty(t, final.OrderID)

	assert.Equal(t, 0, s.TotalItemCount())
	assert.Equal(t, StepClosed, svc.Current(c).Step)
}

func TestCompleteOnlyFromConfirmation(t *testing.T) {
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.Complete(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrInvalidStep)
	assert.Equal(t, 1, s.TotalItemCount())
}

func TestCloseFromCartLeavesCartUntouched(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	addCurry(t, s)
	svc.Open(c)

	require.NoError(t, svc.Close(c))
	assert.Equal(t, StepClosed, svc.Current(c).Step)
	assert.Equal(t, 1, s.TotalItemCount())
}

func TestCloseWithoutSessionIsNoop(t *testing.T) {
	svc, _ := newTestCheckout(t)
	assert.NoError(t, svc.Close(context.Background()))
}

func TestCloseRefusedDuringProcessing(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(c, PaymentCash)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(c)
	require.NoError(t, err)

	err = svc.Close(c)
	assert.ErrorIs(t, err, inErrors.ErrSettlementInProgress)

	require.Eventually(t, func() bool {
		return svc.Current(c).Step == StepConfirmation
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Close(c))
}

func TestReopenAlwaysResetsToCartStep(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	session := svc.Open(c)
	assert.Equal(t, StepCart, session.Step)
	assert.Empty(t, session.PaymentMethod)
	assert.Empty(t, session.OrderID)
}

func TestStaleSettlementTimerIgnoredAfterReopen(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	openToPayment(t, svc, s)

	_, err := svc.SelectPaymentMethod(c, PaymentCard)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(c)
	require.NoError(t, err)

	// reopening abandons the in-flight attempt; its timer must not move the
	// fresh session forward
	svc.Open(c)
	time.Sleep(3 * testSettlementDelay)
	assert.Equal(t, StepCart, svc.Current(c).Step)
}

func TestSnapshotRecomputesPricingBeforeConfirm(t *testing.T) {
	c := context.Background()
	svc, s := newTestCheckout(t)
	addCurry(t, s)
	svc.Open(c)

	before := svc.Current(c)
	assert.True(t, decimal.RequireFromString("14.99").Equal(before.Pricing.Subtotal))

	addCurry(t, s)
	after := svc.Current(c)
	assert.Equal(t, 2, after.ItemCount)
	assert.True(t, decimal.RequireFromString("29.98").Equal(after.Pricing.Subtotal))
	assert.True(t, after.Pricing.DeliveryFee.IsZero())
}
