package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/ordering/cart/internal/storage"
	"github.com/greenplate/ordering/cart/internal/store"
	"github.com/greenplate/ordering/checkout/internal/service"
	"github.com/greenplate/ordering/internal/domain"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type sessionView struct {
	Checkout struct {
		Step          string `json:"step"`
		PaymentMethod string `json:"paymentMethod"`
		OrderID       string `json:"orderId"`
		ItemCount     int    `json:"itemCount"`
	} `json:"checkout"`
}

func newTestRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greenPlateCart.json")
	cartStore := store.New(context.Background(), storage.NewFileStorage(path))

	svc := service.NewCheckoutService(cartStore, 20*time.Millisecond, "25-35 min")
	router := mux.NewRouter()
	AttachCheckoutController(router, svc)
	return router, cartStore
}

func doRequest(t *testing.T, router *mux.Router, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := envelope{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func session(t *testing.T, resp envelope) sessionView {
	t.Helper()
	view := sessionView{}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	return view
}

func fillCart(t *testing.T, cartStore *store.Store) {
	t.Helper()
	_, err := cartStore.AddItem(context.Background(), domain.CartItem{
		ID:    "sr1",
		Name:  "Vegetable Curry",
		Price: domain.PriceFromString("$14.99"),
	})
	require.NoError(t, err)
}

func TestOpenEndpointStartsAtCart(t *testing.T) {
	router, cartStore := newTestRouter(t)
	fillCart(t, cartStore)

	rec, resp := doRequest(t, router, http.MethodPost, "/checkout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	view := session(t, resp)
	assert.Equal(t, "cart", view.Checkout.Step)
	assert.Equal(t, 1, view.Checkout.ItemCount)
}

func TestPaymentEndpointRejectsEmptyCart(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/checkout", "")

	rec, resp := doRequest(t, router, http.MethodPost, "/checkout/payment", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "failed", resp.Status)
}

func TestPaymentMethodEndpointValidatesBody(t *testing.T) {
	router, cartStore := newTestRouter(t)
	fillCart(t, cartStore)
	doRequest(t, router, http.MethodPost, "/checkout", "")
	doRequest(t, router, http.MethodPost, "/checkout/payment", "")

	rec, _ := doRequest(t, router, http.MethodPut, "/checkout/payment-method", `{"method":"barter"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := doRequest(t, router, http.MethodPut, "/checkout/payment-method", `{"method":"card"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "card", session(t, resp).Checkout.PaymentMethod)
}

func TestFullCheckoutFlowOverHTTP(t *testing.T) {
	router, cartStore := newTestRouter(t)
	fillCart(t, cartStore)

	doRequest(t, router, http.MethodPost, "/checkout", "")
	rec, _ := doRequest(t, router, http.MethodPost, "/checkout/payment", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodPut, "/checkout/payment-method", `{"method":"card"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doRequest(t, router, http.MethodPost, "/checkout/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := session(t, resp)
	assert.Equal(t, "processing", view.Checkout.Step)
	assert.True(t, strings.HasPrefix(view.Checkout.OrderID, "GP-"))

	// closing is refused while settlement runs
	rec, _ = doRequest(t, router, http.MethodDelete, "/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Eventually(t, func() bool {
		_, resp := doRequest(t, router, http.MethodGet, "/checkout", "")
		return session(t, resp).Checkout.Step == "confirmation"
	}, time.Second, 5*time.Millisecond)

	rec, resp = doRequest(t, router, http.MethodPost, "/checkout/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, session(t, resp).Checkout.OrderID)
	assert.Equal(t, 0, cartStore.TotalItemCount())

	_, resp = doRequest(t, router, http.MethodGet, "/checkout", "")
	assert.Equal(t, "closed", session(t, resp).Checkout.Step)
}

func TestBackEndpointOnlyFromPayment(t *testing.T) {
	router, cartStore := newTestRouter(t)
	fillCart(t, cartStore)
	doRequest(t, router, http.MethodPost, "/checkout", "")

	rec, _ := doRequest(t, router, http.MethodPost, "/checkout/back", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCloseEndpointFromCartKeepsCart(t *testing.T) {
	router, cartStore := newTestRouter(t)
	fillCart(t, cartStore)
	doRequest(t, router, http.MethodPost, "/checkout", "")

	rec, _ := doRequest(t, router, http.MethodDelete, "/checkout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cartStore.TotalItemCount())
}

func TestConfirmEndpointWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/checkout/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
