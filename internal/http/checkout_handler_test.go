package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/service"
)

func newCheckoutRouter(api CheckoutAPI) http.Handler {
	h := NewCheckoutHandler(api, 5*time.Second)
	r := chi.NewRouter()
	r.Use(HeaderAuthMiddleware)
	r.Post("/api/v1/checkout", h.Checkout)
	return r
}

func sampleOrder(status domain.OrderStatus, method domain.PaymentMethod) *domain.Order {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20260831-a1b2c3d4",
		UserID:      "user-1",
		Status:      status,
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "Pad Thai", UnitPrice: 12.5, Quantity: 2},
		},
		Subtotal:      25.0,
		DeliveryFee:   5.0,
		Total:         30.0,
		PaymentMethod: method,
		Customer: domain.CustomerInfo{
			Name:            "Alice",
			Email:           "alice@example.com",
			Phone:           "555-0100",
			DeliveryAddress: "1 Main St",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func checkoutBody() CheckoutRequestDTO {
	return CheckoutRequestDTO{
		CustomerName:    "Alice",
		Email:           "alice@example.com",
		Phone:           "555-0100",
		DeliveryAddress: "1 Main St",
		PaymentMethod:   "cash",
		DeliveryFee:     5.0,
	}
}

func TestCheckoutHandler_Success(t *testing.T) {
	mock := &mockCheckoutAPI{result: &service.CheckoutResult{
		Order: sampleOrder(domain.OrderStatusPending, domain.PaymentCash),
	}}
	router := newCheckoutRouter(mock)

	body, _ := json.Marshal(checkoutBody())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, "cash", resp.Order.PaymentMethod)
	assert.Nil(t, resp.PaymentSubstitution)
	assert.Equal(t, "user-1", mock.lastPayload.UserID)
	assert.InDelta(t, 5.0, mock.lastFee, 0.001)
}

func TestCheckoutHandler_SubstitutionSurfaced(t *testing.T) {
	mock := &mockCheckoutAPI{result: &service.CheckoutResult{
		Order: sampleOrder(domain.OrderStatusPending, domain.PaymentDigitalWallet),
		Substitution: &domain.PaymentSubstitution{
			From: domain.PaymentCash,
			To:   domain.PaymentDigitalWallet,
		},
	}}
	router := newCheckoutRouter(mock)

	body, _ := json.Marshal(checkoutBody())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.PaymentSubstitution)
	assert.Equal(t, domain.PaymentCash, resp.PaymentSubstitution.From)
	assert.Equal(t, domain.PaymentDigitalWallet, resp.PaymentSubstitution.To)
	assert.Equal(t, "digital_wallet", resp.Order.PaymentMethod)
}

func TestCheckoutHandler_ReceiptRequired(t *testing.T) {
	mock := &mockCheckoutAPI{err: &domain.Rejection{
		Reason: domain.ReasonReceiptRequired,
		Detail: "digital_wallet payments require a receipt reference",
		Substitution: &domain.PaymentSubstitution{
			From: domain.PaymentCash,
			To:   domain.PaymentDigitalWallet,
		},
	}}
	router := newCheckoutRouter(mock)

	body, _ := json.Marshal(checkoutBody())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "receipt_required", resp.Code)
	require.NotNil(t, resp.PaymentSubstitution)
	assert.Equal(t, domain.PaymentDigitalWallet, resp.PaymentSubstitution.To)
}

func TestCheckoutHandler_MissingField(t *testing.T) {
	mock := &mockCheckoutAPI{err: &domain.Rejection{
		Reason: domain.ReasonMissingField,
		Detail: "customer_name is required",
	}}
	router := newCheckoutRouter(mock)

	payload := checkoutBody()
	payload.CustomerName = ""
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "missing_field", resp.Code)
}

func TestCheckoutHandler_EmptyCart(t *testing.T) {
	mock := &mockCheckoutAPI{err: service.ErrEmptyCart}
	router := newCheckoutRouter(mock)

	body, _ := json.Marshal(checkoutBody())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "empty_cart", resp.Code)
}

func TestCheckoutHandler_NegativeDeliveryFee(t *testing.T) {
	router := newCheckoutRouter(&mockCheckoutAPI{})

	payload := checkoutBody()
	payload.DeliveryFee = -1
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
