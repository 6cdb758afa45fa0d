package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/service"
)

type CheckoutAPI interface {
	Checkout(ctx context.Context, payload domain.CheckoutPayload, deliveryFee float64) (*service.CheckoutResult, error)
}

type CheckoutHandler struct {
	checkout CheckoutAPI
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutAPI, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	CustomerName    string  `json:"customer_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	DeliveryAddress string  `json:"delivery_address"`
	DeliveryCity    string  `json:"delivery_city"`
	DeliveryZip     string  `json:"delivery_zip"`
	PaymentMethod   string  `json:"payment_method"`
	Notes           string  `json:"notes"`
	ReceiptRef      string  `json:"receipt_ref"`
	DeliveryFee     float64 `json:"delivery_fee"`
}

type CheckoutResponseDTO struct {
	Order               OrderResponseDTO            `json:"order"`
	PaymentSubstitution *domain.PaymentSubstitution `json:"payment_substitution,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.DeliveryFee < 0 {
		respondError(w, http.StatusBadRequest, "invalid_delivery_fee", "delivery_fee must not be negative")
		return
	}

	payload := domain.CheckoutPayload{
		UserID:          userID,
		CustomerName:    req.CustomerName,
		Email:           req.Email,
		Phone:           req.Phone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryZip:     req.DeliveryZip,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
		ReceiptRef:      req.ReceiptRef,
	}

	result, err := h.checkout.Checkout(ctx, payload, req.DeliveryFee)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Order:               orderResponse(result.Order),
		PaymentSubstitution: result.Substitution,
	})
}
