package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/domain"
)

type OrderAPI interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	Transition(ctx context.Context, id uuid.UUID, target domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderAPI
	timeout time.Duration
}

func NewOrdersHandler(orders OrderAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type OrderResponseDTO struct {
	ID            string         `json:"id"`
	OrderNumber   string         `json:"order_number"`
	Status        string         `json:"status"`
	Items         []OrderItemDTO `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	DeliveryFee   float64        `json:"delivery_fee"`
	Total         float64        `json:"total"`
	PaymentMethod string         `json:"payment_method"`
	Cancellable   bool           `json:"cancellable"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func orderResponse(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return OrderResponseDTO{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		Items:         items,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		Cancellable:   o.IsCancellable(),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(ctx, userID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, orderResponse(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	// Customers only see their own orders.
	if getUserRoleFromContext(r.Context()) != RoleAdmin && order.UserID != userID {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, orderResponse(order))
}

// PATCH /api/v1/orders/{order_id}/status — admin only. The status
// pipeline itself (forward-only, cancellation window) is enforced by
// the core; this handler only gates who may ask.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if getUserRoleFromContext(r.Context()) != RoleAdmin {
		respondError(w, http.StatusForbidden, "forbidden", "only admins may change order status")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.Transition(ctx, orderID, domain.OrderStatus(req.Status))
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orderResponse(order))
}

// POST /api/v1/orders/{order_id}/cancel. The core keeps the permissive
// window (anything not delivered/cancelled); customers are narrowed to
// pending/confirmed here, admins get the full window.
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	isAdmin := getUserRoleFromContext(r.Context()) == RoleAdmin

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	if !isAdmin {
		if order.UserID != userID {
			respondError(w, http.StatusNotFound, "order_not_found", "order not found")
			return
		}
		if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusConfirmed {
			respondError(w, http.StatusUnprocessableEntity, "not_cancellable",
				"orders can only be cancelled by the customer while pending or confirmed")
			return
		}
	}

	cancelled, err := h.orders.Cancel(ctx, orderID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orderResponse(cancelled))
}
