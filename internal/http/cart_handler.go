package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/savoria/storefront/internal/domain"
)

type CartAPI interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem, qty int) (*domain.Cart, error)
	SetQuantity(ctx context.Context, userID string, productID int64, qty int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartAPI
	timeout time.Duration
}

func NewCartHandler(carts CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	Category   string  `json:"category"`
	Spicy      bool    `json:"spicy"`
	Vegetarian bool    `json:"vegetarian"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	UserID   string            `json:"user_id"`
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

func cartResponse(cart *domain.Cart) CartResponseDTO {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponseDTO{
		UserID:   cart.UserID,
		Items:    items,
		Subtotal: cart.Subtotal(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Name == "" || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_item", "name is required and unit_price must not be negative")
		return
	}

	item := domain.CartItem{
		ProductID:  req.ProductID,
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		Category:   req.Category,
		Spicy:      req.Spicy,
		Vegetarian: req.Vegetarian,
		AddedAt:    time.Now(),
	}

	cart, err := h.carts.AddItem(ctx, userID, item, req.Quantity)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.SetQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.ClearCart(ctx, userID); err != nil {
		respondDecision(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
