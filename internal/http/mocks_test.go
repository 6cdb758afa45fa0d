package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/service"
)

type mockCartAPI struct {
	cart *domain.Cart
	err  error

	lastUserID    string
	lastItem      domain.CartItem
	lastQty       int
	lastProductID int64
	cleared       bool
}

func (m *mockCartAPI) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.lastUserID = userID
	return m.cart, m.err
}

func (m *mockCartAPI) AddItem(_ context.Context, userID string, item domain.CartItem, qty int) (*domain.Cart, error) {
	m.lastUserID = userID
	m.lastItem = item
	m.lastQty = qty
	return m.cart, m.err
}

func (m *mockCartAPI) SetQuantity(_ context.Context, userID string, productID int64, qty int) (*domain.Cart, error) {
	m.lastUserID = userID
	m.lastProductID = productID
	m.lastQty = qty
	return m.cart, m.err
}

func (m *mockCartAPI) RemoveItem(_ context.Context, userID string, productID int64) (*domain.Cart, error) {
	m.lastUserID = userID
	m.lastProductID = productID
	return m.cart, m.err
}

func (m *mockCartAPI) ClearCart(_ context.Context, userID string) error {
	m.lastUserID = userID
	m.cleared = true
	return m.err
}

type mockCheckoutAPI struct {
	result *service.CheckoutResult
	err    error

	lastPayload domain.CheckoutPayload
	lastFee     float64
}

func (m *mockCheckoutAPI) Checkout(_ context.Context, payload domain.CheckoutPayload, deliveryFee float64) (*service.CheckoutResult, error) {
	m.lastPayload = payload
	m.lastFee = deliveryFee
	return m.result, m.err
}

type mockOrderAPI struct {
	order  *domain.Order
	orders []*domain.Order

	getErr        error
	listErr       error
	transitionErr error
	cancelErr     error

	transitionedOrder *domain.Order
	cancelledOrder    *domain.Order

	lastID     uuid.UUID
	lastTarget domain.OrderStatus
}

func (m *mockOrderAPI) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.lastID = id
	return m.order, m.getErr
}

func (m *mockOrderAPI) ListOrders(_ context.Context, _ string) ([]*domain.Order, error) {
	return m.orders, m.listErr
}

func (m *mockOrderAPI) Transition(_ context.Context, id uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	m.lastID = id
	m.lastTarget = target
	return m.transitionedOrder, m.transitionErr
}

func (m *mockOrderAPI) Cancel(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.lastID = id
	return m.cancelledOrder, m.cancelErr
}

type mockBookingAPI struct {
	reservation  *domain.Reservation
	reservations []*domain.Reservation

	admitErr  error
	listErr   error
	cancelErr error

	lastReq    domain.AdmitRequest
	lastID     uuid.UUID
	lastUserID string
}

func (m *mockBookingAPI) Admit(_ context.Context, req domain.AdmitRequest) (*domain.Reservation, error) {
	m.lastReq = req
	return m.reservation, m.admitErr
}

func (m *mockBookingAPI) ListReservations(_ context.Context, userID string) ([]*domain.Reservation, error) {
	m.lastUserID = userID
	return m.reservations, m.listErr
}

func (m *mockBookingAPI) Cancel(_ context.Context, id uuid.UUID, userID string) error {
	m.lastID = id
	m.lastUserID = userID
	return m.cancelErr
}
