package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/cache"
	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/repository"
)

type mockCartRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCartRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockCartRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = cart
	return nil
}

func (m *mockCartRepository) DeleteCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart = nil
	return nil
}

type mockCache struct {
	m       sync.RWMutex
	cart    *domain.Cart
	err     error
	deletes int
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = cart
	return nil
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.deletes++
	return nil
}

func (m *mockCache) deleteCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.deletes
}

// mockOrderRepository captures writes and serves a canned order.
type mockOrderRepository struct {
	m sync.Mutex

	order        *domain.Order
	orders       []*domain.Order
	getErr       error
	createErr    error
	updateErr    error
	createdOrder *domain.Order

	updatedID   uuid.UUID
	updatedFrom domain.OrderStatus
	updatedTo   domain.OrderStatus
	updatedAt   time.Time
}

func (m *mockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.createdOrder = order
	return m.createErr
}

func (m *mockOrderRepository) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.order, nil
}

func (m *mockOrderRepository) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return m.orders, m.getErr
}

func (m *mockOrderRepository) UpdateOrderStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedID = id
	m.updatedFrom = from
	m.updatedTo = to
	m.updatedAt = at
	return nil
}

type mockReservationRepository struct {
	m sync.Mutex

	count     int
	countErr  error
	createErr error
	cancelErr error
	created   *domain.Reservation
	list      []*domain.Reservation

	// countAfterCreateErr is returned by the count re-read that follows
	// a failed insert.
	countAfterRace int
	raceLost       bool
}

func (m *mockReservationRepository) CreateReservation(_ context.Context, res *domain.Reservation) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		m.raceLost = true // later count re-reads see the post-race state
		return m.createErr
	}
	m.created = res
	return nil
}

func (m *mockReservationRepository) CountActiveReservations(context.Context, string, string) (int, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	if m.raceLost {
		return m.countAfterRace, nil
	}
	return m.count, nil
}

func (m *mockReservationRepository) GetReservationByID(context.Context, uuid.UUID) (*domain.Reservation, error) {
	if len(m.list) > 0 {
		return m.list[0], nil
	}
	return nil, repository.ErrReservationNotFound
}

func (m *mockReservationRepository) ListReservationsByUserID(context.Context, string) ([]*domain.Reservation, error) {
	return m.list, nil
}

func (m *mockReservationRepository) CancelReservation(context.Context, uuid.UUID, string) error {
	return m.cancelErr
}
