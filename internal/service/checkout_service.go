package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/repository"
)

// CartReader is the slice of CartService the checkout flow needs.
type CartReader interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// CheckoutResult is what the handler surfaces: the created order and
// the payment substitution, when one happened.
type CheckoutResult struct {
	Order        *domain.Order
	Substitution *domain.PaymentSubstitution
}

// CheckoutService runs the checkout gate against the user's current
// cart and, on acceptance, persists the pending order (plus its outbox
// event) and empties the cart.
type CheckoutService struct {
	carts  CartReader
	orders repository.OrderRepository
	now    func() time.Time
}

func NewCheckoutService(carts CartReader, orders repository.OrderRepository) *CheckoutService {
	return &CheckoutService{
		carts:  carts,
		orders: orders,
		now:    time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, payload domain.CheckoutPayload, deliveryFee float64) (*CheckoutResult, error) {
	cart, err := s.carts.GetCart(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	outcome, err := domain.ValidateCheckout(payload, cart, deliveryFee, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, &outcome.Order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed; a leftover cart is an annoyance, not a
	// failure.
	if err := s.carts.ClearCart(ctx, payload.UserID); err != nil {
		log.Printf("clear cart after checkout error: %v", err)
	}

	return &CheckoutResult{
		Order:        &outcome.Order,
		Substitution: outcome.Substitution,
	}, nil
}
