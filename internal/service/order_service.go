package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/repository"
)

// OrderService drives the order state machine. The legality of a move
// is decided by the domain; the store commits it with a compare-and-
// swap so two racing actors cannot both win from the same pre-race
// state.
type OrderService struct {
	repo repository.OrderRepository
	now  func() time.Time
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

// Transition moves the order to target. Rejections come back typed:
// terminal-state and backward moves from the domain guard, conflict
// when another actor changed the order between our read and write.
func (s *OrderService) Transition(ctx context.Context, id uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	if !target.Valid() {
		return nil, ErrUnknownStatus
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := order.Transition(target, s.now())
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateOrderStatus(ctx, order.ID, order.Status, target, updated.UpdatedAt)
	if errors.Is(err, repository.ErrConflict) {
		return nil, &domain.Rejection{
			Reason: domain.ReasonConflict,
			Detail: fmt.Sprintf("order %s changed concurrently; re-read and retry", order.OrderNumber),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return &updated, nil
}

// Cancel is Transition to cancelled; the permissive window (any
// non-terminal state) applies. Role-based narrowing happens in the
// HTTP layer.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.Transition(ctx, id, domain.OrderStatusCancelled)
}
