package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/domain"
)

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrConflict means the order's status changed between read and
	// write. The caller re-reads and re-evaluates before retrying.
	ErrConflict = errors.New("order status changed concurrently")

	// ErrCapacityExceeded means the conditional reservation insert found
	// the per-user daily cap already filled.
	ErrCapacityExceeded = errors.New("daily reservation capacity reached")

	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type OrderRepository interface {
	// CreateOrder stores the order and its order-created outbox event in
	// one transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	// UpdateOrderStatus is a compare-and-swap keyed on the previous
	// status. Zero rows with an existing order means a concurrent
	// transition won the race; the method returns ErrConflict.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error
}

type ReservationRepository interface {
	// CreateReservation inserts only while the user's non-cancelled
	// count for the date stays under the cap; the check runs inside the
	// insert statement so concurrent admissions serialize at the store.
	CreateReservation(ctx context.Context, res *domain.Reservation) error
	CountActiveReservations(ctx context.Context, userID, date string) (int, error)
	GetReservationByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	ListReservationsByUserID(ctx context.Context, userID string) ([]*domain.Reservation, error)
	CancelReservation(ctx context.Context, id uuid.UUID, userID string) error
}

// OutboxEvent is one row of the transactional outbox. Payload is the
// event JSON written in the same transaction as the order mutation.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
