package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the forward pipeline. Cancelled is a side branch
// and deliberately absent: it is reachable from any non-terminal state
// but never part of the forward ordering.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPreparing: 2,
	OrderStatusReady:     3,
	OrderStatusDelivered: 4,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo returns nil when moving from s to target is legal.
// Terminal states accept no outgoing transition. Cancellation stays
// open through every in-progress state up to, but not including,
// delivery. Forward moves must strictly increase rank; re-entering the
// current or an earlier state is refused.
func (s OrderStatus) CanTransitionTo(target OrderStatus) error {
	if s.IsTerminal() {
		return &Rejection{
			Reason: ReasonTerminalState,
			Detail: fmt.Sprintf("order is %s and accepts no further transitions", s),
		}
	}
	if target == OrderStatusCancelled {
		return nil
	}
	cur := statusRank[s]
	tgt, ok := statusRank[target]
	if !ok || tgt <= cur {
		return &Rejection{
			Reason: ReasonBackwardTransition,
			Detail: fmt.Sprintf("cannot move order from %s to %s", s, target),
		}
	}
	return nil
}

type CustomerInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryCity    string `json:"delivery_city"`
	DeliveryZip     string `json:"delivery_zip"`
	Notes           string `json:"notes,omitempty"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Order is the immutable record produced by the checkout gate. Items
// and Total are frozen at creation; later cart or price changes never
// reach an existing order.
type Order struct {
	ID            uuid.UUID     `json:"id"`
	OrderNumber   string        `json:"order_number"`
	UserID        string        `json:"user_id"`
	Status        OrderStatus   `json:"status"`
	Items         []OrderItem   `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	DeliveryFee   float64       `json:"delivery_fee"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ReceiptRef    string        `json:"receipt_ref,omitempty"`
	Customer      CustomerInfo  `json:"customer"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Transition returns a copy of o moved to target, or the rejection that
// forbids the move. Only Status and UpdatedAt change; items, totals and
// payment method stay frozen.
func (o Order) Transition(target OrderStatus, now time.Time) (Order, error) {
	if err := o.Status.CanTransitionTo(target); err != nil {
		return o, err
	}
	o.Status = target
	o.UpdatedAt = now
	return o, nil
}

// IsCancellable reports the permissive cancellation window: open until
// the order is delivered or already cancelled. Callers narrow this
// further for customer-initiated cancels.
func (o Order) IsCancellable() bool {
	return !o.Status.IsTerminal()
}

// NewOrderNumber builds a human-facing order number, unique via a uuid
// fragment.
func NewOrderNumber(now time.Time) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), frag)
}
