package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transitionNow = time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

func orderAt(status OrderStatus) Order {
	created := transitionNow.Add(-time.Hour)
	return Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260831-AB12CD34",
		UserID:        "u1",
		Status:        status,
		Items:         []OrderItem{{ProductID: 1, Name: "Bistro Burger", UnitPrice: 250, Quantity: 2}},
		Subtotal:      500,
		Total:         500,
		PaymentMethod: PaymentCash,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestCanTransitionTo_ForwardOnly(t *testing.T) {
	forward := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusDelivered,
	}
	for i, from := range forward {
		for j, to := range forward {
			err := from.CanTransitionTo(to)
			switch {
			case from == OrderStatusDelivered:
				reason, ok := ReasonOf(err)
				require.True(t, ok, "%s -> %s", from, to)
				assert.Equal(t, ReasonTerminalState, reason, "%s -> %s", from, to)
			case j > i:
				assert.NoError(t, err, "%s -> %s", from, to)
			default:
				reason, ok := ReasonOf(err)
				require.True(t, ok, "%s -> %s", from, to)
				assert.Equal(t, ReasonBackwardTransition, reason, "%s -> %s", from, to)
			}
		}
	}
}

func TestCanTransitionTo_SkippingStagesIsLegal(t *testing.T) {
	assert.NoError(t, OrderStatusPending.CanTransitionTo(OrderStatusReady))
	assert.NoError(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusDelivered))
}

func TestCanTransitionTo_CancellationWindow(t *testing.T) {
	open := []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady}
	for _, from := range open {
		assert.NoError(t, from.CanTransitionTo(OrderStatusCancelled), "from %s", from)
	}

	for _, from := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		err := from.CanTransitionTo(OrderStatusCancelled)
		reason, ok := ReasonOf(err)
		require.True(t, ok, "from %s", from)
		assert.Equal(t, ReasonTerminalState, reason, "from %s", from)
	}
}

func TestCanTransitionTo_TerminalAbsorption(t *testing.T) {
	targets := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		for _, to := range targets {
			reason, ok := ReasonOf(terminal.CanTransitionTo(to))
			require.True(t, ok, "%s -> %s", terminal, to)
			assert.Equal(t, ReasonTerminalState, reason, "%s -> %s", terminal, to)
		}
	}
}

func TestCanTransitionTo_UnknownTargetRejected(t *testing.T) {
	reason, ok := ReasonOf(OrderStatusPending.CanTransitionTo("shipped"))
	require.True(t, ok)
	assert.Equal(t, ReasonBackwardTransition, reason)
}

func TestTransition_UpdatesOnlyStatusAndTimestamp(t *testing.T) {
	order := orderAt(OrderStatusConfirmed)

	updated, err := order.Transition(OrderStatusPreparing, transitionNow)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPreparing, updated.Status)
	assert.Equal(t, transitionNow, updated.UpdatedAt)
	assert.Equal(t, order.Items, updated.Items)
	assert.Equal(t, order.Total, updated.Total)
	assert.Equal(t, order.PaymentMethod, updated.PaymentMethod)
	assert.Equal(t, order.CreatedAt, updated.CreatedAt)

	// The original value is untouched; a refused transition has no effect.
	assert.Equal(t, OrderStatusConfirmed, order.Status)
}

func TestTransition_RejectionLeavesOrderUnchanged(t *testing.T) {
	order := orderAt(OrderStatusReady)

	same, err := order.Transition(OrderStatusPreparing, transitionNow)

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBackwardTransition, reason)
	assert.Equal(t, order, same)
}

// An order at preparing: backward to confirmed refused, cancel allowed,
// then ready allowed from a fresh preparing order.
func TestTransition_AdminSequenceFromPreparing(t *testing.T) {
	order := orderAt(OrderStatusPreparing)

	_, err := order.Transition(OrderStatusConfirmed, transitionNow)
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBackwardTransition, reason)

	cancelled, err := order.Transition(OrderStatusCancelled, transitionNow)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)

	ready, err := order.Transition(OrderStatusReady, transitionNow)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReady, ready.Status)
}

func TestIsCancellable(t *testing.T) {
	assert.True(t, orderAt(OrderStatusPending).IsCancellable())
	assert.True(t, orderAt(OrderStatusReady).IsCancellable())
	assert.False(t, orderAt(OrderStatusDelivered).IsCancellable())
	assert.False(t, orderAt(OrderStatusCancelled).IsCancellable())
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestNewOrderNumber_Format(t *testing.T) {
	n1 := NewOrderNumber(transitionNow)
	n2 := NewOrderNumber(transitionNow)

	assert.Contains(t, n1, "ORD-20260831-")
	assert.Len(t, n1, len("ORD-20060102-")+8)
	assert.NotEqual(t, n1, n2)
}
