package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CheckoutPayload is what the client submits to turn a cart into an
// order. It is validated once and never mutated afterwards.
type CheckoutPayload struct {
	UserID          string
	CustomerName    string
	Email           string
	Phone           string
	DeliveryAddress string
	DeliveryCity    string
	DeliveryZip     string
	PaymentMethod   PaymentMethod
	Notes           string

	// ReceiptRef is an opaque reference to an uploaded proof of payment.
	// Required for wallet and bank transfer payments.
	ReceiptRef string
}

// GateOutcome is the accepted result of the checkout gate: a pending
// order plus the payment substitution, if one happened.
type GateOutcome struct {
	Order        Order
	Substitution *PaymentSubstitution
}

// ValidateCheckout decides whether payload may become an order against
// the given cart. Rules, in order: required fields, payment-method
// gating by order value (cash above CashLimit is re-mapped to a digital
// wallet rather than refused), receipt requirement on the resolved
// method. Acceptance builds a pending Order with a deep snapshot of the
// cart items.
func ValidateCheckout(p CheckoutPayload, cart *Cart, deliveryFee float64, now time.Time) (*GateOutcome, error) {
	required := []struct {
		field, value string
	}{
		{"customer_name", p.CustomerName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"delivery_address", p.DeliveryAddress},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &Rejection{
				Reason: ReasonMissingField,
				Detail: f.field + " is required",
			}
		}
	}
	if !p.PaymentMethod.Valid() {
		return nil, &Rejection{
			Reason: ReasonMissingField,
			Detail: "payment_method must be one of cash, digital_wallet, bank_transfer",
		}
	}

	total := cart.Total(deliveryFee)

	method := p.PaymentMethod
	var sub *PaymentSubstitution
	if method == PaymentCash && total > CashLimit {
		sub = &PaymentSubstitution{From: PaymentCash, To: PaymentDigitalWallet}
		method = PaymentDigitalWallet
	}

	// The receipt rule applies to the resolved method, so a substituted
	// checkout can still fail here. The rejection keeps the substitution
	// so the caller can tell the user both things.
	if method.RequiresReceipt() && strings.TrimSpace(p.ReceiptRef) == "" {
		return nil, &Rejection{
			Reason:       ReasonReceiptRequired,
			Detail:       method.String() + " payments require a payment receipt",
			Substitution: sub,
		}
	}

	order := Order{
		ID:            uuid.New(),
		OrderNumber:   NewOrderNumber(now),
		UserID:        p.UserID,
		Status:        OrderStatusPending,
		Items:         snapshotItems(cart.Items),
		Subtotal:      cart.Subtotal(),
		DeliveryFee:   deliveryFee,
		Total:         total,
		PaymentMethod: method,
		ReceiptRef:    p.ReceiptRef,
		Customer: CustomerInfo{
			Name:            p.CustomerName,
			Email:           p.Email,
			Phone:           p.Phone,
			DeliveryAddress: p.DeliveryAddress,
			DeliveryCity:    p.DeliveryCity,
			DeliveryZip:     p.DeliveryZip,
			Notes:           p.Notes,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return &GateOutcome{Order: order, Substitution: sub}, nil
}

// snapshotItems deep-copies the cart lines so later cart mutations can
// never retroactively alter a created order.
func snapshotItems(items []CartItem) []OrderItem {
	snapshot := make([]OrderItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return snapshot
}
