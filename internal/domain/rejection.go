package domain

import (
	"errors"
	"fmt"
)

// Reason identifies why a guard refused a request. Values are stable and
// safe to expose over the wire.
type Reason string

const (
	ReasonInvalidQuantity      Reason = "invalid_quantity"
	ReasonMissingField         Reason = "missing_field"
	ReasonReceiptRequired      Reason = "receipt_required"
	ReasonTerminalState        Reason = "terminal_state"
	ReasonBackwardTransition   Reason = "backward_or_noop_transition"
	ReasonPastDate             Reason = "past_date"
	ReasonPastTime             Reason = "past_time"
	ReasonDailyCapacityReached Reason = "daily_capacity_reached"
	ReasonConflict             Reason = "conflict"
)

// Rejection is the typed refusal every guard in this package returns.
// Reason is machine readable, Detail can be shown to the user directly.
type Rejection struct {
	Reason Reason
	Detail string

	// Substitution is set when the checkout gate re-mapped the payment
	// method before refusing; the caller must still surface it.
	Substitution *PaymentSubstitution

	// Count carries the user's current reservation count on
	// daily_capacity_reached rejections.
	Count int
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

// ReasonOf extracts the rejection reason from err, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// AsRejection unwraps err into a *Rejection when possible.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
