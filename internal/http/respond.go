package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/savoria/storefront/internal/domain"
	"github.com/savoria/storefront/internal/repository"
	"github.com/savoria/storefront/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`

	// PaymentSubstitution is present when the checkout gate re-mapped
	// the payment method before refusing.
	PaymentSubstitution *domain.PaymentSubstitution `json:"payment_substitution,omitempty"`

	// Count is present on daily_capacity_reached rejections.
	Count *int `json:"count,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// respondDecision maps guard errors onto HTTP statuses. Malformed input
// is 400, unmet business preconditions 422, lost optimistic-concurrency
// races 409.
func respondDecision(w http.ResponseWriter, err error) {
	if rej, ok := domain.AsRejection(err); ok {
		resp := ErrorResponse{
			Error:   http.StatusText(rejectionStatus(rej.Reason)),
			Code:    string(rej.Reason),
			Details: rej.Detail,
		}
		if rej.Substitution != nil {
			resp.PaymentSubstitution = rej.Substitution
		}
		if rej.Reason == domain.ReasonDailyCapacityReached {
			count := rej.Count
			resp.Count = &count
		}
		respondJSON(w, rejectionStatus(rej.Reason), resp)
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, service.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "unknown_status", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, repository.ErrReservationNotFound):
		respondError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", "cart not found")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

func rejectionStatus(reason domain.Reason) int {
	switch reason {
	case domain.ReasonInvalidQuantity, domain.ReasonMissingField, domain.ReasonPastDate, domain.ReasonPastTime:
		return http.StatusBadRequest
	case domain.ReasonReceiptRequired, domain.ReasonTerminalState, domain.ReasonBackwardTransition, domain.ReasonDailyCapacityReached:
		return http.StatusUnprocessableEntity
	case domain.ReasonConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
