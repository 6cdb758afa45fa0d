package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savoria/storefront/internal/domain"
)

type BookingAPI interface {
	Admit(ctx context.Context, req domain.AdmitRequest) (*domain.Reservation, error)
	ListReservations(ctx context.Context, userID string) ([]*domain.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID, userID string) error
}

type ReservationsHandler struct {
	bookings BookingAPI
	timeout  time.Duration
}

func NewReservationsHandler(bookings BookingAPI, timeout time.Duration) *ReservationsHandler {
	return &ReservationsHandler{
		bookings: bookings,
		timeout:  timeout,
	}
}

type CreateReservationRequestDTO struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

type ReservationResponseDTO struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	Status          string `json:"status"`
	SpecialRequests string `json:"special_requests,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func reservationResponse(res *domain.Reservation) ReservationResponseDTO {
	return ReservationResponseDTO{
		ID:              res.ID.String(),
		Date:            res.Date,
		Time:            res.Time,
		Guests:          res.Guests,
		Status:          string(res.Status),
		SpecialRequests: res.SpecialRequests,
		CreatedAt:       res.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/v1/reservations
func (h *ReservationsHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateReservationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.bookings.Admit(ctx, domain.AdmitRequest{
		UserID:          userID,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondDecision(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, reservationResponse(res))
}

// GET /api/v1/reservations
func (h *ReservationsHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	reservations, err := h.bookings.ListReservations(ctx, userID)
	if err != nil {
		respondDecision(w, err)
		return
	}

	dtos := make([]ReservationResponseDTO, 0, len(reservations))
	for _, res := range reservations {
		dtos = append(dtos, reservationResponse(res))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// POST /api/v1/reservations/{reservation_id}/cancel
func (h *ReservationsHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	reservationID, err := uuid.Parse(chi.URLParam(r, "reservation_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_reservation_id", "reservation_id must be a UUID")
		return
	}

	if err := h.bookings.Cancel(ctx, reservationID, userID); err != nil {
		respondDecision(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
