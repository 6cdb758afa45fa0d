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

// BookingService admits reservations against the per-user daily cap.
// The guard runs on a count read from the store, and the insert
// re-validates the cap so a concurrent admission cannot slip past it.
type BookingService struct {
	repo repository.ReservationRepository
	now  func() time.Time
}

func NewBookingService(repo repository.ReservationRepository) *BookingService {
	return &BookingService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *BookingService) Admit(ctx context.Context, req domain.AdmitRequest) (*domain.Reservation, error) {
	count, err := s.repo.CountActiveReservations(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	if err := domain.AdmitReservation(req, count, s.now()); err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		ID:              uuid.New(),
		UserID:          req.UserID,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		Status:          domain.ReservationStatusPending,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       s.now(),
	}

	err = s.repo.CreateReservation(ctx, res)
	if errors.Is(err, repository.ErrCapacityExceeded) {
		// Lost a race between the guard and the insert; re-read so the
		// rejection carries an accurate count.
		current, cerr := s.repo.CountActiveReservations(ctx, req.UserID, req.Date)
		if cerr != nil {
			current = domain.DailyReservationCap
		}
		return nil, &domain.Rejection{
			Reason: domain.ReasonDailyCapacityReached,
			Detail: fmt.Sprintf("you already have %d reservation(s) on %s; the limit is %d per day", current, req.Date, domain.DailyReservationCap),
			Count:  current,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	return res, nil
}

func (s *BookingService) ListReservations(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	return s.repo.ListReservationsByUserID(ctx, userID)
}

func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, userID string) error {
	return s.repo.CancelReservation(ctx, id, userID)
}
