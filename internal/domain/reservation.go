package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// DailyReservationCap is how many non-cancelled reservations a user may
// hold per calendar date.
const DailyReservationCap = 2

const (
	MinGuests = 1
	MaxGuests = 10
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	UserID          string            `json:"user_id"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Guests          int               `json:"guests"`
	Status          ReservationStatus `json:"status"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// AdmitRequest is a reservation attempt before persistence. Date is a
// calendar day (2006-01-02), Time a wall-clock slot (15:04), both in
// the caller's reference timezone.
type AdmitRequest struct {
	UserID          string
	Date            string
	Time            string
	Guests          int
	SpecialRequests string
}

// AdmitReservation checks req against activeCount, the number of
// non-cancelled reservations the user already holds on the requested
// date, at wall-clock time now. Rules run in order; the first failure
// wins. Admission has no side effect — the caller persists the
// reservation and the next admission recomputes the count from the
// store.
func AdmitReservation(req AdmitRequest, activeCount int, now time.Time) error {
	if req.Guests < MinGuests || req.Guests > MaxGuests {
		return &Rejection{
			Reason: ReasonInvalidQuantity,
			Detail: fmt.Sprintf("guests must be between %d and %d, got %d", MinGuests, MaxGuests, req.Guests),
		}
	}

	day, err := time.ParseInLocation(dateLayout, req.Date, now.Location())
	if err != nil {
		return &Rejection{
			Reason: ReasonMissingField,
			Detail: "date must be in YYYY-MM-DD format",
		}
	}
	slot, err := time.Parse(timeLayout, req.Time)
	if err != nil {
		return &Rejection{
			Reason: ReasonMissingField,
			Detail: "time must be in HH:MM format",
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return &Rejection{
			Reason: ReasonPastDate,
			Detail: fmt.Sprintf("reservation date %s is in the past", req.Date),
		}
	}

	// Only a same-day reservation needs a time-of-day check.
	if day.Equal(today) {
		at := time.Date(now.Year(), now.Month(), now.Day(), slot.Hour(), slot.Minute(), 0, 0, now.Location())
		if !at.After(now) {
			return &Rejection{
				Reason: ReasonPastTime,
				Detail: fmt.Sprintf("reservation time %s has already passed today", req.Time),
			}
		}
	}

	if activeCount >= DailyReservationCap {
		return &Rejection{
			Reason: ReasonDailyCapacityReached,
			Detail: fmt.Sprintf("you already have %d reservation(s) on %s; the limit is %d per day", activeCount, req.Date, DailyReservationCap),
			Count:  activeCount,
		}
	}
	return nil
}
