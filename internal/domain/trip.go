package domain

import (
	"errors"
	"time"
)

// ErrEndBeforeStart is returned when a date range ends before it starts.
var ErrEndBeforeStart = errors.New("end date must be on or after start date")

// Trip is the domain read model for a trip.
//
// StartDate and EndDate carry date-only semantics (UTC midnight).
type Trip struct {
	ID      TripID
	OwnerID TravelerID

	Name        string
	Description *string
	StartDate   time.Time
	EndDate     time.Time
	CoverImage  *string

	IsPublic  bool
	ShareCode *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDateRange reports ErrEndBeforeStart when end precedes start.
// Equal dates are valid (single-day trips and stops).
func ValidateDateRange(start, end time.Time) error {
	if DateOnly(end).Before(DateOnly(start)) {
		return ErrEndBeforeStart
	}
	return nil
}

// DaysBetween returns the number of whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}
