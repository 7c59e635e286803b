package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stop is a single city segment of a multi-city trip.
//
// Position is the zero-based rank of the stop within its trip.
type Stop struct {
	ID     StopID
	TripID TripID

	CityID  *CityID
	City    string
	Country string

	StartDate time.Time
	EndDate   time.Time
	Notes     *string

	Position int

	CreatedAt time.Time
}

func (s Stop) RecordID() StopID { return s.ID }

func (s Stop) WithPosition(p int) Stop {
	s.Position = p
	return s
}

// Nights is the number of nights spent at the stop.
func (s Stop) Nights() int {
	return DaysBetween(s.StartDate, s.EndDate)
}

// Activity is a single scheduled, costed item within a stop.
type Activity struct {
	ID     ActivityID
	StopID StopID

	Title string
	Time  TimeOfDay
	Cost  decimal.Decimal
	Notes *string

	// Date is the calendar day the activity is planned for. Nil means the first
	// day of its stop. It is not checked against the stop's dates.
	Date *time.Time

	Completed bool

	Position int

	CreatedAt time.Time
}

func (a Activity) RecordID() ActivityID { return a.ID }

func (a Activity) WithPosition(p int) Activity {
	a.Position = p
	return a
}

// Day is the calendar day the activity falls on: its Date when set, else the
// start of stop.
func (a Activity) Day(stop Stop) time.Time {
	if a.Date != nil {
		return DateOnly(*a.Date)
	}
	return DateOnly(stop.StartDate)
}
