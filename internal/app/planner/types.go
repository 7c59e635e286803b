package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// AddStopInput describes a new stop. When CityID is set, City and Country are
// taken from the destination catalogue. Zero dates count as missing.
type AddStopInput struct {
	CityID    *domain.CityID
	City      string
	Country   string
	StartDate time.Time
	EndDate   time.Time
	Notes     *string
}

// AddActivityInput describes a new activity. Time is "HH:MM". A nil Date places the
// activity on the first day of its stop.
type AddActivityInput struct {
	Title string
	Time  string
	Cost  decimal.Decimal
	Notes *string
	Date  *time.Time
}
