package trips

import (
	"time"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// CreateTripInput carries a new trip. Zero dates count as missing.
type CreateTripInput struct {
	Name        string
	Description *string
	StartDate   time.Time
	EndDate     time.Time
	CoverImage  *string
	IsPublic    bool
}

// TripCreated is the minimal response returned when a trip is created.
type TripCreated struct {
	ID        domain.TripID
	IsPublic  bool
	ShareCode *string
}

type UpdateTripInput struct {
	// Name and the dates are optional and cannot be null.
	Name      Optional[string]
	StartDate Optional[time.Time]
	EndDate   Optional[time.Time]

	Description Optional[string]
	CoverImage  Optional[string]
}

// ShareLinks are the public link of a trip and ready-made social share intents for it.
type ShareLinks struct {
	URL      string
	Twitter  string
	Facebook string
	WhatsApp string
}

// SharedTrip is the read-only view served to anyone holding a share code.
type SharedTrip struct {
	Trip      domain.Trip
	OwnerName string
	Itinerary *itinerary.Itinerary
	Budget    itinerary.Summary
}
