package itineraryrepo

import (
	"context"
	"errors"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
)

var (
	ErrNotFound      = errors.New("itinerary record not found")
	ErrAlreadyExists = errors.New("itinerary record already exists")
)

type (
	StopOrder     = []itinerary.Placement[domain.StopID]
	ActivityOrder = []itinerary.Placement[domain.ActivityID]
)

// Records are the stored stops and activities of one trip, in no particular order.
type Records struct {
	Stops      []domain.Stop
	Activities []domain.Activity
}

// Repository persists the stops and activities of trips.
//
// Methods taking an order write the complete placement list of the affected
// collection atomically with the insert or delete, so stored positions stay
// dense and unique after every call.
type Repository interface {
	Load(ctx context.Context, tripID domain.TripID) (Records, error)

	InsertStop(ctx context.Context, s domain.Stop) error
	// DeleteStop removes the stop with its activities and rewrites the remaining stop positions.
	DeleteStop(ctx context.Context, tripID domain.TripID, stopID domain.StopID, order StopOrder) error
	SetStopOrder(ctx context.Context, tripID domain.TripID, order StopOrder) error

	InsertActivity(ctx context.Context, a domain.Activity) error
	DeleteActivity(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, order ActivityOrder) error
	SetActivityOrder(ctx context.Context, stopID domain.StopID, order ActivityOrder) error
	// SetActivityCompleted returns ErrNotFound when the activity is not part of the stop.
	SetActivityCompleted(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, completed bool) error

	DeleteByTrip(ctx context.Context, tripID domain.TripID) error
}
