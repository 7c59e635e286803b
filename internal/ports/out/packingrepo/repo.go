package packingrepo

import (
	"context"
	"errors"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("packing item not found")
	ErrAlreadyExists = errors.New("packing item already exists")
)

type Repository interface {
	Create(ctx context.Context, item domain.PackingItem) error

	// Save overwrites an existing item using last-write-wins semantics.
	Save(ctx context.Context, item domain.PackingItem) error

	// Get returns the item of the given trip. If it does not exist, ErrNotFound is returned.
	Get(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) (domain.PackingItem, error)

	// ListByTrip returns the trip's items ordered by CreatedAt, then ID.
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.PackingItem, error)

	Delete(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) error
	DeleteByTrip(ctx context.Context, tripID domain.TripID) error
}
