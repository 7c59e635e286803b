package triprepo

import (
	"context"
	"time"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID      domain.TripID
	OwnerID domain.TravelerID

	Name        string
	Description *string

	// StartDate and EndDate are calendar dates stored as UTC midnight.
	StartDate time.Time
	EndDate   time.Time

	CoverImage *string

	IsPublic bool
	// ShareCode is minted the first time a trip is made public and kept afterwards.
	ShareCode *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trips.
//
// Result ordering expectations:
// - ListByOwner orders by StartDate, then CreatedAt, then ID.
// - ListPublic orders by CreatedAt descending, then ID.
type Repository interface {
	Create(ctx context.Context, t Trip) error
	Save(ctx context.Context, t Trip) error
	Delete(ctx context.Context, id domain.TripID) error

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)
	GetByShareCode(ctx context.Context, code string) (Trip, error)

	ListByOwner(ctx context.Context, owner domain.TravelerID) ([]Trip, error)
	ListPublic(ctx context.Context, limit int) ([]Trip, error)
}
