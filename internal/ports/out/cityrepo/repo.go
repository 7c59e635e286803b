package cityrepo

import (
	"context"
	"errors"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

var ErrNotFound = errors.New("city not found")

// SearchFilter narrows a catalogue search. Query and Country are matched
// case-insensitively; empty values match everything.
type SearchFilter struct {
	// Query is a substring of the city name.
	Query   string
	Country string
	Limit   int
}

// Repository is the read side of the destination catalogue.
//
// Search results are ordered by Name, then ID.
type Repository interface {
	GetByID(ctx context.Context, id domain.CityID) (domain.City, error)
	Search(ctx context.Context, f SearchFilter) ([]domain.City, error)
}
