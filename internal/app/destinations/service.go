package destinations

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	maxQueryLen  = 100
)

// Service exposes the destination catalogue for exploring cities.
type Service struct {
	cities cityrepo.Repository
}

func NewService(cities cityrepo.Repository) *Service {
	return &Service{cities: cities}
}

// Search matches query as a case-insensitive substring of city names.
// A limit of zero selects DefaultLimit.
func (s *Service) Search(ctx context.Context, query, country string, limit int) ([]domain.City, error) {
	if utf8.RuneCountInString(query) > maxQueryLen {
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid search query", Details: map[string]any{"q": "must be at most 100 characters"}}
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 0 || limit > MaxLimit:
		return nil, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid limit", Details: map[string]any{"limit": "must be between 1 and 100"}}
	}
	return s.cities.Search(ctx, cityrepo.SearchFilter{Query: query, Country: country, Limit: limit})
}

func (s *Service) GetCity(ctx context.Context, id domain.CityID) (domain.City, error) {
	c, err := s.cities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, cityrepo.ErrNotFound) {
			return domain.City{}, &Error{Status: 404, Code: "CITY_NOT_FOUND", Message: "city not found"}
		}
		return domain.City{}, err
	}
	return c, nil
}
