package travelerrepo

import (
	"context"
	"time"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// Traveler is the persistence shape used by the traveler repository.
// It's used as an internal record, not an HTTP DTO.
type Traveler struct {
	ID      domain.TravelerID
	Subject domain.SubjectID

	DisplayName string
	Email       string
	// AvatarURL is optional; nil means unset.
	AvatarURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted travelers.
type Repository interface {
	Create(ctx context.Context, t Traveler) error
	Update(ctx context.Context, t Traveler) error

	GetByID(ctx context.Context, id domain.TravelerID) (Traveler, error)
	GetBySubject(ctx context.Context, subject domain.SubjectID) (Traveler, error)
}
