package travelers

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
)

type Service struct {
	repo travelerrepo.Repository
	clk  clockport.Clock

	newTravelerID func() domain.TravelerID
}

func NewService(repo travelerrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newTravelerID: func() domain.TravelerID {
			return domain.TravelerID(uuid.NewString())
		},
	}
}

// SetNewTravelerIDForTest overrides traveler ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTravelerIDForTest(fn func() domain.TravelerID) {
	if fn != nil {
		s.newTravelerID = fn
	}
}

func notProvisioned(status int) *Error {
	return &Error{
		Status:  status,
		Code:    "TRAVELER_NOT_PROVISIONED",
		Message: "No traveler profile exists for the authenticated subject.",
	}
}

// Resolve maps an authenticated subject to its traveler. Endpoints that act on
// trips call it first; an unknown subject is reported as 401.
func (s *Service) Resolve(ctx context.Context, subject domain.SubjectID) (domain.Traveler, error) {
	t, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, travelerrepo.ErrNotFound) {
			return domain.Traveler{}, notProvisioned(401)
		}
		return domain.Traveler{}, err
	}
	return toDomain(t), nil
}

func (s *Service) GetMyProfile(ctx context.Context, subject domain.SubjectID) (domain.Traveler, error) {
	t, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, travelerrepo.ErrNotFound) {
			return domain.Traveler{}, notProvisioned(404)
		}
		return domain.Traveler{}, err
	}
	return toDomain(t), nil
}

func (s *Service) CreateMyProfile(ctx context.Context, subject domain.SubjectID, in CreateMyProfileInput) (domain.Traveler, error) {
	if _, err := s.repo.GetBySubject(ctx, subject); err == nil {
		return domain.Traveler{}, alreadyExists()
	} else if !errors.Is(err, travelerrepo.ErrNotFound) {
		return domain.Traveler{}, err
	}

	displayName := domain.NormalizeHumanName(in.DisplayName)
	if displayName == "" {
		return domain.Traveler{}, validation("displayName", "must be non-empty")
	}
	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		return domain.Traveler{}, validation("email", err.Error())
	}
	var avatar *string
	if in.AvatarURL != nil {
		v := strings.TrimSpace(*in.AvatarURL)
		if err := validateAvatarURL(v); err != nil {
			return domain.Traveler{}, validation("avatarUrl", err.Error())
		}
		avatar = &v
	}

	now := s.clk.Now()
	t := travelerrepo.Traveler{
		ID:          s.newTravelerID(),
		Subject:     subject,
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   avatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, travelerrepo.ErrSubjectAlreadyBound) {
			return domain.Traveler{}, alreadyExists()
		}
		return domain.Traveler{}, err
	}
	return toDomain(t), nil
}

func (s *Service) UpdateMyProfile(ctx context.Context, subject domain.SubjectID, in UpdateMyProfileInput) (domain.Traveler, error) {
	t, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, travelerrepo.ErrNotFound) {
			return domain.Traveler{}, notProvisioned(404)
		}
		return domain.Traveler{}, err
	}

	if in.DisplayName.IsSpecified() {
		if in.DisplayName.IsNull() {
			return domain.Traveler{}, validation("displayName", "cannot be null")
		}
		displayName := domain.NormalizeHumanName(in.DisplayName.Value())
		if displayName == "" {
			return domain.Traveler{}, validation("displayName", "must be non-empty")
		}
		t.DisplayName = displayName
	}

	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return domain.Traveler{}, validation("email", "cannot be null")
		}
		email := strings.TrimSpace(in.Email.Value())
		if err := validateEmail(email); err != nil {
			return domain.Traveler{}, validation("email", err.Error())
		}
		t.Email = email
	}

	if in.AvatarURL.IsSpecified() {
		if in.AvatarURL.IsNull() {
			t.AvatarURL = nil
		} else {
			v := strings.TrimSpace(in.AvatarURL.Value())
			if err := validateAvatarURL(v); err != nil {
				return domain.Traveler{}, validation("avatarUrl", err.Error())
			}
			t.AvatarURL = &v
		}
	}

	t.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return domain.Traveler{}, err
	}
	return toDomain(t), nil
}

func alreadyExists() *Error {
	return &Error{
		Status:  409,
		Code:    "TRAVELER_ALREADY_EXISTS",
		Message: "A traveler profile already exists for the authenticated subject.",
	}
}

func validation(field, reason string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: reason},
	}
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	// Reject "Name <email@x>" forms.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func validateAvatarURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func toDomain(t travelerrepo.Traveler) domain.Traveler {
	return domain.Traveler{
		ID:          t.ID,
		Subject:     t.Subject,
		DisplayName: t.DisplayName,
		Email:       t.Email,
		AvatarURL:   cloneStringPtr(t.AvatarURL),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
