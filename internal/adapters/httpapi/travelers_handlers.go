package httpapi

import (
	"net/http"
	"strings"

	"github.com/oapi-codegen/nullable"

	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/domain"
)

func (s *Server) CreateMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.subject(w, r)
	if !ok {
		return
	}
	var body CreateMyProfileRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := s.Travelers.CreateMyProfile(r.Context(), sub, travelers.CreateMyProfileInput{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		AvatarURL:   body.AvatarURL,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TravelerResponse{Traveler: travelerFromDomain(t)})
}

func (s *Server) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.subject(w, r)
	if !ok {
		return
	}
	t, err := s.Travelers.GetMyProfile(r.Context(), sub)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TravelerResponse{Traveler: travelerFromDomain(t)})
}

// UpdateMyProfile requires an Idempotency-Key; retries with the same key replay the first response.
func (s *Server) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.subject(w, r)
	if !ok {
		return
	}
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing Idempotency-Key header", nil)
		return
	}
	var body UpdateMyProfileRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	s.idempotent(w, r, idempotentRequest{
		Key:       key,
		Subject:   sub,
		Route:     "/travelers/me",
		Canonical: canonicalProfilePatch(body),
		Status:    http.StatusOK,
	}, func() (any, error) {
		t, err := s.Travelers.UpdateMyProfile(r.Context(), sub, travelers.UpdateMyProfileInput{
			DisplayName: travelerOptional(body.DisplayName),
			Email:       travelerOptional(body.Email),
			AvatarURL:   travelerOptional(body.AvatarURL),
		})
		if err != nil {
			return nil, err
		}
		return TravelerResponse{Traveler: travelerFromDomain(t)}, nil
	})
}

// canonicalProfilePatch normalizes fields whose whitespace does not change meaning,
// so that equivalent retries hash identically.
func canonicalProfilePatch(b UpdateMyProfileRequest) UpdateMyProfileRequest {
	canon := b
	if v, err := canon.DisplayName.Get(); err == nil {
		canon.DisplayName = nullable.NewNullableWithValue(domain.NormalizeHumanName(v))
	}
	if v, err := canon.Email.Get(); err == nil {
		canon.Email = nullable.NewNullableWithValue(strings.TrimSpace(v))
	}
	return canon
}

func travelerOptional(n nullable.Nullable[string]) travelers.Optional[string] {
	if !n.IsSpecified() {
		return travelers.Unspecified[string]()
	}
	if n.IsNull() {
		return travelers.Null[string]()
	}
	v, _ := n.Get()
	return travelers.Some(v)
}
