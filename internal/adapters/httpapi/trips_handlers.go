package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	"github.com/globetrotter/trip-planner-api/internal/domain"
)

func tripIDParam(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripId"))
}

func (s *Server) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	ts, err := s.Trips.ListMyTrips(r.Context(), me)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripListResponse{Trips: tripsFromDomain(ts)})
}

func (s *Server) ListPublicTrips(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Trips.ListPublicTrips(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripListResponse{Trips: tripsFromDomain(ts)})
}

// CreateTrip honours an optional Idempotency-Key so that clients can resubmit safely.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	sub, _ := SubjectFromContext(r.Context())
	var body CreateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	canon := body
	canon.Name = domain.NormalizeHumanName(canon.Name)

	s.idempotent(w, r, idempotentRequest{
		Key:       r.Header.Get(idempotencyKeyHeader),
		Subject:   domain.SubjectID(sub),
		Route:     "/trips",
		Canonical: canon,
		Status:    http.StatusCreated,
	}, func() (any, error) {
		created, err := s.Trips.CreateTrip(r.Context(), me, trips.CreateTripInput{
			Name:        body.Name,
			Description: body.Description,
			StartDate:   dateOrZero(body.StartDate),
			EndDate:     dateOrZero(body.EndDate),
			CoverImage:  body.CoverImage,
			IsPublic:    body.IsPublic,
		})
		if err != nil {
			return nil, err
		}
		return CreateTripResponse{
			TripID:    string(created.ID),
			IsPublic:  created.IsPublic,
			ShareCode: created.ShareCode,
		}, nil
	})
}

func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.GetTrip(r.Context(), me, tripIDParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := s.Trips.UpdateTrip(r.Context(), me, tripIDParam(r), trips.UpdateTripInput{
		Name:        tripOptional(body.Name),
		StartDate:   tripDateOptional(body.StartDate),
		EndDate:     tripDateOptional(body.EndDate),
		Description: tripOptional(body.Description),
		CoverImage:  tripOptional(body.CoverImage),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	if err := s.Trips.DeleteTrip(r.Context(), me, tripIDParam(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SetTripVisibility(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	var body VisibilityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.IsPublic == nil {
		validationError(w, r, "isPublic", "required")
		return
	}
	t, err := s.Trips.SetTripVisibility(r.Context(), me, tripIDParam(r), *body.IsPublic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) GetShareLinks(w http.ResponseWriter, r *http.Request) {
	me, ok := s.caller(w, r)
	if !ok {
		return
	}
	links, err := s.Trips.ShareLinks(r.Context(), me, tripIDParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shareLinksFromApp(links))
}

// GetSharedTrip serves the read-only public view and is reachable without authentication.
func (s *Server) GetSharedTrip(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "shareCode"))
	shared, err := s.Trips.GetSharedTrip(r.Context(), code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SharedTripResponse{
		Trip:      tripFromDomain(shared.Trip),
		OwnerName: shared.OwnerName,
		Itinerary: itineraryFromDomain(shared.Itinerary),
		Budget:    budgetFromSummary(shared.Budget),
	})
}

func dateOrZero(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func datePtr(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func tripOptional(n nullable.Nullable[string]) trips.Optional[string] {
	if !n.IsSpecified() {
		return trips.Unspecified[string]()
	}
	if n.IsNull() {
		return trips.Null[string]()
	}
	v, _ := n.Get()
	return trips.Some(v)
}

func tripDateOptional(n nullable.Nullable[openapi_types.Date]) trips.Optional[time.Time] {
	if !n.IsSpecified() {
		return trips.Unspecified[time.Time]()
	}
	if n.IsNull() {
		return trips.Null[time.Time]()
	}
	v, _ := n.Get()
	return trips.Some(v.Time)
}
