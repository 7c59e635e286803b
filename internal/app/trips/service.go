package trips

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

const (
	shareText          = "Check out my travel itinerary on GlobeTrotter!"
	shareCodeLen       = 12
	shareCodeAttempts  = 3
	defaultPublicLimit = 50
)

type Service struct {
	trips       triprepo.Repository
	travelers   travelerrepo.Repository
	itineraries itineraryrepo.Repository
	packing     packingrepo.Repository
	clk         clockport.Clock

	newTripID    func() domain.TripID
	newShareCode func() string

	// Policy prices the itinerary of shared trips.
	Policy itinerary.Policy
	// ShareBaseURL prefixes share links, e.g. "https://globetrotter.app".
	ShareBaseURL string
	// PublicLimit bounds the public trip listing.
	PublicLimit int
}

func NewService(
	tripsRepo triprepo.Repository,
	travelersRepo travelerrepo.Repository,
	itineraryRepo itineraryrepo.Repository,
	packingRepo packingrepo.Repository,
	clk clockport.Clock,
) *Service {
	return &Service{
		trips:       tripsRepo,
		travelers:   travelersRepo,
		itineraries: itineraryRepo,
		packing:     packingRepo,
		clk:         clk,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
		newShareCode: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:shareCodeLen]
		},
		Policy:      itinerary.DefaultPolicy(),
		PublicLimit: defaultPublicLimit,
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

// SetNewShareCodeForTest overrides share code generation for deterministic tests.
func (s *Service) SetNewShareCodeForTest(fn func() string) {
	if fn != nil {
		s.newShareCode = fn
	}
}

func tripNotFound() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}

func validation(field, reason string) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid " + field, Details: map[string]any{field: reason}}
}

func (s *Service) CreateTrip(ctx context.Context, caller domain.TravelerID, in CreateTripInput) (TripCreated, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return TripCreated{}, validation("name", "must be non-empty")
	}
	if in.StartDate.IsZero() {
		return TripCreated{}, validation("startDate", "is required")
	}
	if in.EndDate.IsZero() {
		return TripCreated{}, validation("endDate", "is required")
	}
	if err := domain.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return TripCreated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be on or after startDate"}}
	}

	now := s.clk.Now()
	t := triprepo.Trip{
		ID:          s.newTripID(),
		OwnerID:     caller,
		Name:        name,
		Description: trimmedOrNil(in.Description),
		StartDate:   domain.DateOnly(in.StartDate),
		EndDate:     domain.DateOnly(in.EndDate),
		CoverImage:  trimmedOrNil(in.CoverImage),
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.IsPublic {
		code := s.newShareCode()
		t.ShareCode = &code
	}
	if err := s.trips.Create(ctx, t); err != nil {
		switch {
		case errors.Is(err, triprepo.ErrAlreadyExists):
			// UUID or share code collision; the client may resubmit.
			return TripCreated{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		case errors.Is(err, triprepo.ErrNotFound):
			return TripCreated{}, &Error{Status: 401, Code: "TRAVELER_NOT_PROVISIONED", Message: "No traveler profile exists for the authenticated subject."}
		}
		return TripCreated{}, err
	}
	return TripCreated{ID: t.ID, IsPublic: t.IsPublic, ShareCode: cloneStringPtr(t.ShareCode)}, nil
}

// GetTrip returns a trip owned by the caller or any public trip.
func (s *Service) GetTrip(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (domain.Trip, error) {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.OwnerID != caller && !t.IsPublic {
		return domain.Trip{}, tripNotFound()
	}
	return toDomain(t), nil
}

func (s *Service) ListMyTrips(ctx context.Context, caller domain.TravelerID) ([]domain.Trip, error) {
	ts, err := s.trips.ListByOwner(ctx, caller)
	if err != nil {
		return nil, err
	}
	return toDomainList(ts), nil
}

func (s *Service) ListPublicTrips(ctx context.Context) ([]domain.Trip, error) {
	ts, err := s.trips.ListPublic(ctx, s.PublicLimit)
	if err != nil {
		return nil, err
	}
	return toDomainList(ts), nil
}

func (s *Service) UpdateTrip(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, in UpdateTripInput) (domain.Trip, error) {
	t, err := s.loadOwned(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, err
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.Trip{}, validation("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return domain.Trip{}, validation("name", "must be non-empty")
		}
		t.Name = name
	}
	if in.StartDate.IsSpecified() {
		if in.StartDate.IsNull() {
			return domain.Trip{}, validation("startDate", "cannot be null")
		}
		t.StartDate = domain.DateOnly(in.StartDate.Value())
	}
	if in.EndDate.IsSpecified() {
		if in.EndDate.IsNull() {
			return domain.Trip{}, validation("endDate", "cannot be null")
		}
		t.EndDate = domain.DateOnly(in.EndDate.Value())
	}
	if err := domain.ValidateDateRange(t.StartDate, t.EndDate); err != nil {
		return domain.Trip{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be on or after startDate"}}
	}

	applyNullableString := func(dst **string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = nil
			return
		}
		v := o.Value()
		*dst = trimmedOrNil(&v)
	}
	applyNullableString(&t.Description, in.Description)
	applyNullableString(&t.CoverImage, in.CoverImage)

	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, tripNotFound()
		}
		return domain.Trip{}, err
	}
	return toDomain(t), nil
}

// DeleteTrip removes the trip with its stops, activities and packing list.
func (s *Service) DeleteTrip(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) error {
	if _, err := s.loadOwned(ctx, caller, tripID); err != nil {
		return err
	}
	// The trip row goes first: stop inserts check for it, so none can land after
	// the itinerary is cleared.
	if err := s.trips.Delete(ctx, tripID); err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return tripNotFound()
		}
		return err
	}
	if err := s.itineraries.DeleteByTrip(ctx, tripID); err != nil {
		return err
	}
	return s.packing.DeleteByTrip(ctx, tripID)
}

// SetTripVisibility publishes or hides a trip. The share code is minted on first
// publication and kept afterwards, so links survive toggling.
func (s *Service) SetTripVisibility(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, public bool) (domain.Trip, error) {
	t, err := s.loadOwned(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.IsPublic == public && (!public || t.ShareCode != nil) {
		return toDomain(t), nil
	}
	t.IsPublic = public
	t.UpdatedAt = s.clk.Now()

	mint := public && t.ShareCode == nil
	for attempt := 0; ; attempt++ {
		if mint {
			code := s.newShareCode()
			t.ShareCode = &code
		}
		err := s.trips.Save(ctx, t)
		if err == nil {
			return toDomain(t), nil
		}
		if !mint || !errors.Is(err, triprepo.ErrAlreadyExists) || attempt+1 >= shareCodeAttempts {
			if errors.Is(err, triprepo.ErrNotFound) {
				return domain.Trip{}, tripNotFound()
			}
			return domain.Trip{}, err
		}
	}
}

func (s *Service) ShareLinks(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (ShareLinks, error) {
	t, err := s.loadOwned(ctx, caller, tripID)
	if err != nil {
		return ShareLinks{}, err
	}
	if !t.IsPublic || t.ShareCode == nil {
		return ShareLinks{}, &Error{Status: 409, Code: "TRIP_NOT_PUBLIC", Message: "trip must be public to be shared"}
	}
	return buildShareLinks(s.ShareBaseURL, *t.ShareCode), nil
}

func buildShareLinks(baseURL, code string) ShareLinks {
	link := strings.TrimRight(baseURL, "/") + "/shared/" + url.PathEscape(code)
	return ShareLinks{
		URL:      link,
		Twitter:  "https://twitter.com/intent/tweet?" + url.Values{"text": {shareText}, "url": {link}}.Encode(),
		Facebook: "https://www.facebook.com/sharer/sharer.php?" + url.Values{"u": {link}}.Encode(),
		WhatsApp: "https://wa.me/?" + url.Values{"text": {shareText + " " + link}}.Encode(),
	}
}

// GetSharedTrip serves a public trip to anyone holding its share code.
func (s *Service) GetSharedTrip(ctx context.Context, code string) (SharedTrip, error) {
	code = strings.TrimSpace(code)
	notFound := &Error{Status: 404, Code: "SHARED_TRIP_NOT_FOUND", Message: "shared trip not found"}
	if code == "" {
		return SharedTrip{}, notFound
	}
	t, err := s.trips.GetByShareCode(ctx, code)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return SharedTrip{}, notFound
		}
		return SharedTrip{}, err
	}
	if !t.IsPublic {
		return SharedTrip{}, notFound
	}

	var (
		owner travelerrepo.Traveler
		recs  itineraryrepo.Records
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = s.travelers.GetByID(gctx, t.OwnerID)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.itineraries.Load(gctx, t.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return SharedTrip{}, err
	}

	it := itinerary.FromRecords(t.ID, recs.Stops, recs.Activities)
	return SharedTrip{
		Trip:      toDomain(t),
		OwnerName: owner.DisplayName,
		Itinerary: it,
		Budget:    itinerary.Summarize(it, s.Policy),
	}, nil
}

func (s *Service) load(ctx context.Context, tripID domain.TripID) (triprepo.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return triprepo.Trip{}, tripNotFound()
		}
		return triprepo.Trip{}, err
	}
	return t, nil
}

// loadOwned returns 404 for trips of other travelers so existence does not leak.
func (s *Service) loadOwned(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (triprepo.Trip, error) {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return triprepo.Trip{}, err
	}
	if t.OwnerID != caller {
		return triprepo.Trip{}, tripNotFound()
	}
	return t, nil
}

func toDomain(t triprepo.Trip) domain.Trip {
	return domain.Trip{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Name:        t.Name,
		Description: cloneStringPtr(t.Description),
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		CoverImage:  cloneStringPtr(t.CoverImage),
		IsPublic:    t.IsPublic,
		ShareCode:   cloneStringPtr(t.ShareCode),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toDomainList(ts []triprepo.Trip) []domain.Trip {
	out := make([]domain.Trip, 0, len(ts))
	for _, t := range ts {
		out = append(out, toDomain(t))
	}
	return out
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
