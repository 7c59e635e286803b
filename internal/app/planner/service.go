package planner

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

// Service runs itinerary use-cases: every mutation loads the trip's itinerary,
// applies the change to the in-memory model and writes the resulting positions back.
type Service struct {
	trips  triprepo.Repository
	repo   itineraryrepo.Repository
	cities cityrepo.Repository
	clk    clockport.Clock
	locks  *tripLocks

	newStopID     func() domain.StopID
	newActivityID func() domain.ActivityID

	// Policy prices budgets returned by GetBudget.
	Policy itinerary.Policy
}

func NewService(tripsRepo triprepo.Repository, itineraryRepo itineraryrepo.Repository, citiesRepo cityrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		trips:  tripsRepo,
		repo:   itineraryRepo,
		cities: citiesRepo,
		clk:    clk,
		locks:  newTripLocks(),
		newStopID: func() domain.StopID {
			return domain.StopID(uuid.NewString())
		},
		newActivityID: func() domain.ActivityID {
			return domain.ActivityID(uuid.NewString())
		},
		Policy: itinerary.DefaultPolicy(),
	}
}

// SetNewIDsForTest overrides stop and activity ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewIDsForTest(stopID func() domain.StopID, activityID func() domain.ActivityID) {
	if stopID != nil {
		s.newStopID = stopID
	}
	if activityID != nil {
		s.newActivityID = activityID
	}
}

func tripNotFound() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}

func stopNotFound() *Error {
	return &Error{Status: 404, Code: "STOP_NOT_FOUND", Message: "stop not found"}
}

func activityNotFound() *Error {
	return &Error{Status: 404, Code: "ACTIVITY_NOT_FOUND", Message: "activity not found"}
}

func validation(field, reason string) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid " + field, Details: map[string]any{field: reason}}
}

// GetItinerary returns the ordered stops and activities of a trip the caller owns
// or that is public.
func (s *Service) GetItinerary(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (*itinerary.Itinerary, error) {
	if err := s.authorize(ctx, caller, tripID, false); err != nil {
		return nil, err
	}
	return s.load(ctx, tripID)
}

// GetBudget summarizes the itinerary against the configured policy.
func (s *Service) GetBudget(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (itinerary.Summary, error) {
	it, err := s.GetItinerary(ctx, caller, tripID)
	if err != nil {
		return itinerary.Summary{}, err
	}
	return itinerary.Summarize(it, s.Policy), nil
}

// GetTimeline groups the itinerary by calendar day, numbering days from the trip's start.
func (s *Service) GetTimeline(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) ([]itinerary.TimelineDay, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return nil, tripNotFound()
		}
		return nil, err
	}
	if t.OwnerID != caller && !t.IsPublic {
		return nil, tripNotFound()
	}
	it, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return it.Timeline(t.StartDate), nil
}

func (s *Service) AddStop(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, in AddStopInput) (domain.Stop, error) {
	stop, err := s.validateStop(ctx, in)
	if err != nil {
		return domain.Stop{}, err
	}

	var added domain.Stop
	err = s.mutate(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		stop.ID = s.newStopID()
		stop.CreatedAt = s.clk.Now()
		added = it.AddStop(stop)
		if err := s.repo.InsertStop(ctx, added); err != nil {
			if errors.Is(err, itineraryrepo.ErrNotFound) {
				return tripNotFound()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Stop{}, err
	}
	return added, nil
}

// RemoveStop deletes a stop with its activities. Unknown stops are a no-op.
func (s *Service) RemoveStop(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.RemoveStop(stopID) {
			return nil
		}
		return s.repo.DeleteStop(ctx, tripID, stopID, it.StopPlacements())
	})
}

// ReorderStop moves a stop to index, clamped to the valid range.
func (s *Service) ReorderStop(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, index int) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.ReorderStop(stopID, index) {
			return nil
		}
		return s.repo.SetStopOrder(ctx, tripID, it.StopPlacements())
	})
}

// MoveStop applies a drag gesture given as indices. A nil to means the gesture
// ended outside any target and is discarded.
func (s *Service) MoveStop(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, from int, to *int) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if to == nil || !it.MoveStop(from, *to) {
			return nil
		}
		return s.repo.SetStopOrder(ctx, tripID, it.StopPlacements())
	})
}

// DropStop applies a drag gesture given as the dragged stop and the stop it was released over.
func (s *Service) DropStop(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, active domain.StopID, over *domain.StopID) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.DropStop(active, over) {
			return nil
		}
		return s.repo.SetStopOrder(ctx, tripID, it.StopPlacements())
	})
}

func (s *Service) AddActivity(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, in AddActivityInput) (domain.Activity, error) {
	activity, err := validateActivity(in)
	if err != nil {
		return domain.Activity{}, err
	}

	var added domain.Activity
	err = s.mutate(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		activity.ID = s.newActivityID()
		activity.CreatedAt = s.clk.Now()
		a, err := it.AddActivity(stopID, activity)
		if err != nil {
			if errors.Is(err, itinerary.ErrStopNotFound) {
				return stopNotFound()
			}
			return err
		}
		added = a
		return s.repo.InsertActivity(ctx, added)
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return added, nil
}

// SetActivityCompleted checks an activity off, or back on. Setting the current value
// again succeeds without a write.
func (s *Service) SetActivityCompleted(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, activityID domain.ActivityID, completed bool) (domain.Activity, error) {
	var updated domain.Activity
	err := s.mutate(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if _, ok := it.Stop(stopID); !ok {
			return stopNotFound()
		}
		cur, ok := it.Activity(stopID, activityID)
		if !ok {
			return activityNotFound()
		}
		if cur.Completed == completed {
			updated = cur
			return nil
		}
		updated, _ = it.SetActivityCompleted(stopID, activityID, completed)
		return s.repo.SetActivityCompleted(ctx, stopID, activityID, completed)
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return updated, nil
}

// RemoveActivity deletes an activity. Unknown stops or activities are a no-op.
func (s *Service) RemoveActivity(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, activityID domain.ActivityID) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.RemoveActivity(stopID, activityID) {
			return nil
		}
		return s.repo.DeleteActivity(ctx, stopID, activityID, it.ActivityPlacements(stopID))
	})
}

func (s *Service) ReorderActivity(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, activityID domain.ActivityID, index int) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.ReorderActivity(stopID, activityID, index) {
			return nil
		}
		return s.repo.SetActivityOrder(ctx, stopID, it.ActivityPlacements(stopID))
	})
}

func (s *Service) MoveActivity(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, from int, to *int) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if to == nil || !it.MoveActivity(stopID, from, *to) {
			return nil
		}
		return s.repo.SetActivityOrder(ctx, stopID, it.ActivityPlacements(stopID))
	})
}

func (s *Service) DropActivity(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, stopID domain.StopID, active domain.ActivityID, over *domain.ActivityID) (*itinerary.Itinerary, error) {
	return s.mutateAndReturn(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		if !it.DropActivity(stopID, active, over) {
			return nil
		}
		return s.repo.SetActivityOrder(ctx, stopID, it.ActivityPlacements(stopID))
	})
}

func (s *Service) mutateAndReturn(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, fn func(it *itinerary.Itinerary) error) (*itinerary.Itinerary, error) {
	var out *itinerary.Itinerary
	err := s.mutate(ctx, caller, tripID, func(it *itinerary.Itinerary) error {
		out = it
		return fn(it)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate runs fn against a freshly loaded itinerary while holding the trip's lock.
func (s *Service) mutate(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, fn func(it *itinerary.Itinerary) error) error {
	if err := s.authorize(ctx, caller, tripID, true); err != nil {
		return err
	}
	unlock := s.locks.lock(tripID)
	defer unlock()

	it, err := s.load(ctx, tripID)
	if err != nil {
		return err
	}
	if err := fn(it); err != nil {
		var ae *Error
		if errors.As(err, &ae) {
			return ae
		}
		if errors.Is(err, itineraryrepo.ErrNotFound) || errors.Is(err, itineraryrepo.ErrAlreadyExists) {
			return &Error{Status: 409, Code: "ITINERARY_CONFLICT", Message: "the itinerary changed concurrently; reload and retry"}
		}
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context, tripID domain.TripID) (*itinerary.Itinerary, error) {
	recs, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return itinerary.FromRecords(tripID, recs.Stops, recs.Activities), nil
}

// authorize hides trips of other travelers behind 404. Public trips are readable by anyone.
func (s *Service) authorize(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, write bool) error {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return tripNotFound()
		}
		return err
	}
	if t.OwnerID == caller || (!write && t.IsPublic) {
		return nil
	}
	return tripNotFound()
}

func (s *Service) validateStop(ctx context.Context, in AddStopInput) (domain.Stop, error) {
	stop := domain.Stop{
		StartDate: domain.DateOnly(in.StartDate),
		EndDate:   domain.DateOnly(in.EndDate),
		Notes:     trimmedOrNil(in.Notes),
	}
	if in.CityID != nil {
		c, err := s.cities.GetByID(ctx, *in.CityID)
		if err != nil {
			if errors.Is(err, cityrepo.ErrNotFound) {
				return domain.Stop{}, validation("cityId", "unknown city")
			}
			return domain.Stop{}, err
		}
		id := c.ID
		stop.CityID = &id
		stop.City = c.Name
		stop.Country = c.Country
	} else {
		stop.City = domain.NormalizeHumanName(in.City)
		stop.Country = domain.NormalizeHumanName(in.Country)
		if stop.City == "" {
			return domain.Stop{}, validation("city", "must be non-empty")
		}
	}
	if in.StartDate.IsZero() {
		return domain.Stop{}, validation("startDate", "is required")
	}
	if in.EndDate.IsZero() {
		return domain.Stop{}, validation("endDate", "is required")
	}
	if err := domain.ValidateDateRange(stop.StartDate, stop.EndDate); err != nil {
		return domain.Stop{}, validation("endDate", "must be on or after startDate")
	}
	return stop, nil
}

func validateActivity(in AddActivityInput) (domain.Activity, error) {
	title := domain.NormalizeHumanName(in.Title)
	if title == "" {
		return domain.Activity{}, validation("title", "must be non-empty")
	}
	if strings.TrimSpace(in.Time) == "" {
		return domain.Activity{}, validation("time", "is required")
	}
	tod, err := domain.ParseTimeOfDay(in.Time)
	if err != nil {
		return domain.Activity{}, validation("time", "must be HH:MM")
	}
	if in.Cost.IsNegative() {
		return domain.Activity{}, validation("cost", "must be >= 0")
	}
	a := domain.Activity{
		Title: title,
		Time:  tod,
		Cost:  in.Cost,
		Notes: trimmedOrNil(in.Notes),
	}
	if in.Date != nil {
		d := domain.DateOnly(*in.Date)
		a.Date = &d
	}
	return a, nil
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
