package itineraryrepo

import (
	"context"
	"errors"
	"sync"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

// Repo is an in-memory implementation of itineraryrepo.Repository.
// It is safe for concurrent use. Order writes are all-or-nothing.
type Repo struct {
	mu sync.RWMutex

	stops      map[domain.StopID]domain.Stop
	activities map[domain.ActivityID]domain.Activity

	// trips, when set, must know a stop's trip for InsertStop to accept it.
	trips triprepo.Repository
}

func NewRepo() *Repo {
	return &Repo{
		stops:      make(map[domain.StopID]domain.Stop),
		activities: make(map[domain.ActivityID]domain.Activity),
	}
}

// NewRepoWithTrips returns a repo that refuses stops of trips unknown to trips,
// the way the trip foreign key does in Postgres.
func NewRepoWithTrips(trips triprepo.Repository) *Repo {
	r := NewRepo()
	r.trips = trips
	return r
}

func (r *Repo) Load(ctx context.Context, tripID domain.TripID) (itineraryrepo.Records, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := itineraryrepo.Records{Stops: []domain.Stop{}, Activities: []domain.Activity{}}
	inTrip := make(map[domain.StopID]struct{})
	for id, s := range r.stops {
		if s.TripID == tripID {
			out.Stops = append(out.Stops, cloneStop(s))
			inTrip[id] = struct{}{}
		}
	}
	for _, a := range r.activities {
		if _, ok := inTrip[a.StopID]; ok {
			out.Activities = append(out.Activities, cloneActivity(a))
		}
	}
	return out, nil
}

func (r *Repo) InsertStop(ctx context.Context, s domain.Stop) error {
	if s.ID == "" {
		return itineraryrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trips != nil {
		// Checked under mu so a concurrent DeleteByTrip cannot run between check and insert.
		if _, err := r.trips.GetByID(ctx, s.TripID); err != nil {
			if errors.Is(err, triprepo.ErrNotFound) {
				return itineraryrepo.ErrNotFound
			}
			return err
		}
	}
	if _, ok := r.stops[s.ID]; ok {
		return itineraryrepo.ErrAlreadyExists
	}
	r.stops[s.ID] = cloneStop(s)
	return nil
}

func (r *Repo) DeleteStop(ctx context.Context, tripID domain.TripID, stopID domain.StopID, order itineraryrepo.StopOrder) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stops[stopID]
	if !ok || s.TripID != tripID {
		return itineraryrepo.ErrNotFound
	}
	if err := r.checkStopOrderLocked(tripID, order, stopID); err != nil {
		return err
	}
	delete(r.stops, stopID)
	for id, a := range r.activities {
		if a.StopID == stopID {
			delete(r.activities, id)
		}
	}
	r.applyStopOrderLocked(order)
	return nil
}

func (r *Repo) SetStopOrder(ctx context.Context, tripID domain.TripID, order itineraryrepo.StopOrder) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkStopOrderLocked(tripID, order, ""); err != nil {
		return err
	}
	r.applyStopOrderLocked(order)
	return nil
}

func (r *Repo) InsertActivity(ctx context.Context, a domain.Activity) error {
	_ = ctx
	if a.ID == "" {
		return itineraryrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stops[a.StopID]; !ok {
		return itineraryrepo.ErrNotFound
	}
	if _, ok := r.activities[a.ID]; ok {
		return itineraryrepo.ErrAlreadyExists
	}
	r.activities[a.ID] = cloneActivity(a)
	return nil
}

func (r *Repo) DeleteActivity(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, order itineraryrepo.ActivityOrder) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityID]
	if !ok || a.StopID != stopID {
		return itineraryrepo.ErrNotFound
	}
	if err := r.checkActivityOrderLocked(stopID, order, activityID); err != nil {
		return err
	}
	delete(r.activities, activityID)
	r.applyActivityOrderLocked(order)
	return nil
}

func (r *Repo) SetActivityOrder(ctx context.Context, stopID domain.StopID, order itineraryrepo.ActivityOrder) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkActivityOrderLocked(stopID, order, ""); err != nil {
		return err
	}
	r.applyActivityOrderLocked(order)
	return nil
}

func (r *Repo) SetActivityCompleted(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, completed bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[activityID]
	if !ok || a.StopID != stopID {
		return itineraryrepo.ErrNotFound
	}
	a.Completed = completed
	r.activities[activityID] = a
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stops {
		if s.TripID != tripID {
			continue
		}
		delete(r.stops, id)
		for aid, a := range r.activities {
			if a.StopID == id {
				delete(r.activities, aid)
			}
		}
	}
	return nil
}

func (r *Repo) checkStopOrderLocked(tripID domain.TripID, order itineraryrepo.StopOrder, excluded domain.StopID) error {
	for _, p := range order {
		s, ok := r.stops[p.ID]
		if !ok || s.TripID != tripID || p.ID == excluded {
			return itineraryrepo.ErrNotFound
		}
	}
	return nil
}

func (r *Repo) applyStopOrderLocked(order itineraryrepo.StopOrder) {
	for _, p := range order {
		s := r.stops[p.ID]
		s.Position = p.Position
		r.stops[p.ID] = s
	}
}

func (r *Repo) checkActivityOrderLocked(stopID domain.StopID, order itineraryrepo.ActivityOrder, excluded domain.ActivityID) error {
	for _, p := range order {
		a, ok := r.activities[p.ID]
		if !ok || a.StopID != stopID || p.ID == excluded {
			return itineraryrepo.ErrNotFound
		}
	}
	return nil
}

func (r *Repo) applyActivityOrderLocked(order itineraryrepo.ActivityOrder) {
	for _, p := range order {
		a := r.activities[p.ID]
		a.Position = p.Position
		r.activities[p.ID] = a
	}
}

func cloneStop(s domain.Stop) domain.Stop {
	cp := s
	if s.CityID != nil {
		v := *s.CityID
		cp.CityID = &v
	}
	cp.Notes = cloneStringPtr(s.Notes)
	return cp
}

func cloneActivity(a domain.Activity) domain.Activity {
	cp := a
	cp.Notes = cloneStringPtr(a.Notes)
	if a.Date != nil {
		d := *a.Date
		cp.Date = &d
	}
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
