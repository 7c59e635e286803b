package itinerary

import (
	"errors"
	"sort"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// ErrStopNotFound is returned when an activity targets a stop that is not part of the itinerary.
var ErrStopNotFound = errors.New("stop not found")

type (
	StopSequence     = Sequence[domain.StopID, domain.Stop]
	ActivitySequence = Sequence[domain.ActivityID, domain.Activity]
)

// Itinerary is the ordered stops of one trip, each owning its ordered activities.
type Itinerary struct {
	TripID domain.TripID

	stops      *StopSequence
	activities map[domain.StopID]*ActivitySequence
}

func New(tripID domain.TripID) *Itinerary {
	return &Itinerary{
		TripID:     tripID,
		stops:      NewSequence[domain.StopID, domain.Stop](),
		activities: map[domain.StopID]*ActivitySequence{},
	}
}

// FromRecords rebuilds an itinerary from stored rows. Rows are ordered by their stored
// position (ties broken by id) and positions are re-densified. Activities whose stop is
// not among stops are ignored.
func FromRecords(tripID domain.TripID, stops []domain.Stop, activities []domain.Activity) *Itinerary {
	ss := append([]domain.Stop(nil), stops...)
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Position != ss[j].Position {
			return ss[i].Position < ss[j].Position
		}
		return ss[i].ID < ss[j].ID
	})

	it := &Itinerary{
		TripID:     tripID,
		stops:      NewSequence[domain.StopID, domain.Stop](ss...),
		activities: make(map[domain.StopID]*ActivitySequence, len(ss)),
	}

	byStop := make(map[domain.StopID][]domain.Activity, len(ss))
	for _, a := range activities {
		byStop[a.StopID] = append(byStop[a.StopID], a)
	}
	for _, s := range ss {
		as := byStop[s.ID]
		sort.SliceStable(as, func(i, j int) bool {
			if as[i].Position != as[j].Position {
				return as[i].Position < as[j].Position
			}
			return as[i].ID < as[j].ID
		})
		it.activities[s.ID] = NewSequence[domain.ActivityID, domain.Activity](as...)
	}
	return it
}

// Stops returns the stops in itinerary order.
func (it *Itinerary) Stops() []domain.Stop { return it.stops.Items() }

func (it *Itinerary) Stop(id domain.StopID) (domain.Stop, bool) { return it.stops.Get(id) }

// Activities returns the activities of a stop in order; nil when the stop is unknown.
func (it *Itinerary) Activities(stopID domain.StopID) []domain.Activity {
	seq, ok := it.activities[stopID]
	if !ok {
		return nil
	}
	return seq.Items()
}

func (it *Itinerary) Activity(stopID domain.StopID, id domain.ActivityID) (domain.Activity, bool) {
	seq, ok := it.activities[stopID]
	if !ok {
		return domain.Activity{}, false
	}
	return seq.Get(id)
}

func (it *Itinerary) StopCount() int { return it.stops.Len() }

func (it *Itinerary) ActivityCount() int {
	n := 0
	for _, seq := range it.activities {
		n += seq.Len()
	}
	return n
}

// AddStop appends s as the last stop of the trip and returns it with its position.
func (it *Itinerary) AddStop(s domain.Stop) domain.Stop {
	s.TripID = it.TripID
	s = it.stops.Append(s)
	if _, ok := it.activities[s.ID]; !ok {
		it.activities[s.ID] = NewSequence[domain.ActivityID, domain.Activity]()
	}
	return s
}

// RemoveStop removes the stop together with its activities.
func (it *Itinerary) RemoveStop(id domain.StopID) bool {
	if !it.stops.Remove(id) {
		return false
	}
	delete(it.activities, id)
	return true
}

func (it *Itinerary) ReorderStop(id domain.StopID, newIndex int) bool {
	return it.stops.Reorder(id, newIndex)
}

func (it *Itinerary) MoveStop(from, to int) bool { return it.stops.Move(from, to) }

func (it *Itinerary) DropStop(active domain.StopID, over *domain.StopID) bool {
	return it.stops.Drop(active, over)
}

// AddActivity appends a to the activities of stopID.
func (it *Itinerary) AddActivity(stopID domain.StopID, a domain.Activity) (domain.Activity, error) {
	seq, ok := it.activities[stopID]
	if !ok {
		return domain.Activity{}, ErrStopNotFound
	}
	a.StopID = stopID
	return seq.Append(a), nil
}

// SetActivityCompleted marks an activity done or not done. It reports false when the
// activity is not part of the stop.
func (it *Itinerary) SetActivityCompleted(stopID domain.StopID, id domain.ActivityID, completed bool) (domain.Activity, bool) {
	seq, ok := it.activities[stopID]
	if !ok {
		return domain.Activity{}, false
	}
	a, ok := seq.Get(id)
	if !ok {
		return domain.Activity{}, false
	}
	a.Completed = completed
	return seq.Replace(a)
}

func (it *Itinerary) RemoveActivity(stopID domain.StopID, id domain.ActivityID) bool {
	seq, ok := it.activities[stopID]
	if !ok {
		return false
	}
	return seq.Remove(id)
}

func (it *Itinerary) ReorderActivity(stopID domain.StopID, id domain.ActivityID, newIndex int) bool {
	seq, ok := it.activities[stopID]
	if !ok {
		return false
	}
	return seq.Reorder(id, newIndex)
}

func (it *Itinerary) MoveActivity(stopID domain.StopID, from, to int) bool {
	seq, ok := it.activities[stopID]
	if !ok {
		return false
	}
	return seq.Move(from, to)
}

func (it *Itinerary) DropActivity(stopID domain.StopID, active domain.ActivityID, over *domain.ActivityID) bool {
	seq, ok := it.activities[stopID]
	if !ok {
		return false
	}
	return seq.Drop(active, over)
}

func (it *Itinerary) StopPlacements() []Placement[domain.StopID] { return it.stops.Placements() }

func (it *Itinerary) ActivityPlacements(stopID domain.StopID) []Placement[domain.ActivityID] {
	seq, ok := it.activities[stopID]
	if !ok {
		return nil
	}
	return seq.Placements()
}
