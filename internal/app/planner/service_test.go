package planner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/cityrepo"
	memclock "github.com/globetrotter/trip-planner-api/internal/adapters/memory/clock"
	memitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/itineraryrepo"
	memtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/triprepo"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/itinerary"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

const (
	owner    domain.TravelerID = "owner"
	stranger domain.TravelerID = "stranger"
	tripID   domain.TripID     = "trip-1"
)

type fixture struct {
	svc   *Service
	repo  *memitineraryrepo.Repo
	trips *memtriprepo.Repo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	trips := memtriprepo.NewRepo()
	repo := memitineraryrepo.NewRepoWithTrips(trips)
	now := time.Unix(100, 0).UTC()
	require.NoError(t, trips.Create(context.Background(), triprepo.Trip{
		ID:        tripID,
		OwnerID:   owner,
		Name:      "Grand tour",
		StartDate: day(1),
		EndDate:   day(20),
		CreatedAt: now,
		UpdatedAt: now,
	}))

	svc := NewService(trips, repo, memcityrepo.NewRepo(memcityrepo.DefaultCatalog()...), memclock.NewManualClock(now))
	var stops, acts int
	svc.SetNewIDsForTest(
		func() domain.StopID { stops++; return domain.StopID(fmt.Sprintf("s%d", stops)) },
		func() domain.ActivityID { acts++; return domain.ActivityID(fmt.Sprintf("a%d", acts)) },
	)
	return fixture{svc: svc, repo: repo, trips: trips}
}

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

func requireAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var ae *Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, status, ae.Status)
	require.Equal(t, code, ae.Code)
}

func addStop(t *testing.T, f fixture, city string) domain.Stop {
	t.Helper()
	s, err := f.svc.AddStop(context.Background(), owner, tripID, AddStopInput{City: city, Country: "Somewhere", StartDate: day(1), EndDate: day(3)})
	require.NoError(t, err)
	return s
}

func addActivity(t *testing.T, f fixture, stopID domain.StopID, cost string) domain.Activity {
	t.Helper()
	a, err := f.svc.AddActivity(context.Background(), owner, tripID, stopID, AddActivityInput{Title: "Visit", Time: "10:00", Cost: decimal.RequireFromString(cost)})
	require.NoError(t, err)
	return a
}

func stopIDs(it *itinerary.Itinerary) []domain.StopID {
	out := []domain.StopID{}
	for _, s := range it.Stops() {
		out = append(out, s.ID)
	}
	return out
}

func TestService_BudgetScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := addStop(t, f, "Lisbon")
	addActivity(t, f, s.ID, "35")
	addActivity(t, f, s.ID, "22")

	sum, err := f.svc.GetBudget(context.Background(), owner, tripID)
	require.NoError(t, err)
	assert.True(t, sum.ActivityTotal.Equal(decimal.NewFromInt(57)))
	assert.True(t, sum.TransportEstimate.Equal(decimal.NewFromInt(5)))
	assert.True(t, sum.AccommodationEstimate.Equal(decimal.NewFromInt(150)))
	assert.True(t, sum.GrandTotal.Equal(decimal.NewFromInt(212)))
	assert.False(t, sum.OverBudget)
}

func TestService_RemoveFirstActivityRenumbers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := addStop(t, f, "Rome")
	first := addActivity(t, f, s.ID, "35")
	second := addActivity(t, f, s.ID, "22")

	it, err := f.svc.RemoveActivity(context.Background(), owner, tripID, s.ID, first.ID)
	require.NoError(t, err)
	acts := it.Activities(s.ID)
	require.Len(t, acts, 1)
	assert.Equal(t, second.ID, acts[0].ID)
	assert.Equal(t, 0, acts[0].Position)

	// The renumbering is persisted, not just returned.
	recs, err := f.repo.Load(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, recs.Activities, 1)
	assert.Equal(t, 0, recs.Activities[0].Position)

	sum, err := f.svc.GetBudget(context.Background(), owner, tripID)
	require.NoError(t, err)
	assert.True(t, sum.ActivityTotal.Equal(decimal.NewFromInt(22)))
}

func TestService_MoveStopRotatesAndPersists(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := addStop(t, f, "A")
	b := addStop(t, f, "B")
	c := addStop(t, f, "C")

	to := 0
	_, err := f.svc.MoveStop(context.Background(), owner, tripID, 2, &to)
	require.NoError(t, err)

	it, err := f.svc.GetItinerary(context.Background(), owner, tripID)
	require.NoError(t, err)
	assert.Equal(t, []domain.StopID{c.ID, a.ID, b.ID}, stopIDs(it))
	for i, s := range it.Stops() {
		assert.Equal(t, i, s.Position)
	}
}

func TestService_DiscardedGesturesAreNoOps(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := addStop(t, f, "A")
	b := addStop(t, f, "B")
	want := []domain.StopID{a.ID, b.ID}

	it, err := f.svc.MoveStop(context.Background(), owner, tripID, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, want, stopIDs(it))

	out := 5
	it, err = f.svc.MoveStop(context.Background(), owner, tripID, 0, &out)
	require.NoError(t, err)
	assert.Equal(t, want, stopIDs(it))

	it, err = f.svc.DropStop(context.Background(), owner, tripID, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, want, stopIDs(it))

	it, err = f.svc.ReorderStop(context.Background(), owner, tripID, "ghost", 0)
	require.NoError(t, err)
	assert.Equal(t, want, stopIDs(it))

	it, err = f.svc.RemoveStop(context.Background(), owner, tripID, "ghost")
	require.NoError(t, err)
	assert.Equal(t, want, stopIDs(it))

	_, err = f.svc.RemoveActivity(context.Background(), owner, tripID, a.ID, "ghost")
	require.NoError(t, err)
}

func TestService_DropAndReorderActivities(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := addStop(t, f, "Kyoto")
	x := addActivity(t, f, s.ID, "1")
	y := addActivity(t, f, s.ID, "2")
	z := addActivity(t, f, s.ID, "3")

	it, err := f.svc.DropActivity(context.Background(), owner, tripID, s.ID, z.ID, &x.ID)
	require.NoError(t, err)
	ids := func(it *itinerary.Itinerary) []domain.ActivityID {
		out := []domain.ActivityID{}
		for _, a := range it.Activities(s.ID) {
			out = append(out, a.ID)
		}
		return out
	}
	assert.Equal(t, []domain.ActivityID{z.ID, x.ID, y.ID}, ids(it))

	it, err = f.svc.ReorderActivity(context.Background(), owner, tripID, s.ID, z.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, []domain.ActivityID{x.ID, y.ID, z.ID}, ids(it))

	to := 0
	it, err = f.svc.MoveActivity(context.Background(), owner, tripID, s.ID, 1, &to)
	require.NoError(t, err)
	assert.Equal(t, []domain.ActivityID{y.ID, x.ID, z.ID}, ids(it))

	reloaded, err := f.svc.GetItinerary(context.Background(), owner, tripID)
	require.NoError(t, err)
	assert.Equal(t, ids(it), ids(reloaded))
}

func TestService_RemoveStopDropsActivities(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := addStop(t, f, "A")
	b := addStop(t, f, "B")
	addActivity(t, f, a.ID, "10")

	it, err := f.svc.RemoveStop(context.Background(), owner, tripID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.StopID{b.ID}, stopIDs(it))

	recs, err := f.repo.Load(context.Background(), tripID)
	require.NoError(t, err)
	assert.Empty(t, recs.Activities)
	require.Len(t, recs.Stops, 1)
	assert.Equal(t, 0, recs.Stops[0].Position)
}

func TestService_AddStopResolvesCatalogueCity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kyoto := domain.CityID("0b6c3f8e-5a1d-4c2e-9f10-000000000008")
	s, err := f.svc.AddStop(context.Background(), owner, tripID, AddStopInput{CityID: &kyoto, City: "ignored", StartDate: day(2), EndDate: day(5)})
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", s.City)
	assert.Equal(t, "Japan", s.Country)
	assert.Equal(t, 3, s.Nights())

	unknown := domain.CityID("0b6c3f8e-5a1d-4c2e-9f10-0000000000ff")
	_, err = f.svc.AddStop(context.Background(), owner, tripID, AddStopInput{CityID: &unknown, StartDate: day(2), EndDate: day(5)})
	requireAppError(t, err, 422, "VALIDATION_ERROR")
}

func TestService_ValidationNeverPersists(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := addStop(t, f, "Paris")

	for name, in := range map[string]AddActivityInput{
		"missing title": {Time: "09:00"},
		"missing time":  {Title: "Louvre"},
		"bad time":      {Title: "Louvre", Time: "25:00"},
		"negative cost": {Title: "Louvre", Time: "09:00", Cost: decimal.NewFromInt(-1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AddActivity(context.Background(), owner, tripID, s.ID, in)
			requireAppError(t, err, 422, "VALIDATION_ERROR")
		})
	}
	for _, in := range []AddStopInput{
		{StartDate: day(1), EndDate: day(2)},
		{City: "Nice", EndDate: day(2)},
		{City: "Nice", StartDate: day(3), EndDate: day(2)},
	} {
		_, err := f.svc.AddStop(context.Background(), owner, tripID, in)
		requireAppError(t, err, 422, "VALIDATION_ERROR")
	}

	recs, err := f.repo.Load(context.Background(), tripID)
	require.NoError(t, err)
	assert.Len(t, recs.Stops, 1)
	assert.Empty(t, recs.Activities)
}

func TestService_AddActivityToUnknownStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.AddActivity(context.Background(), owner, tripID, "ghost", AddActivityInput{Title: "x", Time: "09:00"})
	requireAppError(t, err, 404, "STOP_NOT_FOUND")
}

func TestService_OwnershipAndPublicReads(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.AddStop(context.Background(), stranger, tripID, AddStopInput{City: "A", StartDate: day(1), EndDate: day(2)})
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")
	_, err = f.svc.GetItinerary(context.Background(), stranger, tripID)
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")

	tr, err := f.trips.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	tr.IsPublic = true
	require.NoError(t, f.trips.Save(context.Background(), tr))

	_, err = f.svc.GetBudget(context.Background(), stranger, tripID)
	require.NoError(t, err)
	_, err = f.svc.ReorderStop(context.Background(), stranger, tripID, "s1", 0)
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")

	_, err = f.svc.GetItinerary(context.Background(), owner, "no-such-trip")
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")
}

func TestService_SetActivityCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	s := addStop(t, f, "Lisbon")
	a := addActivity(t, f, s.ID, "12")

	done, err := f.svc.SetActivityCompleted(ctx, owner, tripID, s.ID, a.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, a.Title, done.Title)

	again, err := f.svc.SetActivityCompleted(ctx, owner, tripID, s.ID, a.ID, true)
	require.NoError(t, err)
	assert.True(t, again.Completed)

	recs, err := f.repo.Load(ctx, tripID)
	require.NoError(t, err)
	require.Len(t, recs.Activities, 1)
	assert.True(t, recs.Activities[0].Completed)

	undone, err := f.svc.SetActivityCompleted(ctx, owner, tripID, s.ID, a.ID, false)
	require.NoError(t, err)
	assert.False(t, undone.Completed)

	_, err = f.svc.SetActivityCompleted(ctx, owner, tripID, s.ID, "missing", true)
	requireAppError(t, err, 404, "ACTIVITY_NOT_FOUND")
	_, err = f.svc.SetActivityCompleted(ctx, owner, tripID, "missing", a.ID, true)
	requireAppError(t, err, 404, "STOP_NOT_FOUND")
	_, err = f.svc.SetActivityCompleted(ctx, stranger, tripID, s.ID, a.ID, true)
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")
}

func TestService_AddActivityKeepsDateOutsideStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := addStop(t, f, "Lisbon")
	outside := day(9).Add(13 * time.Hour)

	a, err := f.svc.AddActivity(context.Background(), owner, tripID, s.ID, AddActivityInput{Title: "Day trip", Time: "08:00", Date: &outside})
	require.NoError(t, err)
	require.NotNil(t, a.Date)
	assert.Equal(t, day(9), *a.Date)
}

func TestService_GetTimeline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	lisbon := addStop(t, f, "Lisbon")
	addActivity(t, f, lisbon.ID, "35")
	second := day(2)
	_, err := f.svc.AddActivity(ctx, owner, tripID, lisbon.ID, AddActivityInput{Title: "Tram", Time: "09:00", Cost: decimal.RequireFromString("3"), Date: &second})
	require.NoError(t, err)
	addStop(t, f, "Porto")

	days, err := f.svc.GetTimeline(ctx, owner, tripID)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, "Lisbon", days[0].City)
	assert.True(t, decimal.RequireFromString("35").Equal(days[0].Total))
	assert.Equal(t, "Porto", days[1].City)
	assert.Equal(t, 1, days[1].DayNumber)
	assert.Empty(t, days[1].Activities)
	assert.Equal(t, "Lisbon", days[2].City)
	assert.Equal(t, 2, days[2].DayNumber)
	assert.True(t, decimal.RequireFromString("3").Equal(days[2].Total))

	_, err = f.svc.GetTimeline(ctx, stranger, tripID)
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")
}

// vanishingTrips lets the ownership check pass, then drops the trip, like a
// DeleteTrip that lands between authorization and the stop insert.
type vanishingTrips struct {
	*memtriprepo.Repo
}

func (v vanishingTrips) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	t, err := v.Repo.GetByID(ctx, id)
	if err != nil {
		return t, err
	}
	if err := v.Repo.Delete(ctx, id); err != nil {
		return triprepo.Trip{}, err
	}
	return t, nil
}

func TestService_AddStopToDeletedTripLeavesNoOrphan(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewService(vanishingTrips{f.trips}, f.repo, memcityrepo.NewRepo(), memclock.NewManualClock(time.Unix(0, 0)))

	_, err := svc.AddStop(context.Background(), owner, tripID, AddStopInput{City: "Ghost", StartDate: day(1), EndDate: day(2)})
	requireAppError(t, err, 404, "TRIP_NOT_FOUND")

	recs, err := f.repo.Load(context.Background(), tripID)
	require.NoError(t, err)
	assert.Empty(t, recs.Stops)
}

type conflictingRepo struct {
	*memitineraryrepo.Repo
}

func (conflictingRepo) SetStopOrder(context.Context, domain.TripID, itineraryrepo.StopOrder) error {
	return fmt.Errorf("stale order: %w", itineraryrepo.ErrNotFound)
}

func TestService_StaleWritesSurfaceAsConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	addStop(t, f, "A")
	addStop(t, f, "B")

	svc := NewService(f.trips, conflictingRepo{f.repo}, memcityrepo.NewRepo(), memclock.NewManualClock(time.Unix(0, 0)))
	_, err := svc.ReorderStop(context.Background(), owner, tripID, "s2", 0)
	requireAppError(t, err, 409, "ITINERARY_CONFLICT")
}

func TestService_ConcurrentAddsKeepPositionsDense(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var mu sync.Mutex
	n := 0
	f.svc.SetNewIDsForTest(func() domain.StopID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return domain.StopID(fmt.Sprintf("c%02d", n))
	}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.AddStop(context.Background(), owner, tripID, AddStopInput{City: fmt.Sprintf("City %d", i), StartDate: day(1), EndDate: day(2)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	recs, err := f.repo.Load(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, recs.Stops, 20)
	seen := make(map[int]bool)
	for _, s := range recs.Stops {
		require.False(t, seen[s.Position], "duplicate position %d", s.Position)
		seen[s.Position] = true
	}
	for i := 0; i < 20; i++ {
		require.True(t, seen[i], "missing position %d", i)
	}
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestTripLocks_Serialize(t *testing.T) {
	t.Parallel()

	l := newTripLocks()
	unlock := l.lock("t")
	acquired := make(chan struct{})
	go func() {
		u := l.lock("t")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
	require.Eventually(t, func() bool { return l.size() == 0 }, time.Second, time.Millisecond)
}
