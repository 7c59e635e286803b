package contracttest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	cityrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
	idempotencyport "github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	packingrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
	travelerrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
	triprepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

type CleanupFunc = func()

// TripSeed gives suites that need a parent trip a way to create one.
type TripSeed struct {
	Travelers travelerrepoport.Repository
	Trips     triprepoport.Repository
}

type TravelerRepoFactory func(t *testing.T) (travelerrepoport.Repository, CleanupFunc)
type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type ItineraryRepoFactory func(t *testing.T) (TripSeed, itineraryrepoport.Repository, CleanupFunc)
type PackingRepoFactory func(t *testing.T) (TripSeed, packingrepoport.Repository, CleanupFunc)
type CityRepoFactory func(t *testing.T) (cityrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Subject:  domain.SubjectID("sub-1"),
		Method:   "PATCH",
		Route:    "/travelers/me",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Any fingerprint component distinguishes records.
	other := fp
	other.Subject = "sub-2"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other subject): ok=%v err=%v", ok, err)
	}
}

func RunTravelerRepo(t *testing.T, newRepo TravelerRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.TravelerID(uuid.NewString())
	sub := domain.SubjectID("sub-" + uuid.NewString())
	if err := repo.Create(ctx, travelerrepoport.Traveler{
		ID:          aID,
		Subject:     sub,
		DisplayName: "Alice Johnson",
		Email:       "alice@example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got, err := repo.GetBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if got.ID != aID || got.AvatarURL != nil {
		t.Fatalf("unexpected traveler: %#v", got)
	}

	// Subject uniqueness.
	if err := repo.Create(ctx, travelerrepoport.Traveler{
		ID:          domain.TravelerID(uuid.NewString()),
		Subject:     sub,
		DisplayName: "Alice 2",
		Email:       "alice2@example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err == nil {
		t.Fatalf("expected subject uniqueness error")
	}

	avatar := "https://img.example.com/alice.png"
	got.DisplayName = "Alice J."
	got.AvatarURL = &avatar
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.DisplayName != "Alice J." || got.AvatarURL == nil || *got.AvatarURL != avatar {
		t.Fatalf("update not persisted: %#v", got)
	}

	if _, err := repo.GetByID(ctx, domain.TravelerID(uuid.NewString())); err != travelerrepoport.ErrNotFound {
		t.Fatalf("GetByID(unknown) err=%v, want %v", err, travelerrepoport.ErrNotFound)
	}
}

// SeedTrip creates an owner and a trip and returns the trip id.
func SeedTrip(t *testing.T, seed TripSeed, name string, start time.Time) domain.TripID {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(2000, 0).UTC()

	ownerID := domain.TravelerID(uuid.NewString())
	if err := seed.Travelers.Create(ctx, travelerrepoport.Traveler{
		ID:          ownerID,
		Subject:     domain.SubjectID("sub-" + uuid.NewString()),
		DisplayName: "Owner",
		Email:       "owner@example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	tripID := domain.TripID(uuid.NewString())
	if err := seed.Trips.Create(ctx, triprepoport.Trip{
		ID:        tripID,
		OwnerID:   ownerID,
		Name:      name,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 7),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return tripID
}

func RunTripRepo(t *testing.T, newTravelerRepo TravelerRepoFactory, newTripRepo TripRepoFactory) {
	t.Helper()
	ctx := context.Background()

	travelers, mCleanup := newTravelerRepo(t)
	if mCleanup != nil {
		t.Cleanup(mCleanup)
	}
	trips, tCleanup := newTripRepo(t)
	if tCleanup != nil {
		t.Cleanup(tCleanup)
	}

	now := time.Unix(2000, 0).UTC()
	ownerID := domain.TravelerID(uuid.NewString())
	if err := travelers.Create(ctx, travelerrepoport.Traveler{
		ID:          ownerID,
		Subject:     domain.SubjectID("sub-" + uuid.NewString()),
		DisplayName: "Owner",
		Email:       "owner@example.com",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	later := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	desc := "Grand tour"

	laterID := domain.TripID(uuid.NewString())
	if err := trips.Create(ctx, triprepoport.Trip{
		ID:          laterID,
		OwnerID:     ownerID,
		Name:        "Summer",
		Description: &desc,
		StartDate:   later,
		EndDate:     later.AddDate(0, 0, 10),
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("Create trip: %v", err)
	}
	soonerID := domain.TripID(uuid.NewString())
	if err := trips.Create(ctx, triprepoport.Trip{
		ID:        soonerID,
		OwnerID:   ownerID,
		Name:      "Spring",
		StartDate: sooner,
		EndDate:   sooner,
		CreatedAt: now.Add(time.Second),
		UpdatedAt: now.Add(time.Second),
	}); err != nil {
		t.Fatalf("Create trip 2: %v", err)
	}

	got, err := trips.GetByID(ctx, laterID)
	if err != nil {
		t.Fatalf("GetByID trip: %v", err)
	}
	if got.ID != laterID || got.Name != "Summer" || got.Description == nil || *got.Description != desc {
		t.Fatalf("unexpected trip: %#v", got)
	}
	if !got.StartDate.Equal(later) || !got.EndDate.Equal(later.AddDate(0, 0, 10)) {
		t.Fatalf("dates not round-tripped: %v..%v", got.StartDate, got.EndDate)
	}

	mine, err := trips.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != soonerID || mine[1].ID != laterID {
		t.Fatalf("unexpected owner listing: %#v", mine)
	}

	code := "share-" + uuid.NewString()[:8]
	got.IsPublic = true
	got.ShareCode = &code
	got.UpdatedAt = now.Add(time.Minute)
	if err := trips.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	shared, err := trips.GetByShareCode(ctx, code)
	if err != nil || shared.ID != laterID || !shared.IsPublic {
		t.Fatalf("GetByShareCode: trip=%#v err=%v", shared, err)
	}

	public, err := trips.ListPublic(ctx, 0)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	found := false
	for _, p := range public {
		if p.ID == soonerID {
			t.Fatalf("private trip listed as public")
		}
		if p.ID == laterID {
			found = true
		}
	}
	if !found {
		t.Fatalf("public trip missing from ListPublic: %#v", public)
	}

	if err := trips.Delete(ctx, soonerID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := trips.GetByID(ctx, soonerID); err != triprepoport.ErrNotFound {
		t.Fatalf("GetByID(deleted) err=%v, want %v", err, triprepoport.ErrNotFound)
	}
	if err := trips.Delete(ctx, soonerID); err != triprepoport.ErrNotFound {
		t.Fatalf("Delete(deleted) err=%v, want %v", err, triprepoport.ErrNotFound)
	}
}

func RunItineraryRepo(t *testing.T, newRepo ItineraryRepoFactory) {
	t.Helper()
	ctx := context.Background()

	seed, repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tripID := SeedTrip(t, seed, "Itinerary contract", start)
	now := time.Unix(3000, 0).UTC()

	stopIDs := []domain.StopID{
		domain.StopID(uuid.NewString()),
		domain.StopID(uuid.NewString()),
		domain.StopID(uuid.NewString()),
	}
	for i, id := range stopIDs {
		if err := repo.InsertStop(ctx, domain.Stop{
			ID:        id,
			TripID:    tripID,
			City:      "City",
			Country:   "Country",
			StartDate: start.AddDate(0, 0, i),
			EndDate:   start.AddDate(0, 0, i+1),
			Position:  i,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("InsertStop %d: %v", i, err)
		}
	}
	if err := repo.InsertStop(ctx, domain.Stop{ID: stopIDs[0], TripID: tripID, StartDate: start, EndDate: start, Position: 3, CreatedAt: now}); err != itineraryrepoport.ErrAlreadyExists {
		t.Fatalf("InsertStop dup err=%v, want %v", err, itineraryrepoport.ErrAlreadyExists)
	}

	ghostTrip := domain.TripID(uuid.NewString())
	if err := repo.InsertStop(ctx, domain.Stop{ID: domain.StopID(uuid.NewString()), TripID: ghostTrip, City: "City", StartDate: start, EndDate: start, CreatedAt: now}); err != itineraryrepoport.ErrNotFound {
		t.Fatalf("InsertStop(unknown trip) err=%v, want %v", err, itineraryrepoport.ErrNotFound)
	}

	first := stopIDs[0]
	actIDs := []domain.ActivityID{domain.ActivityID(uuid.NewString()), domain.ActivityID(uuid.NewString())}
	costs := []string{"35.50", "22"}
	secondDay := start.AddDate(0, 0, 1)
	dates := []*time.Time{&secondDay, nil}
	for i, id := range actIDs {
		if err := repo.InsertActivity(ctx, domain.Activity{
			ID:        id,
			StopID:    first,
			Title:     "Activity",
			Time:      domain.TimeOfDay{Hour: 9 + i, Minute: 30},
			Cost:      decimal.RequireFromString(costs[i]),
			Date:      dates[i],
			Position:  i,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("InsertActivity %d: %v", i, err)
		}
	}

	recs, err := repo.Load(ctx, tripID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs.Stops) != 3 || len(recs.Activities) != 2 {
		t.Fatalf("Load: stops=%d activities=%d", len(recs.Stops), len(recs.Activities))
	}
	for _, a := range recs.Activities {
		switch a.ID {
		case actIDs[0]:
			if !a.Cost.Equal(decimal.RequireFromString("35.50")) || a.Time.String() != "09:30" {
				t.Fatalf("activity not round-tripped: %#v", a)
			}
			if a.Date == nil || !a.Date.Equal(secondDay) || a.Completed {
				t.Fatalf("activity date not round-tripped: %#v", a)
			}
		case actIDs[1]:
			if a.Date != nil {
				t.Fatalf("activity without date loaded with %v", a.Date)
			}
		}
	}

	if err := repo.SetActivityCompleted(ctx, first, actIDs[0], true); err != nil {
		t.Fatalf("SetActivityCompleted: %v", err)
	}
	if err := repo.SetActivityCompleted(ctx, stopIDs[1], actIDs[0], true); err != itineraryrepoport.ErrNotFound {
		t.Fatalf("SetActivityCompleted(wrong stop) err=%v, want %v", err, itineraryrepoport.ErrNotFound)
	}
	recs, _ = repo.Load(ctx, tripID)
	for _, a := range recs.Activities {
		if a.Completed != (a.ID == actIDs[0]) {
			t.Fatalf("activity %s completed=%v", a.ID, a.Completed)
		}
	}

	// Swap positions of the first and last stop in one write.
	order := itineraryrepoport.StopOrder{
		{ID: stopIDs[2], Position: 0},
		{ID: stopIDs[1], Position: 1},
		{ID: stopIDs[0], Position: 2},
	}
	if err := repo.SetStopOrder(ctx, tripID, order); err != nil {
		t.Fatalf("SetStopOrder: %v", err)
	}
	assertStopPositions(t, repo, tripID, map[domain.StopID]int{stopIDs[2]: 0, stopIDs[1]: 1, stopIDs[0]: 2})

	if err := repo.SetActivityOrder(ctx, first, itineraryrepoport.ActivityOrder{{ID: actIDs[1], Position: 0}, {ID: actIDs[0], Position: 1}}); err != nil {
		t.Fatalf("SetActivityOrder: %v", err)
	}
	if err := repo.DeleteActivity(ctx, first, actIDs[1], itineraryrepoport.ActivityOrder{{ID: actIDs[0], Position: 0}}); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}
	recs, _ = repo.Load(ctx, tripID)
	if len(recs.Activities) != 1 || recs.Activities[0].ID != actIDs[0] || recs.Activities[0].Position != 0 {
		t.Fatalf("after DeleteActivity: %#v", recs.Activities)
	}

	// Deleting the stop removes its activities and re-densifies the rest.
	rest := itineraryrepoport.StopOrder{{ID: stopIDs[2], Position: 0}, {ID: stopIDs[1], Position: 1}}
	if err := repo.DeleteStop(ctx, tripID, first, rest); err != nil {
		t.Fatalf("DeleteStop: %v", err)
	}
	recs, _ = repo.Load(ctx, tripID)
	if len(recs.Activities) != 0 {
		t.Fatalf("activities survived stop delete: %#v", recs.Activities)
	}
	assertStopPositions(t, repo, tripID, map[domain.StopID]int{stopIDs[2]: 0, stopIDs[1]: 1})

	if err := repo.DeleteStop(ctx, tripID, first, rest); err != itineraryrepoport.ErrNotFound {
		t.Fatalf("DeleteStop(deleted) err=%v, want %v", err, itineraryrepoport.ErrNotFound)
	}

	if err := repo.DeleteByTrip(ctx, tripID); err != nil {
		t.Fatalf("DeleteByTrip: %v", err)
	}
	recs, _ = repo.Load(ctx, tripID)
	if len(recs.Stops) != 0 {
		t.Fatalf("stops survived DeleteByTrip: %#v", recs.Stops)
	}
}

func assertStopPositions(t *testing.T, repo itineraryrepoport.Repository, tripID domain.TripID, want map[domain.StopID]int) {
	t.Helper()
	recs, err := repo.Load(context.Background(), tripID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs.Stops) != len(want) {
		t.Fatalf("stops=%d, want %d", len(recs.Stops), len(want))
	}
	for _, s := range recs.Stops {
		if want[s.ID] != s.Position {
			t.Fatalf("stop %s position=%d, want %d", s.ID, s.Position, want[s.ID])
		}
	}
}

func RunPackingRepo(t *testing.T, newRepo PackingRepoFactory) {
	t.Helper()
	ctx := context.Background()

	seed, repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	tripID := SeedTrip(t, seed, "Packing contract", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	now := time.Unix(4000, 0).UTC()

	first := domain.PackingItemID(uuid.NewString())
	second := domain.PackingItemID(uuid.NewString())
	if err := repo.Create(ctx, domain.PackingItem{ID: first, TripID: tripID, Name: "Passport", Category: "documents", Quantity: 1, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, domain.PackingItem{ID: second, TripID: tripID, Name: "Socks", Category: "clothing", Quantity: 4, CreatedAt: now.Add(time.Second), UpdatedAt: now}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	item, err := repo.Get(ctx, tripID, second)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	item.Packed = true
	item.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(ctx, item); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := repo.ListByTrip(ctx, tripID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(list) != 2 || list[0].ID != first || list[1].ID != second || !list[1].Packed || list[1].Quantity != 4 {
		t.Fatalf("unexpected list: %#v", list)
	}

	if err := repo.Delete(ctx, tripID, first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tripID, first); err != packingrepoport.ErrNotFound {
		t.Fatalf("Delete(deleted) err=%v, want %v", err, packingrepoport.ErrNotFound)
	}
	if err := repo.DeleteByTrip(ctx, tripID); err != nil {
		t.Fatalf("DeleteByTrip: %v", err)
	}
	if list, _ := repo.ListByTrip(ctx, tripID); len(list) != 0 {
		t.Fatalf("items survived DeleteByTrip: %#v", list)
	}
}

// RunCityRepo expects the stock catalogue to be loaded.
func RunCityRepo(t *testing.T, newRepo CityRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	got, err := repo.Search(ctx, cityrepoport.SearchFilter{Query: "KYO"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Kyoto" || got[1].Name != "Tokyo" {
		t.Fatalf("unexpected search result: %#v", got)
	}
	if got[0].CostIndex == nil || got[0].Latitude == nil {
		t.Fatalf("catalogue metadata missing: %#v", got[0])
	}

	byCountry, err := repo.Search(ctx, cityrepoport.SearchFilter{Country: "Japan", Limit: 1})
	if err != nil || len(byCountry) != 1 {
		t.Fatalf("Search(country, limit): %#v err=%v", byCountry, err)
	}

	city, err := repo.GetByID(ctx, got[1].ID)
	if err != nil || city.Name != "Tokyo" {
		t.Fatalf("GetByID: %#v err=%v", city, err)
	}
	if _, err := repo.GetByID(ctx, domain.CityID(uuid.NewString())); err != cityrepoport.ErrNotFound {
		t.Fatalf("GetByID(unknown) err=%v, want %v", err, cityrepoport.ErrNotFound)
	}
}
