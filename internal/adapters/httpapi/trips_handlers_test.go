package httpapi

import (
	"net/http"
	"strings"
	"testing"
)

func TestTrips_RequireProvisionedTraveler(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/trips", "sub-1", nil)
	requireError(t, rec, http.StatusUnauthorized, "TRAVELER_NOT_PROVISIONED")
}

func TestTrips_Lifecycle(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.provision(t, "alice", "Alice")
	api.provision(t, "bob", "Bob")

	tripID := api.createTrip(t, "alice", map[string]any{
		"name":      "  Europe   Tour ",
		"startDate": "2026-06-01",
		"endDate":   "2026-06-10",
	})

	rec := api.do(t, http.MethodGet, "/trips/"+tripID, "alice", nil)
	requireStatus(t, rec, http.StatusOK)
	trip := decode[TripResponse](t, rec).Trip
	if trip.Name != "Europe Tour" || trip.StartDate.String() != "2026-06-01" || trip.IsPublic {
		t.Fatalf("trip=%+v", trip)
	}

	// Private trips are invisible to others.
	rec = api.do(t, http.MethodGet, "/trips/"+tripID, "bob", nil)
	requireError(t, rec, http.StatusNotFound, "TRIP_NOT_FOUND")

	rec = api.do(t, http.MethodGet, "/trips/"+tripID+"/share", "alice", nil)
	requireError(t, rec, http.StatusConflict, "TRIP_NOT_PUBLIC")

	rec = api.do(t, http.MethodPatch, "/trips/"+tripID, "alice", `{"endDate":"2026-05-01"}`)
	requireError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = api.do(t, http.MethodPatch, "/trips/"+tripID, "alice", `{"description":"Summer","name":"Euro Trip"}`)
	requireStatus(t, rec, http.StatusOK)
	trip = decode[TripResponse](t, rec).Trip
	if trip.Name != "Euro Trip" || trip.Description == nil || *trip.Description != "Summer" {
		t.Fatalf("patched=%+v", trip)
	}

	rec = api.do(t, http.MethodPatch, "/trips/"+tripID, "alice", `{"description":null}`)
	requireStatus(t, rec, http.StatusOK)
	if d := decode[TripResponse](t, rec).Trip.Description; d != nil {
		t.Fatalf("description=%q, want cleared", *d)
	}

	rec = api.do(t, http.MethodPut, "/trips/"+tripID+"/visibility", "alice", map[string]any{"isPublic": true})
	requireStatus(t, rec, http.StatusOK)
	trip = decode[TripResponse](t, rec).Trip
	if !trip.IsPublic || trip.ShareCode == nil {
		t.Fatalf("visibility=%+v", trip)
	}
	code := *trip.ShareCode

	rec = api.do(t, http.MethodGet, "/trips/"+tripID+"/share", "alice", nil)
	requireStatus(t, rec, http.StatusOK)
	links := decode[ShareLinksResponse](t, rec).ShareLinks
	if links.URL != "https://globetrotter.example/shared/"+code {
		t.Fatalf("url=%q", links.URL)
	}
	if !strings.HasPrefix(links.WhatsApp, "https://wa.me/?") {
		t.Fatalf("whatsapp=%q", links.WhatsApp)
	}

	rec = api.do(t, http.MethodGet, "/trips/public", "bob", nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decode[TripListResponse](t, rec).Trips; len(got) != 1 || got[0].TripID != tripID {
		t.Fatalf("public=%+v", got)
	}

	rec = api.do(t, http.MethodGet, "/shared/"+code, "", nil)
	requireStatus(t, rec, http.StatusOK)
	shared := decode[SharedTripResponse](t, rec)
	if shared.OwnerName != "Alice" || shared.Trip.TripID != tripID || len(shared.Itinerary.Stops) != 0 {
		t.Fatalf("shared=%+v", shared)
	}

	rec = api.do(t, http.MethodDelete, "/trips/"+tripID, "bob", nil)
	requireError(t, rec, http.StatusNotFound, "TRIP_NOT_FOUND")

	rec = api.do(t, http.MethodDelete, "/trips/"+tripID, "alice", nil)
	requireStatus(t, rec, http.StatusNoContent)

	rec = api.do(t, http.MethodGet, "/trips", "alice", nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decode[TripListResponse](t, rec).Trips; len(got) != 0 {
		t.Fatalf("trips after delete=%+v", got)
	}
}

func TestTrips_CreateValidation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.provision(t, "alice", "Alice")

	rec := api.do(t, http.MethodPost, "/trips", "alice", map[string]any{"name": "No dates"})
	requireError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = api.do(t, http.MethodPost, "/trips", "alice", `{"name":"x","startDate":"06/01/2026","endDate":"2026-06-02"}`)
	requireError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestTrips_CreateIdempotency(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.provision(t, "alice", "Alice")

	body := map[string]any{"name": "Japan", "startDate": "2026-04-01", "endDate": "2026-04-05"}
	first := api.do(t, http.MethodPost, "/trips", "alice", body, "Idempotency-Key", "k1")
	requireStatus(t, first, http.StatusCreated)

	again := api.do(t, http.MethodPost, "/trips", "alice", body, "Idempotency-Key", "k1")
	requireStatus(t, again, http.StatusCreated)
	if again.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
	if decode[CreateTripResponse](t, first).TripID != decode[CreateTripResponse](t, again).TripID {
		t.Fatalf("replay returned a different trip")
	}

	body["name"] = "Korea"
	conflict := api.do(t, http.MethodPost, "/trips", "alice", body, "Idempotency-Key", "k1")
	requireError(t, conflict, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")

	rec := api.do(t, http.MethodGet, "/trips", "alice", nil)
	if got := decode[TripListResponse](t, rec).Trips; len(got) != 1 {
		t.Fatalf("trips=%d, want 1", len(got))
	}
}

func TestTravelers_Profile(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/travelers/me", "alice", nil)
	requireStatus(t, rec, http.StatusNotFound)

	api.provision(t, "alice", "Alice")
	rec = api.do(t, http.MethodPost, "/travelers/me", "alice", map[string]any{"displayName": "Again", "email": "a@example.com"})
	requireError(t, rec, http.StatusConflict, "TRAVELER_ALREADY_EXISTS")

	rec = api.do(t, http.MethodPatch, "/travelers/me", "alice", `{"displayName":"Al"}`)
	requireError(t, rec, http.StatusUnprocessableEntity, "VALIDATION_ERROR")

	rec = api.do(t, http.MethodPatch, "/travelers/me", "alice", `{"displayName":" Ally ","avatarUrl":"https://img.example/a.png"}`, "Idempotency-Key", "p1")
	requireStatus(t, rec, http.StatusOK)
	p := decode[TravelerResponse](t, rec).Traveler
	if p.DisplayName != "Ally" || p.AvatarURL == nil {
		t.Fatalf("profile=%+v", p)
	}

	// Whitespace-only differences hash identically and replay.
	rec = api.do(t, http.MethodPatch, "/travelers/me", "alice", `{"displayName":"Ally","avatarUrl":"https://img.example/a.png"}`, "Idempotency-Key", "p1")
	requireStatus(t, rec, http.StatusOK)
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay")
	}

	rec = api.do(t, http.MethodPatch, "/travelers/me", "alice", `{"avatarUrl":null}`, "Idempotency-Key", "p1")
	requireError(t, rec, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")

	rec = api.do(t, http.MethodPatch, "/travelers/me", "alice", `{"avatarUrl":null}`, "Idempotency-Key", "p2")
	requireStatus(t, rec, http.StatusOK)
	if decode[TravelerResponse](t, rec).Traveler.AvatarURL != nil {
		t.Fatalf("avatar not cleared")
	}
}
