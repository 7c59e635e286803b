package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/cityrepo"
	memclock "github.com/globetrotter/trip-planner-api/internal/adapters/memory/clock"
	memidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/itineraryrepo"
	mempackingrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/packingrepo"
	memtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/travelerrepo"
	memtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/triprepo"
	"github.com/globetrotter/trip-planner-api/internal/app/destinations"
	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	"github.com/globetrotter/trip-planner-api/internal/platform/auth/jwks_testutil"
	"github.com/globetrotter/trip-planner-api/internal/platform/auth/jwtverifier"
	"github.com/globetrotter/trip-planner-api/internal/platform/config"
	"github.com/globetrotter/trip-planner-api/internal/platform/logging"
)

var testNow = time.Unix(1700000000, 0)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type testAPI struct {
	h    http.Handler
	mint func(sub string) string
	idem *memidempotency.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	kp, err := jwks_testutil.GenerateRSAKeypair("kid-1")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	jwksSrv, setKeys := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)
	setKeys([]jwks_testutil.Keypair{kp})

	jwtCfg := config.JWTConfig{
		Issuer:                 "test-iss",
		Audience:               "test-aud",
		JWKSURL:                jwksSrv.URL,
		JWKSRefreshInterval:    10 * time.Minute,
		JWKSMinRefreshInterval: time.Second,
		HTTPTimeout:            2 * time.Second,
	}
	v := jwtverifier.NewWithOptions(jwtCfg, nil, fixedClock{t: testNow})

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	travelerRepo := memtravelerrepo.NewRepo()
	tripRepo := memtriprepo.NewRepo()
	itineraryRepo := memitineraryrepo.NewRepoWithTrips(tripRepo)
	packingRepo := mempackingrepo.NewRepo()
	cityRepo := memcityrepo.NewRepo(memcityrepo.DefaultCatalog()...)
	idem := memidempotency.NewStore()

	tripSvc := trips.NewService(tripRepo, travelerRepo, itineraryRepo, packingRepo, clk)
	tripSvc.ShareBaseURL = "https://globetrotter.example"

	log := logging.Discard()
	api := NewServer(Services{
		Travelers:    travelers.NewService(travelerRepo, clk),
		Trips:        tripSvc,
		Planner:      planner.NewService(tripRepo, itineraryRepo, cityRepo, clk),
		Packing:      packing.NewService(tripRepo, packingRepo, clk),
		Destinations: destinations.NewService(cityRepo),
	}, idem, log)
	h := NewRouter(api, RouterOptions{AuthMiddleware: NewAuthMiddleware(v), Logger: log})

	mint := func(sub string) string {
		tok, err := jwks_testutil.MintRS256JWT(kp, jwtCfg.Issuer, jwtCfg.Audience, sub, testNow, 10*time.Minute, nil)
		if err != nil {
			t.Fatalf("MintRS256JWT: %v", err)
		}
		return tok
	}
	return &testAPI{h: h, mint: mint, idem: idem}
}

// do sends a request as sub; an empty sub sends no Authorization header.
func (a *testAPI) do(t *testing.T, method, path, sub string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+a.mint(sub))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) provision(t *testing.T, sub, name string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/travelers/me", sub, map[string]any{
		"displayName": name,
		"email":       sub + "@example.com",
	})
	requireStatus(t, rec, http.StatusCreated)
	return decode[TravelerResponse](t, rec).Traveler.TravelerID
}

func (a *testAPI) createTrip(t *testing.T, sub string, body map[string]any) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/trips", sub, body)
	requireStatus(t, rec, http.StatusCreated)
	return decode[CreateTripResponse](t, rec).TripID
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	requireStatus(t, rec, status)
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != code {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, code, rec.Body.String())
	}
	return er
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return out
}
