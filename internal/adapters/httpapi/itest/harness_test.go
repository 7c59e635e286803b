package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/globetrotter/trip-planner-api/internal/adapters/httpapi"
	memcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/cityrepo"
	memclock "github.com/globetrotter/trip-planner-api/internal/adapters/memory/clock"
	memidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/itineraryrepo"
	mempackingrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/packingrepo"
	memtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/travelerrepo"
	memtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/triprepo"
	pgcityrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/cityrepo"
	pgidempotency "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/idempotency"
	pgitineraryrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/itineraryrepo"
	pgpackingrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/packingrepo"
	postgres_testutil "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/testutil"
	pgtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/travelerrepo"
	pgtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/triprepo"
	"github.com/globetrotter/trip-planner-api/internal/app/destinations"
	"github.com/globetrotter/trip-planner-api/internal/app/packing"
	"github.com/globetrotter/trip-planner-api/internal/app/planner"
	"github.com/globetrotter/trip-planner-api/internal/app/travelers"
	"github.com/globetrotter/trip-planner-api/internal/app/trips"
	cityrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
	idempotencyport "github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
	packingrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
	travelerrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
	triprepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	const issuer = "itest-issuer"
	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		travelerRepo  travelerrepoport.Repository
		tripRepo      triprepoport.Repository
		itineraryRepo itineraryrepoport.Repository
		packingRepo   packingrepoport.Repository
		cityRepo      cityrepoport.Repository
		idemStore     idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		travelerRepo = pgtravelerrepo.NewRepo(pool)
		tripRepo = pgtriprepo.NewRepo(pool)
		itineraryRepo = pgitineraryrepo.NewRepo(pool)
		packingRepo = pgpackingrepo.NewRepo(pool)
		cityRepo = pgcityrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, issuer)
	case backendMemory:
		travelerRepo = memtravelerrepo.NewRepo()
		memTrips := memtriprepo.NewRepo()
		tripRepo = memTrips
		itineraryRepo = memitineraryrepo.NewRepoWithTrips(memTrips)
		packingRepo = mempackingrepo.NewRepo()
		cityRepo = memcityrepo.NewRepo(memcityrepo.DefaultCatalog()...)
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	tripSvc := trips.NewService(tripRepo, travelerRepo, itineraryRepo, packingRepo, clk)
	tripSvc.ShareBaseURL = "https://itest.example"
	api := httpapi.NewServer(httpapi.Services{
		Travelers:    travelers.NewService(travelerRepo, clk),
		Trips:        tripSvc,
		Planner:      planner.NewService(tripRepo, itineraryRepo, cityRepo, clk),
		Packing:      packing.NewService(tripRepo, packingRepo, clk),
		Destinations: destinations.NewService(cityRepo),
	}, idemStore, nil)

	// Integration tests use the dev auth middleware to stay local and deterministic.
	// An empty default subject forces requests to send X-Debug-Subject.
	authMW := httpapi.NewDevAuthMiddleware("")
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, subject string, body any, headers ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
