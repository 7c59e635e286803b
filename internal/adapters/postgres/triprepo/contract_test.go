package triprepo

import (
	"testing"

	"github.com/globetrotter/trip-planner-api/internal/adapters/contracttest"
	pgtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/postgres/travelerrepo"
	"github.com/globetrotter/trip-planner-api/internal/adapters/postgres/testutil"
	travelerrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
	triprepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

func TestContract_PostgresTripRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunTripRepo(
		t,
		func(t *testing.T) (travelerrepoport.Repository, func()) {
			t.Helper()
			return pgtravelerrepo.NewRepo(pool), nil
		},
		func(t *testing.T) (triprepoport.Repository, func()) {
			t.Helper()
			return NewRepo(pool), nil
		},
	)
}
