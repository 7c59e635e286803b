package travelerrepo

import (
	"testing"

	"github.com/globetrotter/trip-planner-api/internal/adapters/contracttest"
	"github.com/globetrotter/trip-planner-api/internal/adapters/postgres/testutil"
	travelerrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
)

func TestContract_PostgresTravelerRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunTravelerRepo(t, func(t *testing.T) (travelerrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
