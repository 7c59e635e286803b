package packingrepo

import (
	"testing"

	"github.com/globetrotter/trip-planner-api/internal/adapters/contracttest"
	memtravelerrepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/travelerrepo"
	memtriprepo "github.com/globetrotter/trip-planner-api/internal/adapters/memory/triprepo"
	packingrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
)

func TestContract_PackingRepo(t *testing.T) {
	contracttest.RunPackingRepo(t, func(t *testing.T) (contracttest.TripSeed, packingrepoport.Repository, func()) {
		t.Helper()
		return contracttest.TripSeed{Travelers: memtravelerrepo.NewRepo(), Trips: memtriprepo.NewRepo()}, NewRepo(), nil
	})
}
