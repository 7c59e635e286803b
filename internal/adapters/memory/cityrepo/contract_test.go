package cityrepo

import (
	"testing"

	"github.com/globetrotter/trip-planner-api/internal/adapters/contracttest"
	cityrepoport "github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
)

func TestContract_CityRepo(t *testing.T) {
	contracttest.RunCityRepo(t, func(t *testing.T) (cityrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(DefaultCatalog()...), nil
	})
}
