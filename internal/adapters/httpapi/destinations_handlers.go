package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// SearchDestinations handles GET /destinations?q=&country=&limit=.
func (s *Server) SearchDestinations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			validationError(w, r, "limit", "must be an integer")
			return
		}
		limit = n
	}
	cities, err := s.Destinations.Search(r.Context(), q.Get("q"), q.Get("country"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]City, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityFromDomain(c))
	}
	writeJSON(w, http.StatusOK, CityListResponse{Cities: out})
}

func (s *Server) GetDestination(w http.ResponseWriter, r *http.Request) {
	c, err := s.Destinations.GetCity(r.Context(), domain.CityID(chi.URLParam(r, "cityId")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CityResponse{City: cityFromDomain(c)})
}
