package cityrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
)

// Repo is an in-memory implementation of cityrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.CityID]domain.City
}

// NewRepo returns a catalogue holding cities. Pass DefaultCatalog() for the stock set.
func NewRepo(cities ...domain.City) *Repo {
	r := &Repo{byID: make(map[domain.CityID]domain.City, len(cities))}
	for _, c := range cities {
		r.byID[c.ID] = c
	}
	return r
}

func (r *Repo) GetByID(ctx context.Context, id domain.CityID) (domain.City, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.City{}, cityrepo.ErrNotFound
	}
	return c, nil
}

func (r *Repo) Search(ctx context.Context, f cityrepo.SearchFilter) ([]domain.City, error) {
	_ = ctx
	q := domain.NormalizeSearchQuery(f.Query)
	country := domain.NormalizeSearchQuery(f.Country)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.City, 0)
	for _, c := range r.byID {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		if country != "" && strings.ToLower(c.Country) != country {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
