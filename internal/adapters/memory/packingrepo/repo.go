package packingrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
)

// Repo is an in-memory implementation of packingrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.PackingItemID]domain.PackingItem
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.PackingItemID]domain.PackingItem)}
}

func (r *Repo) Create(ctx context.Context, item domain.PackingItem) error {
	_ = ctx
	if item.ID == "" {
		return packingrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[item.ID]; ok {
		return packingrepo.ErrAlreadyExists
	}
	r.m[item.ID] = item
	return nil
}

func (r *Repo) Save(ctx context.Context, item domain.PackingItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.m[item.ID]
	if !ok || existing.TripID != item.TripID {
		return packingrepo.ErrNotFound
	}
	r.m[item.ID] = item
	return nil
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) (domain.PackingItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[id]
	if !ok || v.TripID != tripID {
		return domain.PackingItem{}, packingrepo.ErrNotFound
	}
	return v, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.PackingItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PackingItem, 0)
	for _, v := range r.m {
		if v.TripID == tripID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.TripID != tripID {
		return packingrepo.ErrNotFound
	}
	delete(r.m, id)
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.m {
		if v.TripID == tripID {
			delete(r.m, id)
		}
	}
	return nil
}
