package travelerrepo

import (
	"context"
	"sync"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
)

// Repo is an in-memory implementation of travelerrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID    map[domain.TravelerID]travelerrepo.Traveler
	idBySub map[domain.SubjectID]domain.TravelerID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.TravelerID]travelerrepo.Traveler),
		idBySub: make(map[domain.SubjectID]domain.TravelerID),
	}
}

func (r *Repo) Create(ctx context.Context, t travelerrepo.Traveler) error {
	_ = ctx
	if t.ID == "" {
		return travelerrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.ID]; ok {
		return travelerrepo.ErrAlreadyExists
	}
	if existingID, ok := r.idBySub[t.Subject]; ok && existingID != "" {
		return travelerrepo.ErrSubjectAlreadyBound
	}

	r.byID[t.ID] = cloneTraveler(t)
	r.idBySub[t.Subject] = t.ID
	return nil
}

func (r *Repo) Update(ctx context.Context, t travelerrepo.Traveler) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[t.ID]
	if !ok {
		return travelerrepo.ErrNotFound
	}
	// Subject binding is immutable.
	if existing.Subject != t.Subject {
		return travelerrepo.ErrSubjectAlreadyBound
	}

	r.byID[t.ID] = cloneTraveler(t)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TravelerID) (travelerrepo.Traveler, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return travelerrepo.Traveler{}, travelerrepo.ErrNotFound
	}
	return cloneTraveler(t), nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (travelerrepo.Traveler, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idBySub[subject]
	if !ok {
		return travelerrepo.Traveler{}, travelerrepo.ErrNotFound
	}
	t, ok := r.byID[id]
	if !ok {
		return travelerrepo.Traveler{}, travelerrepo.ErrNotFound
	}
	return cloneTraveler(t), nil
}

func cloneTraveler(t travelerrepo.Traveler) travelerrepo.Traveler {
	out := t
	if t.AvatarURL != nil {
		v := *t.AvatarURL
		out.AvatarURL = &v
	}
	return out
}
