package packing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/globetrotter/trip-planner-api/internal/domain"
	clockport "github.com/globetrotter/trip-planner-api/internal/ports/out/clock"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

// AddItemInput describes a new packing item. A nil Quantity means one.
type AddItemInput struct {
	Name     string
	Category string
	Quantity *int
}

// List is a trip's packing list with its completion.
type List struct {
	Items    []domain.PackingItem
	Progress domain.PackingProgress
}

type Service struct {
	trips triprepo.Repository
	repo  packingrepo.Repository
	clk   clockport.Clock

	newItemID func() domain.PackingItemID
}

func NewService(tripsRepo triprepo.Repository, packingRepo packingrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		trips: tripsRepo,
		repo:  packingRepo,
		clk:   clk,
		newItemID: func() domain.PackingItemID {
			return domain.PackingItemID(uuid.NewString())
		},
	}
}

// SetNewItemIDForTest overrides item ID generation for deterministic tests.
func (s *Service) SetNewItemIDForTest(fn func() domain.PackingItemID) {
	if fn != nil {
		s.newItemID = fn
	}
}

func (s *Service) ListItems(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) (List, error) {
	if err := s.authorize(ctx, caller, tripID); err != nil {
		return List{}, err
	}
	items, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return List{}, err
	}
	progress := domain.PackingProgress{Total: len(items)}
	for _, it := range items {
		if it.Packed {
			progress.Packed++
		}
	}
	return List{Items: items, Progress: progress}, nil
}

func (s *Service) AddItem(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, in AddItemInput) (domain.PackingItem, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.PackingItem{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return domain.PackingItem{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid quantity", Details: map[string]any{"quantity": "must be >= 1"}}
	}
	if err := s.authorize(ctx, caller, tripID); err != nil {
		return domain.PackingItem{}, err
	}

	now := s.clk.Now()
	item := domain.PackingItem{
		ID:        s.newItemID(),
		TripID:    tripID,
		Name:      name,
		Category:  domain.NormalizeSearchQuery(in.Category),
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, packingrepo.ErrNotFound) {
			return domain.PackingItem{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.PackingItem{}, err
	}
	return item, nil
}

// SetPacked marks an item packed or unpacked; concurrent toggles resolve last-write-wins.
func (s *Service) SetPacked(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, itemID domain.PackingItemID, packed bool) (domain.PackingItem, error) {
	if err := s.authorize(ctx, caller, tripID); err != nil {
		return domain.PackingItem{}, err
	}
	item, err := s.repo.Get(ctx, tripID, itemID)
	if err != nil {
		if errors.Is(err, packingrepo.ErrNotFound) {
			return domain.PackingItem{}, itemNotFound()
		}
		return domain.PackingItem{}, err
	}
	item.Packed = packed
	item.UpdatedAt = s.clk.Now()
	if err := s.repo.Save(ctx, item); err != nil {
		if errors.Is(err, packingrepo.ErrNotFound) {
			return domain.PackingItem{}, itemNotFound()
		}
		return domain.PackingItem{}, err
	}
	return item, nil
}

// RemoveItem deletes an item. Removing an unknown item succeeds.
func (s *Service) RemoveItem(ctx context.Context, caller domain.TravelerID, tripID domain.TripID, itemID domain.PackingItemID) error {
	if err := s.authorize(ctx, caller, tripID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tripID, itemID); err != nil && !errors.Is(err, packingrepo.ErrNotFound) {
		return err
	}
	return nil
}

func itemNotFound() *Error {
	return &Error{Status: 404, Code: "PACKING_ITEM_NOT_FOUND", Message: "packing item not found"}
}

func (s *Service) authorize(ctx context.Context, caller domain.TravelerID, tripID domain.TripID) error {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return err
	}
	if t.OwnerID != caller {
		return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	return nil
}
