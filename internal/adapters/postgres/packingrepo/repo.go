package packingrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/packingrepo"
)

const tripScope = `trip_id = (SELECT id FROM trips WHERE external_id = $2)`

// Repo is a Postgres implementation of packingrepo.Repository.
type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, item domain.PackingItem) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	itemUUID, err := uuid.Parse(string(item.ID))
	if err != nil {
		return fmt.Errorf("invalid packing item id: %w", err)
	}
	tripUUID, err := uuid.Parse(string(item.TripID))
	if err != nil {
		return packingrepo.ErrNotFound
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO packing_items (
			external_id, trip_id, name, category, quantity, packed, created_at, updated_at
		) VALUES (
			$1,
			(SELECT id FROM trips WHERE external_id = $2),
			$3, $4, $5, $6, $7, $8
		)
	`,
		itemUUID,
		tripUUID,
		item.Name,
		item.Category,
		item.Quantity,
		item.Packed,
		item.CreatedAt.UTC(),
		item.UpdatedAt.UTC(),
	)
	switch {
	case err == nil:
		return nil
	case postgres.IsUniqueViolation(err, "packing_items_external_id_unique"):
		return packingrepo.ErrAlreadyExists
	case postgres.IsNotNullViolation(err):
		return fmt.Errorf("trip %s: %w", item.TripID, packingrepo.ErrNotFound)
	default:
		return err
	}
}

func (r *Repo) Save(ctx context.Context, item domain.PackingItem) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	itemUUID, err1 := uuid.Parse(string(item.ID))
	tripUUID, err2 := uuid.Parse(string(item.TripID))
	if err1 != nil || err2 != nil {
		return packingrepo.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE packing_items
		SET name = $3, category = $4, quantity = $5, packed = $6, updated_at = $7
		WHERE external_id = $1 AND `+tripScope,
		itemUUID,
		tripUUID,
		item.Name,
		item.Category,
		item.Quantity,
		item.Packed,
		item.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return packingrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) (domain.PackingItem, error) {
	if r.db == nil {
		return domain.PackingItem{}, postgres.ErrNilDB
	}
	itemUUID, err1 := uuid.Parse(string(id))
	tripUUID, err2 := uuid.Parse(string(tripID))
	if err1 != nil || err2 != nil {
		return domain.PackingItem{}, packingrepo.ErrNotFound
	}
	item, err := scanItem(r.db.QueryRow(ctx, `
		SELECT external_id::text, name, category, quantity, packed, created_at, updated_at
		FROM packing_items
		WHERE external_id = $1 AND `+tripScope,
		itemUUID, tripUUID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PackingItem{}, packingrepo.ErrNotFound
		}
		return domain.PackingItem{}, err
	}
	item.TripID = tripID
	return item, nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.PackingItem, error) {
	if r.db == nil {
		return nil, postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return []domain.PackingItem{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT p.external_id::text, p.name, p.category, p.quantity, p.packed, p.created_at, p.updated_at
		FROM packing_items p
		JOIN trips tr ON tr.id = p.trip_id
		WHERE tr.external_id = $1
		ORDER BY p.created_at ASC, p.external_id ASC
	`, tripUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PackingItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		item.TripID = tripID
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, tripID domain.TripID, id domain.PackingItemID) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	itemUUID, err1 := uuid.Parse(string(id))
	tripUUID, err2 := uuid.Parse(string(tripID))
	if err1 != nil || err2 != nil {
		return packingrepo.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM packing_items WHERE external_id = $1 AND `+tripScope, itemUUID, tripUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return packingrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return nil
	}
	_, err = r.db.Exec(ctx, `DELETE FROM packing_items WHERE trip_id = (SELECT id FROM trips WHERE external_id = $1)`, tripUUID)
	return err
}

func scanItem(row pgx.Row) (domain.PackingItem, error) {
	var (
		item domain.PackingItem
		id   string
	)
	if err := row.Scan(&id, &item.Name, &item.Category, &item.Quantity, &item.Packed, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return domain.PackingItem{}, err
	}
	item.ID = domain.PackingItemID(id)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}
