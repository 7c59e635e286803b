package triprepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/triprepo"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var tripColumns = []string{
	"tr.external_id::text",
	"t.external_id::text",
	"tr.name",
	"tr.description",
	"tr.start_date",
	"tr.end_date",
	"tr.cover_image",
	"tr.is_public",
	"tr.share_code",
	"tr.created_at",
	"tr.updated_at",
}

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}
	ownerUUID, err := uuid.Parse(string(t.OwnerID))
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO trips (
			external_id,
			owner_traveler_id,
			name,
			description,
			start_date,
			end_date,
			cover_image,
			is_public,
			share_code,
			created_at,
			updated_at
		) VALUES (
			$1,
			(SELECT id FROM travelers WHERE external_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`,
		tripUUID,
		ownerUUID,
		t.Name,
		t.Description,
		postgres.Date(t.StartDate),
		postgres.Date(t.EndDate),
		t.CoverImage,
		t.IsPublic,
		t.ShareCode,
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return triprepo.ErrAlreadyExists
		}
		if postgres.IsNotNullViolation(err) {
			return fmt.Errorf("trip owner %s: %w", t.OwnerID, triprepo.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(t.ID))
	if err != nil {
		return triprepo.ErrNotFound
	}

	// The owner is immutable and therefore not part of the update.
	tag, err := r.db.Exec(ctx, `
		UPDATE trips
		SET name = $2,
		    description = $3,
		    start_date = $4,
		    end_date = $5,
		    cover_image = $6,
		    is_public = $7,
		    share_code = $8,
		    updated_at = $9
		WHERE external_id = $1
	`,
		tripUUID,
		t.Name,
		t.Description,
		postgres.Date(t.StartDate),
		postgres.Date(t.EndDate),
		t.CoverImage,
		t.IsPublic,
		t.ShareCode,
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "trips_share_code_unique") {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

// Delete removes the trip; stops, activities and packing items go with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(id))
	if err != nil {
		return triprepo.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE external_id = $1`, tripUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	tripUUID, err := uuid.Parse(string(id))
	if err != nil {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return r.getOne(ctx, sq.Eq{"tr.external_id": tripUUID})
}

func (r *Repo) GetByShareCode(ctx context.Context, code string) (triprepo.Trip, error) {
	return r.getOne(ctx, sq.Eq{"tr.share_code": code})
}

func (r *Repo) ListByOwner(ctx context.Context, owner domain.TravelerID) ([]triprepo.Trip, error) {
	ownerUUID, err := uuid.Parse(string(owner))
	if err != nil {
		return []triprepo.Trip{}, nil
	}
	q := baseSelect().
		Where(sq.Eq{"t.external_id": ownerUUID}).
		OrderBy("tr.start_date ASC", "tr.created_at ASC", "tr.external_id ASC")
	return r.list(ctx, q)
}

func (r *Repo) ListPublic(ctx context.Context, limit int) ([]triprepo.Trip, error) {
	q := baseSelect().
		Where(sq.Eq{"tr.is_public": true}).
		OrderBy("tr.created_at DESC", "tr.external_id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.list(ctx, q)
}

func baseSelect() sq.SelectBuilder {
	return psql.Select(tripColumns...).
		From("trips tr").
		Join("travelers t ON t.id = tr.owner_traveler_id")
}

func (r *Repo) getOne(ctx context.Context, where sq.Sqlizer) (triprepo.Trip, error) {
	if r.db == nil {
		return triprepo.Trip{}, postgres.ErrNilDB
	}
	sql, args, err := baseSelect().Where(where).ToSql()
	if err != nil {
		return triprepo.Trip{}, err
	}
	t, err := scanTrip(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triprepo.Trip{}, triprepo.ErrNotFound
		}
		return triprepo.Trip{}, err
	}
	return t, nil
}

func (r *Repo) list(ctx context.Context, q sq.SelectBuilder) ([]triprepo.Trip, error) {
	if r.db == nil {
		return nil, postgres.ErrNilDB
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]triprepo.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrip(row pgx.Row) (triprepo.Trip, error) {
	var (
		t       triprepo.Trip
		id      string
		ownerID string
	)
	if err := row.Scan(
		&id,
		&ownerID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.CoverImage,
		&t.IsPublic,
		&t.ShareCode,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return triprepo.Trip{}, err
	}
	t.ID = domain.TripID(id)
	t.OwnerID = domain.TravelerID(ownerID)
	t.StartDate = domain.DateOnly(t.StartDate)
	t.EndDate = domain.DateOnly(t.EndDate)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

