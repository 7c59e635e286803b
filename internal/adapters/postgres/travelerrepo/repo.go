package travelerrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/travelerrepo"
)

const selectTraveler = `
	SELECT external_id::text, subject, display_name, email, avatar_url, created_at, updated_at
	FROM travelers
`

// Repo is a Postgres implementation of travelerrepo.Repository.
type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, t travelerrepo.Traveler) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid traveler id: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO travelers (
			external_id,
			subject,
			display_name,
			email,
			avatar_url,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		id,
		string(t.Subject),
		t.DisplayName,
		t.Email,
		t.AvatarURL,
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, "travelers_subject_unique"):
			return travelerrepo.ErrSubjectAlreadyBound
		case postgres.IsUniqueViolation(err, "travelers_external_id_unique"):
			return travelerrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, t travelerrepo.Traveler) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return travelerrepo.ErrNotFound
	}

	return postgres.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		// Subject binding is immutable.
		var subject string
		err := tx.QueryRow(ctx, `SELECT subject FROM travelers WHERE external_id = $1 FOR UPDATE`, id).Scan(&subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return travelerrepo.ErrNotFound
			}
			return err
		}
		if subject != string(t.Subject) {
			return travelerrepo.ErrSubjectAlreadyBound
		}

		_, err = tx.Exec(ctx, `
			UPDATE travelers
			SET display_name = $2,
			    email = $3,
			    avatar_url = $4,
			    updated_at = $5
			WHERE external_id = $1
		`,
			id,
			t.DisplayName,
			t.Email,
			t.AvatarURL,
			t.UpdatedAt.UTC(),
		)
		return err
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.TravelerID) (travelerrepo.Traveler, error) {
	if r.db == nil {
		return travelerrepo.Traveler{}, postgres.ErrNilDB
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return travelerrepo.Traveler{}, travelerrepo.ErrNotFound
	}
	return scanTraveler(r.db.QueryRow(ctx, selectTraveler+` WHERE external_id = $1`, uid))
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (travelerrepo.Traveler, error) {
	if r.db == nil {
		return travelerrepo.Traveler{}, postgres.ErrNilDB
	}
	return scanTraveler(r.db.QueryRow(ctx, selectTraveler+` WHERE subject = $1`, string(subject)))
}

func scanTraveler(row pgx.Row) (travelerrepo.Traveler, error) {
	var (
		t       travelerrepo.Traveler
		id      string
		subject string
	)
	if err := row.Scan(&id, &subject, &t.DisplayName, &t.Email, &t.AvatarURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return travelerrepo.Traveler{}, travelerrepo.ErrNotFound
		}
		return travelerrepo.Traveler{}, err
	}
	t.ID = domain.TravelerID(id)
	t.Subject = domain.SubjectID(subject)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
