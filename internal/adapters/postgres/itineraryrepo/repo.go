package itineraryrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/itineraryrepo"
)

// Repo is a Postgres implementation of itineraryrepo.Repository.
//
// Position uniqueness is enforced by deferrable constraints, so an order write
// may pass through duplicate positions inside its transaction.
type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Load(ctx context.Context, tripID domain.TripID) (itineraryrepo.Records, error) {
	out := itineraryrepo.Records{Stops: []domain.Stop{}, Activities: []domain.Activity{}}
	if r.db == nil {
		return out, postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.external_id::text, s.city_id::text, s.city, s.country,
		       s.start_date, s.end_date, s.notes, s.position, s.created_at
		FROM trip_stops s
		JOIN trips tr ON tr.id = s.trip_id
		WHERE tr.external_id = $1
		ORDER BY s.position
	`, tripUUID)
	if err != nil {
		return out, err
	}
	for rows.Next() {
		var (
			s      domain.Stop
			id     string
			cityID *string
		)
		if err := rows.Scan(&id, &cityID, &s.City, &s.Country, &s.StartDate, &s.EndDate, &s.Notes, &s.Position, &s.CreatedAt); err != nil {
			rows.Close()
			return out, err
		}
		s.ID = domain.StopID(id)
		s.TripID = tripID
		if cityID != nil {
			c := domain.CityID(*cityID)
			s.CityID = &c
		}
		s.StartDate = domain.DateOnly(s.StartDate)
		s.EndDate = domain.DateOnly(s.EndDate)
		s.CreatedAt = s.CreatedAt.UTC()
		out.Stops = append(out.Stops, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT a.external_id::text, s.external_id::text, a.title,
		       to_char(a.time_of_day, 'HH24:MI'), a.cost::text, a.notes,
		       a.activity_date, a.completed, a.position, a.created_at
		FROM itinerary_activities a
		JOIN trip_stops s ON s.id = a.stop_id
		JOIN trips tr ON tr.id = s.trip_id
		WHERE tr.external_id = $1
		ORDER BY s.position, a.position
	`, tripUUID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a                 domain.Activity
			id, stopID        string
			timeOfDay, amount string
			date              pgtype.Date
		)
		if err := rows.Scan(&id, &stopID, &a.Title, &timeOfDay, &amount, &a.Notes, &date, &a.Completed, &a.Position, &a.CreatedAt); err != nil {
			return out, err
		}
		a.ID = domain.ActivityID(id)
		a.StopID = domain.StopID(stopID)
		if a.Time, err = domain.ParseTimeOfDay(timeOfDay); err != nil {
			return out, fmt.Errorf("activity %s: %w", id, err)
		}
		if a.Cost, err = decimal.NewFromString(amount); err != nil {
			return out, fmt.Errorf("activity %s cost: %w", id, err)
		}
		if date.Valid {
			d := domain.DateOnly(date.Time)
			a.Date = &d
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out.Activities = append(out.Activities, a)
	}
	return out, rows.Err()
}

func (r *Repo) InsertStop(ctx context.Context, s domain.Stop) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	stopUUID, err := uuid.Parse(string(s.ID))
	if err != nil {
		return fmt.Errorf("invalid stop id: %w", err)
	}
	tripUUID, err := uuid.Parse(string(s.TripID))
	if err != nil {
		return itineraryrepo.ErrNotFound
	}
	var cityID *string
	if s.CityID != nil {
		v := string(*s.CityID)
		cityID = &v
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO trip_stops (
			external_id, trip_id, city_id, city, country,
			start_date, end_date, notes, position, created_at
		) VALUES (
			$1,
			(SELECT id FROM trips WHERE external_id = $2),
			$3::uuid, $4, $5, $6, $7, $8, $9, $10
		)
	`,
		stopUUID,
		tripUUID,
		cityID,
		s.City,
		s.Country,
		postgres.Date(s.StartDate),
		postgres.Date(s.EndDate),
		s.Notes,
		s.Position,
		s.CreatedAt.UTC(),
	)
	return mapWriteError(err)
}

func (r *Repo) DeleteStop(ctx context.Context, tripID domain.TripID, stopID domain.StopID, order itineraryrepo.StopOrder) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err1 := uuid.Parse(string(tripID))
	stopUUID, err2 := uuid.Parse(string(stopID))
	if err1 != nil || err2 != nil {
		return itineraryrepo.ErrNotFound
	}
	return postgres.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		// Activities follow via ON DELETE CASCADE.
		tag, err := tx.Exec(ctx, `
			DELETE FROM trip_stops
			WHERE external_id = $1 AND trip_id = (SELECT id FROM trips WHERE external_id = $2)
		`, stopUUID, tripUUID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return itineraryrepo.ErrNotFound
		}
		return writeStopOrder(ctx, tx, tripUUID, order)
	})
}

func (r *Repo) SetStopOrder(ctx context.Context, tripID domain.TripID, order itineraryrepo.StopOrder) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return itineraryrepo.ErrNotFound
	}
	return postgres.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		return writeStopOrder(ctx, tx, tripUUID, order)
	})
}

func (r *Repo) InsertActivity(ctx context.Context, a domain.Activity) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	activityUUID, err := uuid.Parse(string(a.ID))
	if err != nil {
		return fmt.Errorf("invalid activity id: %w", err)
	}
	stopUUID, err := uuid.Parse(string(a.StopID))
	if err != nil {
		return itineraryrepo.ErrNotFound
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO itinerary_activities (
			external_id, stop_id, title, time_of_day, cost, notes,
			activity_date, completed, position, created_at
		) VALUES (
			$1,
			(SELECT id FROM trip_stops WHERE external_id = $2),
			$3, $4::time, $5::numeric, $6, $7, $8, $9, $10
		)
	`,
		activityUUID,
		stopUUID,
		a.Title,
		a.Time.String(),
		a.Cost.String(),
		a.Notes,
		activityDate(a.Date),
		a.Completed,
		a.Position,
		a.CreatedAt.UTC(),
	)
	return mapWriteError(err)
}

func (r *Repo) DeleteActivity(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, order itineraryrepo.ActivityOrder) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	stopUUID, err1 := uuid.Parse(string(stopID))
	activityUUID, err2 := uuid.Parse(string(activityID))
	if err1 != nil || err2 != nil {
		return itineraryrepo.ErrNotFound
	}
	return postgres.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM itinerary_activities
			WHERE external_id = $1 AND stop_id = (SELECT id FROM trip_stops WHERE external_id = $2)
		`, activityUUID, stopUUID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return itineraryrepo.ErrNotFound
		}
		return writeActivityOrder(ctx, tx, stopUUID, order)
	})
}

func (r *Repo) SetActivityOrder(ctx context.Context, stopID domain.StopID, order itineraryrepo.ActivityOrder) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	stopUUID, err := uuid.Parse(string(stopID))
	if err != nil {
		return itineraryrepo.ErrNotFound
	}
	return postgres.RunInTx(ctx, r.db, func(tx pgx.Tx) error {
		return writeActivityOrder(ctx, tx, stopUUID, order)
	})
}

func (r *Repo) SetActivityCompleted(ctx context.Context, stopID domain.StopID, activityID domain.ActivityID, completed bool) error {
	if r.db == nil {
		return postgres.ErrNilDB
	}
	stopUUID, err1 := uuid.Parse(string(stopID))
	activityUUID, err2 := uuid.Parse(string(activityID))
	if err1 != nil || err2 != nil {
		return itineraryrepo.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE itinerary_activities SET completed = $3
		WHERE external_id = $1 AND stop_id = (SELECT id FROM trip_stops WHERE external_id = $2)
	`, activityUUID, stopUUID, completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itineraryrepo.ErrNotFound
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
	_, err = r.db.Exec(ctx, `
		DELETE FROM trip_stops WHERE trip_id = (SELECT id FROM trips WHERE external_id = $1)
	`, tripUUID)
	return err
}

// writeStopOrder updates one row per placement; a placement that matches no
// stop of the trip aborts the surrounding transaction.
func writeStopOrder(ctx context.Context, tx pgx.Tx, tripUUID uuid.UUID, order itineraryrepo.StopOrder) error {
	for _, p := range order {
		stopUUID, err := uuid.Parse(string(p.ID))
		if err != nil {
			return itineraryrepo.ErrNotFound
		}
		tag, err := tx.Exec(ctx, `
			UPDATE trip_stops SET position = $3
			WHERE external_id = $1 AND trip_id = (SELECT id FROM trips WHERE external_id = $2)
		`, stopUUID, tripUUID, p.Position)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return itineraryrepo.ErrNotFound
		}
	}
	return nil
}

func writeActivityOrder(ctx context.Context, tx pgx.Tx, stopUUID uuid.UUID, order itineraryrepo.ActivityOrder) error {
	for _, p := range order {
		activityUUID, err := uuid.Parse(string(p.ID))
		if err != nil {
			return itineraryrepo.ErrNotFound
		}
		tag, err := tx.Exec(ctx, `
			UPDATE itinerary_activities SET position = $3
			WHERE external_id = $1 AND stop_id = (SELECT id FROM trip_stops WHERE external_id = $2)
		`, activityUUID, stopUUID, p.Position)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return itineraryrepo.ErrNotFound
		}
	}
	return nil
}

func activityDate(d *time.Time) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return postgres.Date(*d)
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case postgres.IsUniqueViolation(err, ""):
		return itineraryrepo.ErrAlreadyExists
	case postgres.IsNotNullViolation(err), postgres.IsForeignKeyViolation(err):
		return itineraryrepo.ErrNotFound
	default:
		return err
	}
}
