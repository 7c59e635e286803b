package idempotency

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/idempotency"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const upsertSuffix = `ON CONFLICT (idempotency_key, subject_iss, subject_sub, method, route, body_hash)
DO UPDATE SET status_code = EXCLUDED.status_code,
              content_type = EXCLUDED.content_type,
              body = EXCLUDED.body,
              created_at = EXCLUDED.created_at`

// Store keeps idempotency records in the idempotency_keys table.
//
// Records are scoped by token issuer as well as subject, so two identity
// providers minting the same "sub" never share replays.
type Store struct {
	db     postgres.DB
	issuer string

	// MaxAge hides records older than this from Get. Zero disables the check.
	MaxAge time.Duration
	now    func() time.Time
}

func NewStore(db postgres.DB, issuer string) *Store {
	return &Store{db: db, issuer: issuer, now: time.Now}
}

// scope lists the fingerprint columns in a fixed order so query arguments are stable.
func (s *Store) scope(fp idempotency.Fingerprint) sq.And {
	return sq.And{
		sq.Eq{"idempotency_key": string(fp.Key)},
		sq.Eq{"subject_iss": s.issuer},
		sq.Eq{"subject_sub": string(fp.Subject)},
		sq.Eq{"method": fp.Method},
		sq.Eq{"route": fp.Route},
		sq.Eq{"body_hash": fp.BodyHash},
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.db == nil {
		return idempotency.Record{}, false, postgres.ErrNilDB
	}
	where := s.scope(fp)
	if s.MaxAge > 0 {
		where = append(where, sq.Gt{"created_at": s.now().Add(-s.MaxAge).UTC()})
	}
	sql, args, err := psql.
		Select("status_code", "content_type", "body", "created_at").
		From("idempotency_keys").
		Where(where).
		ToSql()
	if err != nil {
		return idempotency.Record{}, false, err
	}

	var rec idempotency.Record
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.db == nil {
		return postgres.ErrNilDB
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	body := rec.Body
	if body == nil {
		body = []byte{}
	}
	sql, args, err := psql.
		Insert("idempotency_keys").
		Columns(
			"idempotency_key", "subject_iss", "subject_sub", "method", "route", "body_hash",
			"status_code", "content_type", "body", "created_at",
		).
		Values(
			string(fp.Key), s.issuer, string(fp.Subject), fp.Method, fp.Route, fp.BodyHash,
			rec.StatusCode, rec.ContentType, body, createdAt.UTC(),
		).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, sql, args...)
	return err
}
