// Package postgres holds the pieces shared by the pgx-backed adapters:
// the connection pool, the query surface the repositories depend on,
// Postgres error helpers and the embedded schema migrations.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/globetrotter/trip-planner-api/internal/domain"
)

// DB is the query surface used by the repositories. *pgxpool.Pool satisfies it,
// and so do pgxmock pools in unit tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrNilDB is returned by repositories constructed without a database handle.
var ErrNilDB = errors.New("nil postgres pool")

// Date encodes the calendar day of t for a DATE column.
func Date(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: true}
}
