package cityrepo

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/globetrotter/trip-planner-api/internal/adapters/postgres"
	"github.com/globetrotter/trip-planner-api/internal/domain"
	"github.com/globetrotter/trip-planner-api/internal/ports/out/cityrepo"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repo reads the destination catalogue seeded by the migrations.
type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

func selectCities() sq.SelectBuilder {
	return psql.Select("id::text", "name", "country", "cost_index", "image_url", "latitude", "longitude").From("cities")
}

func (r *Repo) GetByID(ctx context.Context, id domain.CityID) (domain.City, error) {
	if r.db == nil {
		return domain.City{}, postgres.ErrNilDB
	}
	cityUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.City{}, cityrepo.ErrNotFound
	}
	sql, args, err := selectCities().Where(sq.Eq{"id": cityUUID}).ToSql()
	if err != nil {
		return domain.City{}, err
	}
	c, err := scanCity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.City{}, cityrepo.ErrNotFound
		}
		return domain.City{}, err
	}
	return c, nil
}

func (r *Repo) Search(ctx context.Context, f cityrepo.SearchFilter) ([]domain.City, error) {
	if r.db == nil {
		return nil, postgres.ErrNilDB
	}
	q := selectCities().OrderBy("lower(name)", "id")
	if v := domain.NormalizeSearchQuery(f.Query); v != "" {
		q = q.Where("lower(name) LIKE ?", "%"+likeEscaper.Replace(v)+"%")
	}
	if v := domain.NormalizeSearchQuery(f.Country); v != "" {
		q = q.Where("lower(country) = ?", v)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
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

	out := make([]domain.City, 0)
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCity(row pgx.Row) (domain.City, error) {
	var (
		c  domain.City
		id string
	)
	if err := row.Scan(&id, &c.Name, &c.Country, &c.CostIndex, &c.ImageURL, &c.Latitude, &c.Longitude); err != nil {
		return domain.City{}, err
	}
	c.ID = domain.CityID(id)
	return c, nil
}
