package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/repositories"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/localdeck/directory-backend/pkg/errors"
)

// LocalityAdapter implements LocalityRepository
type LocalityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLocalityAdapter creates a new locality adapter
func NewLocalityAdapter(client *postgres.Client) repositories.LocalityRepository {
	return &LocalityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List retrieves all known localities with their population hints
func (a *LocalityAdapter) List(ctx context.Context) ([]*entities.Locality, error) {
	query, args, err := a.db.From("localities").
		Select("state", "state_slug", "city", "city_slug", "population").
		Order(goqu.C("state_slug").Asc(), goqu.C("city_slug").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build localities query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list localities", err)
	}
	defer rows.Close()

	var localities []*entities.Locality
	for rows.Next() {
		locality := &entities.Locality{}
		var population sql.NullInt64
		if err := rows.Scan(
			&locality.State,
			&locality.StateSlug,
			&locality.City,
			&locality.CitySlug,
			&population,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan locality", err)
		}
		if population.Valid {
			p := int(population.Int64)
			locality.Population = &p
		}
		localities = append(localities, locality)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate localities", err)
	}

	return localities, nil
}

// Upsert inserts or updates one locality row. Used by the seeding script.
func (a *LocalityAdapter) Upsert(ctx context.Context, locality *entities.Locality) error {
	record := goqu.Record{
		"state":      locality.State,
		"state_slug": locality.StateSlug,
		"city":       locality.City,
		"city_slug":  locality.CitySlug,
		"population": sql.NullInt64{Int64: int64(locality.PopulationOrZero()), Valid: locality.Population != nil},
	}

	query, args, err := a.db.Insert("localities").
		Rows(record).
		OnConflict(goqu.DoUpdate("state_slug, city_slug", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build locality upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert locality", err)
	}

	return nil
}
