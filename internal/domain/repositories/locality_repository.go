package repositories

import (
	"context"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// LocalityRepository defines the interface for the locality catalog.
type LocalityRepository interface {
	// List retrieves all known localities with their population hints.
	List(ctx context.Context) ([]*entities.Locality, error)

	// Upsert inserts or updates one locality.
	Upsert(ctx context.Context, locality *entities.Locality) error
}
