package repositories

import (
	"context"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// ListingShardRepository defines the interface for reading per-locality
// listing shards from the blob store.
type ListingShardRepository interface {
	// GetShard retrieves the listing shard for one locality. A missing shard
	// is a normal outcome and returns (nil, nil); sparse coverage is expected.
	GetShard(ctx context.Context, locality *entities.Locality) ([]*entities.Listing, error)
}
