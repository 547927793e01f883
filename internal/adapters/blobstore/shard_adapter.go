package blobstore

import (
	"encoding/json"
	"fmt"

	"context"

	"github.com/redis/go-redis/v9"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/repositories"
	redisclient "github.com/localdeck/directory-backend/internal/infrastructure/clients/redis"
	apperrors "github.com/localdeck/directory-backend/pkg/errors"
)

// ShardAdapter implements ListingShardRepository against the Redis blob store.
// Each locality's listings are stored as one JSON array blob under the
// locality's shard key.
type ShardAdapter struct {
	client *redisclient.Client
}

// NewShardAdapter creates a new shard adapter
func NewShardAdapter(client *redisclient.Client) repositories.ListingShardRepository {
	return &ShardAdapter{
		client: client,
	}
}

// shardRecord is the raw, partially-typed shape of one listing record inside a
// shard blob. It is validated and mapped into entities.Listing at this boundary
// so downstream components never handle untyped data.
type shardRecord struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Rating          *float64 `json:"rating"`
	ReviewCount     *int     `json:"review_count"`
	Photos          []string `json:"photos"`
	PhoneNumber     string   `json:"phone_number"`
	Website         string   `json:"website"`
	HasOpeningHours bool     `json:"has_opening_hours"`
	BusinessStatus  string   `json:"business_status"`
}

// GetShard retrieves the listing shard for one locality. A missing shard is a
// normal outcome and returns (nil, nil).
func (a *ShardAdapter) GetShard(ctx context.Context, locality *entities.Locality) ([]*entities.Listing, error) {
	data, err := a.client.Client().Get(ctx, locality.ShardKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to fetch shard %s", locality.ShardKey()), err)
	}

	return parseShard(data, locality)
}

// parseShard decodes a shard blob into typed listings, stamping the locality
// onto each record. Records without a stable identity (name and slug) are
// rejected as a whole-shard validation failure so the walker can count them.
func parseShard(data []byte, locality *entities.Locality) ([]*entities.Listing, error) {
	var records []shardRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("malformed shard %s: %v", locality.ShardKey(), err))
	}

	listings := make([]*entities.Listing, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" || rec.Slug == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("shard %s contains a record without name/slug", locality.ShardKey()))
		}
		listings = append(listings, &entities.Listing{
			Name:            rec.Name,
			Slug:            rec.Slug,
			State:           locality.State,
			StateSlug:       locality.StateSlug,
			City:            locality.City,
			CitySlug:        locality.CitySlug,
			Rating:          rec.Rating,
			ReviewCount:     rec.ReviewCount,
			Photos:          rec.Photos,
			PhoneNumber:     rec.PhoneNumber,
			Website:         rec.Website,
			HasOpeningHours: rec.HasOpeningHours,
			BusinessStatus:  rec.BusinessStatus,
		})
	}

	return listings, nil
}
