package blobstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/repositories"
	redisclient "github.com/localdeck/directory-backend/internal/infrastructure/clients/redis"
	apperrors "github.com/localdeck/directory-backend/pkg/errors"
)

// EnrichedIndexKey is the fixed blob-store key of the precomputed enriched
// sitemap index.
const EnrichedIndexKey = "sitemap:enriched:v1"

// EnrichedIndexAdapter implements EnrichedIndexRepository against the Redis
// blob store.
type EnrichedIndexAdapter struct {
	client *redisclient.Client
}

// NewEnrichedIndexAdapter creates a new enriched index adapter
func NewEnrichedIndexAdapter(client *redisclient.Client) repositories.EnrichedIndexRepository {
	return &EnrichedIndexAdapter{
		client: client,
	}
}

// Get retrieves the enriched index. A missing index is a normal outcome and
// returns (nil, nil).
func (a *EnrichedIndexAdapter) Get(ctx context.Context) (*entities.EnrichedIndex, error) {
	data, err := a.client.Client().Get(ctx, EnrichedIndexKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch enriched index", err)
	}

	var index entities.EnrichedIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, apperrors.NewValidationError("malformed enriched index blob")
	}

	return &index, nil
}
