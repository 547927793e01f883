package repositories

import (
	"context"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// EnrichedIndexRepository defines the interface for loading the precomputed
// enriched sitemap index.
type EnrichedIndexRepository interface {
	// Get retrieves the enriched index. A missing index is a normal outcome
	// and returns (nil, nil).
	Get(ctx context.Context) (*entities.EnrichedIndex, error)
}
