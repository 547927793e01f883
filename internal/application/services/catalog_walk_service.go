package services

import (
	"context"
	"sort"
	"time"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/repositories"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
)

// WalkBudget bounds one catalog walk. A zero or negative value disables that
// budget.
type WalkBudget struct {
	// TimeBudget is the soft wall-clock deadline, checked between localities.
	TimeBudget time.Duration

	// MaxLocalities caps how many localities the walk may visit.
	MaxLocalities int
}

// WalkStats describes how much of the catalog one walk actually covered.
// Skipped and errored shards are counted here rather than surfaced as
// failures; sparse coverage is expected.
type WalkStats struct {
	LocalitiesVisited  int           `json:"localities_visited"`
	LocalitiesWithData int           `json:"localities_with_data"`
	LocalitiesErrored  int           `json:"localities_errored"`
	ListingsCollected  int           `json:"listings_collected"`
	ListingsExcluded   int           `json:"listings_excluded"`
	Elapsed            time.Duration `json:"elapsed_ns"`
	BudgetExhausted    bool          `json:"budget_exhausted"`
}

// CatalogWalkService walks the population-ordered locality list, loading each
// locality's shard, scoring its listings and excluding those already claimed
// by the enriched index.
type CatalogWalkService struct {
	shards  repositories.ListingShardRepository
	scoring *QualityScoringService

	// now is replaceable in tests so budget behavior can run on a fake clock.
	now func() time.Time
}

// NewCatalogWalkService creates a new catalog walk service
func NewCatalogWalkService(shards repositories.ListingShardRepository, scoring *QualityScoringService) *CatalogWalkService {
	return &CatalogWalkService{
		shards:  shards,
		scoring: scoring,
		now:     time.Now,
	}
}

// Walk iterates localities by descending population under the given budgets
// and returns every scored, non-excluded listing it reached. Exceeding a
// budget ends the walk cleanly with partial results; a shard read error skips
// that locality only.
func (s *CatalogWalkService) Walk(ctx context.Context, localities []*entities.Locality, exclusions map[string]struct{}, budget WalkBudget) ([]*entities.ScoredListing, WalkStats) {
	logger := observability.LoggerFromContext(ctx)
	start := s.now()

	ordered := orderByPopulation(localities)

	var collected []*entities.ScoredListing
	stats := WalkStats{}

	for _, locality := range ordered {
		if ctx.Err() != nil {
			stats.BudgetExhausted = true
			break
		}
		if budget.MaxLocalities > 0 && stats.LocalitiesVisited >= budget.MaxLocalities {
			stats.BudgetExhausted = true
			break
		}
		if budget.TimeBudget > 0 && s.now().Sub(start) >= budget.TimeBudget {
			stats.BudgetExhausted = true
			break
		}

		stats.LocalitiesVisited++

		listings, err := s.shards.GetShard(ctx, locality)
		if err != nil {
			stats.LocalitiesErrored++
			logger.Warn().
				Str("state", locality.StateSlug).
				Str("city", locality.CitySlug).
				Err(err).
				Msg("Shard read failed, skipping locality")
			continue
		}
		if len(listings) == 0 {
			continue
		}

		stats.LocalitiesWithData++
		for _, listing := range listings {
			url := listing.URL()
			if _, excluded := exclusions[url]; excluded {
				stats.ListingsExcluded++
				continue
			}
			collected = append(collected, &entities.ScoredListing{
				Listing: listing,
				Score:   s.scoring.Score(listing),
				URL:     url,
			})
		}
	}

	stats.Elapsed = s.now().Sub(start)
	stats.ListingsCollected = len(collected)

	logger.Info().
		Int("localities_visited", stats.LocalitiesVisited).
		Int("localities_with_data", stats.LocalitiesWithData).
		Int("localities_errored", stats.LocalitiesErrored).
		Int("listings_collected", stats.ListingsCollected).
		Int("listings_excluded", stats.ListingsExcluded).
		Dur("elapsed", stats.Elapsed).
		Bool("budget_exhausted", stats.BudgetExhausted).
		Msg("Catalog walk complete")

	return collected, stats
}

// orderByPopulation returns the localities sorted by descending population.
// Unknown populations sort last, so well-known cities are covered first when
// the walk terminates early. State and city slugs break ties to keep the
// processing order deterministic.
func orderByPopulation(localities []*entities.Locality) []*entities.Locality {
	ordered := make([]*entities.Locality, len(localities))
	copy(ordered, localities)

	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].PopulationOrZero(), ordered[j].PopulationOrZero()
		if pi != pj {
			return pi > pj
		}
		if ordered[i].StateSlug != ordered[j].StateSlug {
			return ordered[i].StateSlug < ordered[j].StateSlug
		}
		return ordered[i].CitySlug < ordered[j].CitySlug
	})

	return ordered
}
