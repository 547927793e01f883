package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

// fakeShardRepo serves shards from memory and records the order in which
// localities were visited.
type fakeShardRepo struct {
	shards  map[string][]*entities.Listing
	failing map[string]bool
	visited []string
}

func (r *fakeShardRepo) GetShard(_ context.Context, locality *entities.Locality) ([]*entities.Listing, error) {
	key := locality.ShardKey()
	r.visited = append(r.visited, key)
	if r.failing[key] {
		return nil, errors.New("connection reset")
	}
	return r.shards[key], nil
}

func locality(stateSlug, citySlug string, population *int) *entities.Locality {
	return &entities.Locality{
		State:      stateSlug,
		StateSlug:  stateSlug,
		City:       citySlug,
		CitySlug:   citySlug,
		Population: population,
	}
}

func shardListing(citySlug, slug string, rating float64) *entities.Listing {
	return &entities.Listing{
		Name:      slug,
		Slug:      slug,
		StateSlug: "ca",
		CitySlug:  citySlug,
		Rating:    &rating,
	}
}

func TestWalk_VisitsLargestPopulationFirst(t *testing.T) {
	repo := &fakeShardRepo{shards: map[string][]*entities.Listing{}}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	localities := []*entities.Locality{
		locality("ca", "smalltown", intPtr(100)),
		locality("ca", "metropolis", intPtr(1000000)),
		locality("ca", "nowhere", nil),
		locality("ca", "midville", intPtr(50000)),
	}

	_, stats := svc.Walk(context.Background(), localities, nil, WalkBudget{})

	assert.Equal(t, []string{
		"catalog:shard:ca:metropolis",
		"catalog:shard:ca:midville",
		"catalog:shard:ca:smalltown",
		"catalog:shard:ca:nowhere",
	}, repo.visited)
	assert.Equal(t, 4, stats.LocalitiesVisited)
	assert.Equal(t, 0, stats.LocalitiesWithData)
	assert.False(t, stats.BudgetExhausted)
}

func TestWalk_CollectsAndScoresListings(t *testing.T) {
	repo := &fakeShardRepo{shards: map[string][]*entities.Listing{
		"catalog:shard:ca:smalltown": {
			shardListing("smalltown", "tidy-barber", 5),
			shardListing("smalltown", "dusty-motel", 2),
		},
	}}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	localities := []*entities.Locality{
		locality("ca", "metropolis", intPtr(1000000)), // no shard data
		locality("ca", "smalltown", intPtr(100)),
	}

	collected, stats := svc.Walk(context.Background(), localities, nil, WalkBudget{})

	assert.Len(t, collected, 2)
	assert.Equal(t, "/ca/smalltown/tidy-barber", collected[0].URL)
	assert.Equal(t, 40, collected[0].Score)
	assert.Equal(t, 16, collected[1].Score)
	assert.Equal(t, 2, stats.ListingsCollected)
	assert.Equal(t, 1, stats.LocalitiesWithData)
}

func TestWalk_SkipsExcludedURLs(t *testing.T) {
	repo := &fakeShardRepo{shards: map[string][]*entities.Listing{
		"catalog:shard:ca:smalltown": {
			shardListing("smalltown", "tidy-barber", 5),
			shardListing("smalltown", "dusty-motel", 2),
		},
	}}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	exclusions := map[string]struct{}{
		"/ca/smalltown/tidy-barber": {},
	}

	collected, stats := svc.Walk(context.Background(), []*entities.Locality{
		locality("ca", "smalltown", intPtr(100)),
	}, exclusions, WalkBudget{})

	assert.Len(t, collected, 1)
	assert.Equal(t, "/ca/smalltown/dusty-motel", collected[0].URL)
	assert.Equal(t, 1, stats.ListingsExcluded)
}

func TestWalk_LocalityCountBudget(t *testing.T) {
	repo := &fakeShardRepo{shards: map[string][]*entities.Listing{}}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	localities := []*entities.Locality{
		locality("ca", "a", intPtr(500)),
		locality("ca", "b", intPtr(400)),
		locality("ca", "c", intPtr(300)),
		locality("ca", "d", intPtr(200)),
	}

	_, stats := svc.Walk(context.Background(), localities, nil, WalkBudget{MaxLocalities: 2})

	assert.Equal(t, 2, stats.LocalitiesVisited)
	assert.True(t, stats.BudgetExhausted)
}

func TestWalk_TimeBudgetWithFakeClock(t *testing.T) {
	repo := &fakeShardRepo{shards: map[string][]*entities.Listing{}}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	// Every clock read advances 30s; the 50s budget expires after the first
	// locality.
	current := time.Unix(0, 0)
	svc.now = func() time.Time {
		now := current
		current = current.Add(30 * time.Second)
		return now
	}

	localities := []*entities.Locality{
		locality("ca", "a", intPtr(500)),
		locality("ca", "b", intPtr(400)),
		locality("ca", "c", intPtr(300)),
	}

	_, stats := svc.Walk(context.Background(), localities, nil, WalkBudget{TimeBudget: 50 * time.Second})

	assert.Equal(t, 1, stats.LocalitiesVisited)
	assert.True(t, stats.BudgetExhausted)
}

func TestWalk_ShardErrorSkipsLocalityOnly(t *testing.T) {
	repo := &fakeShardRepo{
		shards: map[string][]*entities.Listing{
			"catalog:shard:ca:smalltown": {shardListing("smalltown", "tidy-barber", 4)},
		},
		failing: map[string]bool{"catalog:shard:ca:metropolis": true},
	}
	svc := NewCatalogWalkService(repo, NewQualityScoringService())

	localities := []*entities.Locality{
		locality("ca", "metropolis", intPtr(1000000)),
		locality("ca", "smalltown", intPtr(100)),
	}

	collected, stats := svc.Walk(context.Background(), localities, nil, WalkBudget{})

	assert.Len(t, collected, 1)
	assert.Equal(t, 1, stats.LocalitiesErrored)
	assert.Equal(t, 2, stats.LocalitiesVisited)
}
