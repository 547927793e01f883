package services

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localdeck/directory-backend/internal/domain/entities"
)

type fakeLocalityRepo struct {
	localities []*entities.Locality
	err        error
}

func (r *fakeLocalityRepo) List(_ context.Context) ([]*entities.Locality, error) {
	return r.localities, r.err
}

func (r *fakeLocalityRepo) Upsert(_ context.Context, _ *entities.Locality) error {
	return nil
}

type fakeEnrichedRepo struct {
	index *entities.EnrichedIndex
	err   error
}

func (r *fakeEnrichedRepo) Get(_ context.Context) (*entities.EnrichedIndex, error) {
	return r.index, r.err
}

type fakeCache struct {
	values map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.values[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.values[key]
	return ok, nil
}

// catalogListing builds listings that hit exact scores: 90 needs rating 5,
// 200+ reviews, photo, phone and website; 70 needs rating 5 and 200 reviews;
// 50 needs rating 5 and a photo.
func catalogFixture() map[string][]*entities.Listing {
	ninety := &entities.Listing{
		Name: "Tidy Barber", Slug: "tidy-barber", StateSlug: "ca", CitySlug: "smalltown",
		Rating: floatPtr(5), ReviewCount: intPtr(400),
		Photos: []string{"p.jpg"}, PhoneNumber: "555-0101", Website: "https://tidy.example",
	}
	seventy := &entities.Listing{
		Name: "Dusty Motel", Slug: "dusty-motel", StateSlug: "ca", CitySlug: "smalltown",
		Rating: floatPtr(5), ReviewCount: intPtr(200),
	}
	fifty := &entities.Listing{
		Name: "Ghost Shop", Slug: "ghost-shop", StateSlug: "ca", CitySlug: "smalltown",
		Rating: floatPtr(5), Photos: []string{"p.jpg"},
	}
	return map[string][]*entities.Listing{
		"catalog:shard:ca:smalltown": {ninety, seventy, fifty},
	}
}

func newTestSitemapService(shards map[string][]*entities.Listing, enriched *fakeEnrichedRepo, cache *fakeCache) *SitemapService {
	repo := &fakeShardRepo{shards: shards}
	scoring := NewQualityScoringService()
	var cacheProvider = newFakeCache()
	if cache != nil {
		cacheProvider = cache
	}
	return NewSitemapService(
		&fakeLocalityRepo{localities: []*entities.Locality{
			locality("ca", "metropolis", intPtr(1000000)),
			locality("ca", "smalltown", intPtr(100)),
		}},
		enriched,
		NewCatalogWalkService(repo, scoring),
		NewTierAssemblyService(DefaultTiers(), 2500),
		NewSitemapRenderer("https://www.localdeck.com"),
		cacheProvider,
		nil,
		nil,
		WalkBudget{MaxLocalities: 450},
		3600,
	)
}

func TestGenerate_FullPipeline(t *testing.T) {
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}, nil)

	doc, report, err := svc.Generate(context.Background())
	require.NoError(t, err)

	var urlset entities.URLSet
	require.NoError(t, xml.Unmarshal(doc, &urlset))

	// Scores 90 and 70 land in the two tiers; the score-50 listing is dropped.
	require.Len(t, urlset.URLs, 2)
	assert.Equal(t, "https://www.localdeck.com/ca/smalltown/tidy-barber", urlset.URLs[0].Loc)
	assert.Equal(t, "0.9", urlset.URLs[0].Priority)
	assert.Equal(t, "https://www.localdeck.com/ca/smalltown/dusty-motel", urlset.URLs[1].Loc)
	assert.Equal(t, "0.7", urlset.URLs[1].Priority)

	assert.Equal(t, 2, report.LocalityCount)
	assert.Equal(t, 3, report.Walk.ListingsCollected)
	assert.Equal(t, 2, report.Tiers.TotalOutput)
	assert.False(t, report.Degraded)
}

func TestGenerate_ExcludesEnrichedURLsEvenTopScoring(t *testing.T) {
	enriched := &fakeEnrichedRepo{index: &entities.EnrichedIndex{
		Items: []entities.EnrichedIndexEntry{{URL: "/ca/smalltown/tidy-barber", Score: 90}},
	}}
	svc := newTestSitemapService(catalogFixture(), enriched, nil)

	doc, report, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, string(doc), "tidy-barber")
	assert.Equal(t, 1, report.Walk.ListingsExcluded)
	assert.Equal(t, 1, report.EnrichedIndexSize)
}

func TestGenerate_NoDuplicateURLs(t *testing.T) {
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}, nil)

	doc, _, err := svc.Generate(context.Background())
	require.NoError(t, err)

	var urlset entities.URLSet
	require.NoError(t, xml.Unmarshal(doc, &urlset))

	seen := map[string]bool{}
	for _, u := range urlset.URLs {
		assert.False(t, seen[u.Loc], "duplicate URL %s", u.Loc)
		seen[u.Loc] = true
	}
}

func TestGenerate_MissingEnrichedIndexDegradesOnly(t *testing.T) {
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{}, nil)

	doc, report, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Contains(t, string(doc), "tidy-barber")
}

func TestGenerate_UnreadableEnrichedIndexDegradesOnly(t *testing.T) {
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{err: errors.New("boom")}, nil)

	_, report, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Degraded)
}

func TestGenerate_EmptyCatalogRendersValidDocument(t *testing.T) {
	svc := newTestSitemapService(map[string][]*entities.Listing{}, &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}, nil)

	doc, report, err := svc.Generate(context.Background())
	require.NoError(t, err)

	var urlset entities.URLSet
	require.NoError(t, xml.Unmarshal(doc, &urlset))
	assert.Empty(t, urlset.URLs)
	assert.Equal(t, 0, report.Tiers.TotalOutput)
}

func TestGenerate_Idempotent(t *testing.T) {
	enriched := &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}

	first := newTestSitemapService(catalogFixture(), enriched, nil)
	second := newTestSitemapService(catalogFixture(), enriched, nil)

	docA, reportA, err := first.Generate(context.Background())
	require.NoError(t, err)
	docB, _, err := second.Generate(context.Background())
	require.NoError(t, err)

	// Strip nothing: with a fixed catalog the documents must be byte-identical
	// apart from lastmod, which both runs derive from their start date.
	assert.Equal(t, string(docA), string(docB))
	assert.NotEmpty(t, reportA.RunID)
}

func TestGenerate_PopulatesCache(t *testing.T) {
	cache := newFakeCache()
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}, cache)

	doc, _, err := svc.Generate(context.Background())
	require.NoError(t, err)

	cached, ok := svc.CachedDocument(context.Background())
	require.True(t, ok)
	assert.Equal(t, doc, cached)
}

func TestGenerate_LastReportRetained(t *testing.T) {
	svc := newTestSitemapService(catalogFixture(), &fakeEnrichedRepo{index: &entities.EnrichedIndex{}}, nil)

	assert.Nil(t, svc.LastReport())

	_, report, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report, svc.LastReport())
}

func TestGenerate_LocalityCatalogFailureIsFatal(t *testing.T) {
	svc := NewSitemapService(
		&fakeLocalityRepo{err: errors.New("db down")},
		&fakeEnrichedRepo{},
		NewCatalogWalkService(&fakeShardRepo{}, NewQualityScoringService()),
		NewTierAssemblyService(DefaultTiers(), 2500),
		NewSitemapRenderer("https://www.localdeck.com"),
		nil,
		nil,
		nil,
		WalkBudget{},
		3600,
	)

	_, _, err := svc.Generate(context.Background())
	assert.Error(t, err)
}
