package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/domain/providers"
	"github.com/localdeck/directory-backend/internal/domain/repositories"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
)

// SitemapCacheKey is the blob-store key under which the rendered sitemap
// document is cached between generation runs.
const SitemapCacheKey = "sitemap:listings:xml"

// GenerationReport captures the diagnostics of one generation run so the
// recover-and-continue behavior of the walk stays observable.
type GenerationReport struct {
	RunID             string    `json:"run_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	LocalityCount     int       `json:"locality_count"`
	EnrichedIndexSize int       `json:"enriched_index_size"`
	Degraded          bool      `json:"degraded"`
	Walk              WalkStats `json:"walk"`
	Tiers             TierStats `json:"tiers"`
}

// SitemapService orchestrates one generation run: load the locality catalog
// and the enriched-index exclusion set, walk the shards, assemble tiers,
// render the document and cache it.
type SitemapService struct {
	localities repositories.LocalityRepository
	enriched   repositories.EnrichedIndexRepository
	walker     *CatalogWalkService
	assembler  *TierAssemblyService
	renderer   *SitemapRenderer
	cache      providers.CacheProvider
	bus        providers.EventBus
	metrics    *observability.Metrics
	budget     WalkBudget
	cacheTTL   int

	mu         sync.RWMutex
	lastReport *GenerationReport
}

// NewSitemapService creates a new sitemap service. cache, bus and metrics are
// optional; generation works without them.
func NewSitemapService(
	localities repositories.LocalityRepository,
	enriched repositories.EnrichedIndexRepository,
	walker *CatalogWalkService,
	assembler *TierAssemblyService,
	renderer *SitemapRenderer,
	cache providers.CacheProvider,
	bus providers.EventBus,
	metrics *observability.Metrics,
	budget WalkBudget,
	cacheTTLSeconds int,
) *SitemapService {
	return &SitemapService{
		localities: localities,
		enriched:   enriched,
		walker:     walker,
		assembler:  assembler,
		renderer:   renderer,
		cache:      cache,
		bus:        bus,
		metrics:    metrics,
		budget:     budget,
		cacheTTL:   cacheTTLSeconds,
	}
}

// CachedDocument returns the cached rendered sitemap, if one exists.
func (s *SitemapService) CachedDocument(ctx context.Context) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	doc, err := s.cache.Get(ctx, SitemapCacheKey)
	if err != nil || len(doc) == 0 {
		return nil, false
	}
	return doc, true
}

// LastReport returns the report of the most recent generation run, or nil if
// none has completed yet.
func (s *SitemapService) LastReport() *GenerationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// Generate runs one full generation and returns the rendered document. A
// missing or unreadable enriched index degrades deduplication but never fails
// the run; a render fault is the one fatal outcome.
func (s *SitemapService) Generate(ctx context.Context) ([]byte, *GenerationReport, error) {
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	report := &GenerationReport{
		RunID:       uuid.NewString(),
		GeneratedAt: start,
	}

	localities, err := s.localities.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	report.LocalityCount = len(localities)

	exclusions := s.loadExclusions(ctx, report)

	collected, walkStats := s.walker.Walk(ctx, localities, exclusions, s.budget)
	report.Walk = walkStats

	assembled, tierStats := s.assembler.Assemble(collected)
	report.Tiers = tierStats

	doc, err := s.renderer.Render(assembled, start)
	if err != nil {
		s.publish(ctx, entities.NewSitemapEvent(report.RunID, entities.SitemapEventTypeFailed, 0, report.Degraded))
		return nil, nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, SitemapCacheKey, doc, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache rendered sitemap")
		}
	}

	if s.metrics != nil {
		observability.RecordGenerationMetric(ctx, s.metrics, tierStats.TotalOutput, report.Degraded, time.Since(start))
	}

	s.publish(ctx, entities.NewSitemapEvent(report.RunID, entities.SitemapEventTypeGenerated, tierStats.TotalOutput, report.Degraded))

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	logger.Info().
		Str("run_id", report.RunID).
		Int("localities", report.LocalityCount).
		Int("urls", tierStats.TotalOutput).
		Bool("degraded", report.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("Sitemap generation complete")

	return doc, report, nil
}

// loadExclusions builds the URL exclusion set from the enriched index. Absence
// or unreadability of the index weakens deduplication, so it is reported as a
// degraded run, never as a failure.
func (s *SitemapService) loadExclusions(ctx context.Context, report *GenerationReport) map[string]struct{} {
	logger := observability.LoggerFromContext(ctx)

	index, err := s.enriched.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Enriched index unreadable, deduplication degraded")
		report.Degraded = true
		return map[string]struct{}{}
	}
	if index == nil {
		logger.Warn().Msg("Enriched index absent, deduplication degraded")
		report.Degraded = true
		return map[string]struct{}{}
	}

	report.EnrichedIndexSize = len(index.Items)
	return index.ExclusionSet()
}

func (s *SitemapService) publish(ctx context.Context, event *entities.SitemapEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, providers.SitemapEventsChannel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to publish sitemap event")
	}
}
