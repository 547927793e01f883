package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/localdeck/directory-backend/internal/adapters/blobstore"
	"github.com/localdeck/directory-backend/internal/adapters/cache"
	"github.com/localdeck/directory-backend/internal/adapters/database"
	"github.com/localdeck/directory-backend/internal/adapters/events"
	"github.com/localdeck/directory-backend/internal/application/services"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/redis"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
	"github.com/localdeck/directory-backend/pkg/config"
)

func main() {
	var intervalFlag string
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for sitemap generation (e.g. 24h, 6h)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("SITEMAP_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("Invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger("directory-backend-sitemap", env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := generateOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Sitemap generation failed")
		}

		if interval <= 0 {
			break
		}

		log.Info().Dur("next_run_in", interval).Msg("Sitemap generation complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Sitemap generator shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func generateOnce(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	localityRepo := database.NewLocalityAdapter(pgClient)
	shardRepo := blobstore.NewShardAdapter(redisClient)
	enrichedRepo := blobstore.NewEnrichedIndexAdapter(redisClient)
	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	scoringService := services.NewQualityScoringService()
	walkService := services.NewCatalogWalkService(shardRepo, scoringService)
	assemblyService := services.NewTierAssemblyService(services.DefaultTiers(), cfg.Sitemap.MaxURLs)
	renderer := services.NewSitemapRenderer(cfg.Sitemap.BaseURL)

	budget := services.WalkBudget{
		TimeBudget:    time.Duration(cfg.Sitemap.TimeBudgetSeconds) * time.Second,
		MaxLocalities: cfg.Sitemap.MaxLocalities,
	}

	sitemapService := services.NewSitemapService(
		localityRepo,
		enrichedRepo,
		walkService,
		assemblyService,
		renderer,
		cacheProvider,
		eventBus,
		nil,
		budget,
		cfg.Sitemap.CacheTTLSeconds,
	)

	doc, report, err := sitemapService.Generate(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", report.RunID).
		Int("url_count", report.Tiers.TotalOutput).
		Int("localities_visited", report.Walk.LocalitiesVisited).
		Int("bytes", len(doc)).
		Bool("degraded", report.Degraded).
		Msg("Sitemap generated")

	return nil
}
