package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/localdeck/directory-backend/internal/adapters/blobstore"
	"github.com/localdeck/directory-backend/internal/adapters/cache"
	"github.com/localdeck/directory-backend/internal/adapters/database"
	"github.com/localdeck/directory-backend/internal/adapters/events"
	"github.com/localdeck/directory-backend/internal/api/handlers"
	"github.com/localdeck/directory-backend/internal/api/routes"
	"github.com/localdeck/directory-backend/internal/application/services"
	"github.com/localdeck/directory-backend/internal/domain/providers"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/redis"
	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
	"github.com/localdeck/directory-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", env).
		Msg("Starting API server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The catalog shards and enriched index live in
	// Redis, so unlike a plain cache this dependency is required.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis client initialized")

	// Initialize adapters
	localityRepo := database.NewLocalityAdapter(pgClient)
	shardRepo := blobstore.NewShardAdapter(redisClient)
	enrichedRepo := blobstore.NewEnrichedIndexAdapter(redisClient)
	cacheProvider := cache.NewRedisAdapter(redisClient)

	// Initialize event bus for generation notifications
	var eventBus providers.EventBus = events.NewRedisEventBus(redisClient)
	log.Info().Msg("Event bus initialized")

	// Listen for generation events from other processes
	eventListener := services.NewSitemapEventListener(eventBus)
	if err := eventListener.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start sitemap event listener")
	}

	// Initialize services
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
		metrics,
		budget,
		cfg.Sitemap.CacheTTLSeconds,
	)

	// Initialize handlers
	sitemapHandler := handlers.NewSitemapHandler(sitemapService, cfg.Sitemap.CacheTTLSeconds, metrics)

	// Set up router
	router := routes.NewRouter(sitemapHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	eventListener.Stop()

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
