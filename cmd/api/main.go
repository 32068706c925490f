package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/cache"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/database"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/events"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/providers/geolocation"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/api/handlers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/api/routes"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/application/services"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/repositories"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/restaurantdiscovery/backend/pkg/config"
	"github.com/zatekoja/restaurantdiscovery/backend/pkg/secrets"
)

func main() {
	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Vault credentials have to be in the environment before configuration is read
	_ = godotenv.Load()
	vault, err := secrets.Apply(ctx, secrets.LoadVaultConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load secrets from vault: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)
	if vault.Enabled {
		log.Info().Str("path", vault.Path).Strs("loaded", vault.Loaded).Strs("skipped", vault.Skipped).Msg("Applied Vault secrets")
	}

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Failed to shut down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	health := handlers.NewHealthHandler().AddCheck("postgres", pgClient.Ping)

	var repo repositories.RestaurantRepository = database.NewRestaurantAdapter(pgClient, metrics)

	// Redis is optional: without it every search reads the snapshot from PostgreSQL
	var (
		eventBus     providers.EventBus
		invalidation *services.CacheInvalidationService
		warming      *services.CacheWarmingService
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, snapshot caching disabled")
		} else {
			defer redisClient.Close()
			health.AddCheck("redis", redisClient.Ping)

			cached := database.NewCachedRestaurantAdapter(repo, cache.NewRedisAdapter(redisClient), cfg.Search.SnapshotTTL, metrics)
			repo = cached

			eventBus = events.NewRedisEventBus(redisClient)
			invalidation = services.NewCacheInvalidationService(cached, eventBus)
			if err := invalidation.Start(); err != nil {
				log.Warn().Err(err).Msg("Failed to start cache invalidation")
				invalidation = nil
			}
			warming = services.NewCacheWarmingService(cached, cfg.Search.WarmCountries, cfg.Search.WarmInterval)
			warming.Start()
			log.Info().Dur("ttl", cfg.Search.SnapshotTTL).Msg("Snapshot caching enabled")
		}
	}

	geocoder, err := newGeocoder(cfg.Geolocation, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure geolocation provider")
	}
	resolver := services.NewAddressResolver(geocoder, cfg.Geolocation.Timeout)

	searchService := services.NewRestaurantSearchService(
		repo,
		resolver,
		services.WithTimezone(cfg.Search.Timezone),
		services.WithMetrics(metrics),
	)

	router := routes.NewRouter(
		handlers.NewRestaurantHandler(searchService),
		handlers.NewGeolocationHandler(resolver),
		health,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if warming != nil {
		warming.Stop()
	}
	if invalidation != nil {
		invalidation.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event bus")
		}
	}

	log.Info().Msg("Server exited")
}

// newGeocoder picks the geocoding backend from configuration. Remote
// providers are wrapped with rate limiting, retries and a circuit breaker.
func newGeocoder(cfg config.GeolocationConfig, metrics *observability.Metrics) (providers.Geocoder, error) {
	switch cfg.Provider {
	case "google":
		if cfg.APIKey == "" {
			return nil, errors.New("GEOLOCATION_API_KEY is required for the google provider")
		}
		google := geolocation.NewGoogleGeocoderWithOptions(cfg.APIKey, cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
		log.Info().Msg("Using Google Maps geocoder")
		return geolocation.NewResilientGeocoder(google, geolocation.ResilienceOptions{
			Name:            "google",
			RateLimit:       cfg.RateLimit,
			MaxAttempts:     cfg.MaxAttempts,
			BreakerFailures: cfg.BreakerFailures,
			Metrics:         metrics,
		}), nil
	case "", "mock":
		log.Info().Msg("Using mock geocoder")
		return geolocation.NewMockGeocoder(), nil
	default:
		return nil, fmt.Errorf("unknown geolocation provider %q", cfg.Provider)
	}
}
