package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/reelspot/backend/internal/adapters/database"
	"github.com/reelspot/backend/internal/api/handlers"
	"github.com/reelspot/backend/internal/api/routes"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/infrastructure/bootstrap"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
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
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize marker store
	store, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open marker store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Marker store ready")

	// Redis cache and event bus, or in-process events
	messaging := bootstrap.NewMessaging(&cfg.Redis, metrics)

	pipeline, err := bootstrap.NewPipeline(cfg, store, messaging, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire ingestion pipeline")
	}

	authService := services.NewAuthService(database.NewUserAdapter(store), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if !authService.Configured() {
		log.Warn().Msg("JWT_SECRET is empty, authenticated routes will answer 500")
	}

	// Set up router
	router := routes.NewRouter(
		routes.Handlers{
			Auth:    handlers.NewAuthHandler(authService),
			Ingest:  handlers.NewIngestHandler(pipeline.Ingestion),
			Markers: handlers.NewMarkerHandler(pipeline.Markers),
			Places:  handlers.NewPlacesHandler(pipeline.Places),
			Stream:  handlers.NewSSEHandler(messaging.EventBus),
		},
		authService,
		metrics,
		cfg.Server.AllowedOrigins,
	)

	// Create HTTP server. Ingestion and marker streams outlive a fixed write deadline.
	serverAddr := cfg.Server.Address()
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Close the event bus first so open marker streams end
	if err := messaging.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
