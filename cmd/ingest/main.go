package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/infrastructure/bootstrap"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var sourceURL string
	var accountID int64
	var timeout time.Duration

	flag.StringVar(&sourceURL, "url", "", "Video link to ingest")
	flag.Int64Var(&accountID, "account", 0, "Account ID that owns the resulting marker")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Upper bound for the whole pipeline")
	flag.Parse()

	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("reelspot-ingest", cfg.App.Env, cfg.App.LogLevel)
	// Stdout carries the result
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	os.Exit(run(ctx, cfg, entities.IngestRequest{URL: sourceURL, AccountID: accountID}))
}

func run(ctx context.Context, cfg *config.Config, req entities.IngestRequest) int {
	// Setup store
	store, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open marker store")
		return 1
	}
	defer store.Close()

	messaging := bootstrap.NewMessaging(&cfg.Redis, nil)
	defer messaging.Close()

	pipeline, err := bootstrap.NewPipeline(cfg, store, messaging, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to wire ingestion pipeline")
		return 1
	}

	start := time.Now()
	result, err := pipeline.Ingestion.Ingest(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("Ingest failed")
		return 1
	}
	log.Info().Dur("elapsed", time.Since(start)).Bool("marker", result.Marker != nil).Msg("Ingest complete")

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Error().Err(err).Msg("Failed to write result")
		return 1
	}
	return 0
}
