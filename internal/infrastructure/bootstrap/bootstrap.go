// Package bootstrap builds the collaborators shared by the API server and the
// ingest CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/reelspot/backend/internal/adapters/cache"
	"github.com/reelspot/backend/internal/adapters/database"
	"github.com/reelspot/backend/internal/adapters/events"
	"github.com/reelspot/backend/internal/adapters/providers/geolocation"
	"github.com/reelspot/backend/internal/adapters/providers/media"
	"github.com/reelspot/backend/internal/adapters/providers/transcription"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/clients/ollama"
	"github.com/reelspot/backend/internal/infrastructure/clients/openai"
	"github.com/reelspot/backend/internal/infrastructure/clients/postgres"
	"github.com/reelspot/backend/internal/infrastructure/clients/redis"
	"github.com/reelspot/backend/internal/infrastructure/clients/sqlite"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/internal/infrastructure/process"
	"github.com/reelspot/backend/pkg/config"
	"github.com/rs/zerolog/log"
)

const (
	GeolocationProviderGoogle = "google"
	GeolocationProviderMock   = "mock"

	LLMProviderOllama = "ollama"
	LLMProviderOpenAI = "openai"
)

// StoreClient is a migrated marker store connection
type StoreClient interface {
	database.Client
	Close() error
}

// OpenStore opens the configured database and applies the schema
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (StoreClient, error) {
	var (
		client StoreClient
		err    error
	)
	switch cfg.Driver {
	case "postgres":
		client, err = postgres.NewClient(cfg)
	case "", "sqlite":
		client, err = sqlite.NewClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, client); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Messaging holds the optional Redis connection and what is built on it
type Messaging struct {
	Cache    providers.CacheProvider
	EventBus providers.EventBus
	redis    *redis.Client
}

// Close closes the event bus and the Redis connection, if any
func (m *Messaging) Close() error {
	var firstErr error
	if m.EventBus != nil {
		firstErr = m.EventBus.Close()
	}
	if m.redis != nil {
		if err := m.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewMessaging connects to Redis when enabled. Without Redis there is no
// cache and marker events stay in process.
func NewMessaging(cfg *config.RedisConfig, metrics *observability.Metrics) *Messaging {
	if !cfg.Enabled {
		return &Messaging{EventBus: events.NewMemoryEventBus()}
	}

	client, err := redis.NewClient(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache and with in-process events")
		return &Messaging{EventBus: events.NewMemoryEventBus()}
	}

	log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis client initialized")
	return &Messaging{
		Cache:    cache.NewRedisAdapter(client.Client(), metrics),
		EventBus: events.NewRedisEventBus(client.Client()),
		redis:    client,
	}
}

// NewPlaceSearchProvider creates the place search backend named by cfg.Provider. cache may be nil.
func NewPlaceSearchProvider(cfg config.GeolocationConfig, cacheProvider providers.CacheProvider) (providers.PlaceSearchProvider, error) {
	switch cfg.Provider {
	case "", GeolocationProviderGoogle:
		return geolocation.NewGooglePlacesProviderWithOptions(cfg.APIKey, cacheProvider, cfg.BaseURL, nil), nil
	case GeolocationProviderMock:
		return geolocation.NewMockPlacesProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported geolocation provider: %s", cfg.Provider)
	}
}

// NewTextGenerator creates the language model backend used for place extraction
func NewTextGenerator(cfg config.LLMConfig, metrics *observability.Metrics) (providers.TextGenerator, error) {
	switch cfg.Provider {
	case "", LLMProviderOllama:
		return ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, metrics), nil
	case LLMProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, openai.Options{
			ChatModel:    cfg.OpenAIModel,
			RateLimitRPM: cfg.OpenAIRateLimitRPM,
			Metrics:      metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// Pipeline is the wired ingestion pipeline and the marker service it persists through
type Pipeline struct {
	Ingestion *services.IngestionService
	Markers   *services.MarkerService
	Places    providers.PlaceSearchProvider
}

// NewPipeline wires acquisition, transcription, extraction, geocoding and persistence
func NewPipeline(cfg *config.Config, store database.Client, messaging *Messaging, metrics *observability.Metrics) (*Pipeline, error) {
	runner := process.NewExecRunner()

	places, err := NewPlaceSearchProvider(cfg.Geolocation, messaging.Cache)
	if err != nil {
		return nil, err
	}

	generator, err := NewTextGenerator(cfg.LLM, metrics)
	if err != nil {
		return nil, err
	}

	transcriber, err := transcription.NewTranscriber(cfg.Transcription, cfg.LLM.OpenAIAPIKey, cfg.Timeouts.Transcribe, runner, metrics)
	if err != nil {
		return nil, err
	}

	markers := services.NewMarkerService(database.NewMarkerAdapter(store), messaging.EventBus, metrics)
	ingestion := services.NewIngestionService(
		media.NewYTDLPAcquirer(cfg.Media, cfg.Timeouts, runner),
		transcriber,
		services.NewPlaceExtractionService(generator, cfg.Timeouts.Extract),
		services.NewGeocodingService(places, cfg.Timeouts.Geocode),
		markers,
		metrics,
	)

	log.Info().
		Str("llm", generator.Name()).
		Str("stt", cfg.Transcription.Provider).
		Str("geolocation", cfg.Geolocation.Provider).
		Msg("Ingestion pipeline wired")

	return &Pipeline{Ingestion: ingestion, Markers: markers, Places: places}, nil
}
