package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/reelspot/backend/internal/adapters/database"
	"github.com/reelspot/backend/internal/adapters/events"
	"github.com/reelspot/backend/internal/application/services"
	"github.com/reelspot/backend/internal/infrastructure/bootstrap"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/pkg/config"
	apperrors "github.com/reelspot/backend/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	demoUsername = "demo"
	demoPassword = "demo-pass"
)

type seedMarker struct {
	lat, lng      float64
	name, address string
	emoji         string
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("reelspot-seed", cfg.App.Env, cfg.App.LogLevel)

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open marker store")
	}
	defer store.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing markers and users before seeding")
		for _, stmt := range []string{"DELETE FROM markers", "DELETE FROM users"} {
			if _, err := store.DB().ExecContext(ctx, stmt); err != nil {
				log.Fatal().Err(err).Str("statement", stmt).Msg("Failed to reset tables")
			}
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "seed-only-secret"
	}
	users := database.NewUserAdapter(store)
	auth := services.NewAuthService(users, secret, cfg.Auth.TokenTTL)

	// 1. Seed the demo account
	var accountID int64
	session, err := auth.Register(ctx, demoUsername, demoPassword)
	switch {
	case err == nil:
		accountID = session.User.ID
		log.Info().Int64("user_id", accountID).Str("username", demoUsername).Msg("Created demo account")
	case apperrors.IsType(err, apperrors.ErrorTypeConflict):
		existing, err := users.GetByUsername(ctx, demoUsername)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load demo account")
		}
		accountID = existing.ID
		log.Info().Int64("user_id", accountID).Msg("Demo account already exists")
	default:
		log.Fatal().Err(err).Msg("Failed to create demo account")
	}

	// 2. Seed markers
	markers := services.NewMarkerService(database.NewMarkerAdapter(store), events.NewMemoryEventBus(), nil)
	seeds := []seedMarker{
		{lat: 40.7308, lng: -73.9973, name: "Joe's Pizza", address: "7 Carmine St, New York, NY", emoji: "🍕"},
		{lat: 40.7223, lng: -73.9875, name: "Katz's Delicatessen", address: "205 E Houston St, New York, NY"},
		{lat: 40.7265, lng: -73.9815, name: "Ippudo", address: "65 4th Ave, New York, NY", emoji: "🍜"},
		{lat: 40.7193, lng: -74.0005, name: "Blue Bottle Coffee", address: "450 W 15th St, New York, NY"},
	}
	created := 0
	for _, m := range seeds {
		lat, lng := m.lat, m.lng
		marker, err := markers.Create(ctx, accountID, services.MarkerInput{
			Latitude:  &lat,
			Longitude: &lng,
			Name:      m.name,
			Address:   m.address,
			Emoji:     m.emoji,
		})
		if err != nil {
			log.Error().Err(err).Str("name", m.name).Msg("Failed to create marker")
			continue
		}
		created++
		log.Debug().Int64("marker_id", marker.ID).Str("emoji", marker.Emoji).Msg("Seeded marker")
	}

	log.Info().Int("markers", created).Int64("user_id", accountID).Msg("Seeding complete")
}
