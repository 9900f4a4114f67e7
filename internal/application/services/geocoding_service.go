package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
	"github.com/reelspot/backend/pkg/utils"
)

// GeocodingService resolves extracted place info to coordinates
type GeocodingService struct {
	provider providers.PlaceSearchProvider
	timeout  time.Duration
}

// NewGeocodingService creates a new geocoding service. A nil provider makes
// every lookup a skipped outcome.
func NewGeocodingService(provider providers.PlaceSearchProvider, timeout time.Duration) *GeocodingService {
	return &GeocodingService{provider: provider, timeout: timeout}
}

// Geocode takes the first search candidate for the place. Every failure mode
// is a soft outcome, never an error.
func (s *GeocodingService) Geocode(ctx context.Context, info *entities.ExtractedPlaceInfo) entities.StageOutcome[*entities.GeocodedPlace] {
	if info == nil {
		return entities.Skipped[*entities.GeocodedPlace]("no extracted place")
	}

	placeName := strings.TrimSpace(info.PlaceName)
	address := strings.TrimSpace(info.Address)
	city := strings.TrimSpace(info.City)
	if placeName == "" && address == "" {
		return entities.Skipped[*entities.GeocodedPlace]("no place name or address")
	}
	if s.provider == nil {
		return entities.Skipped[*entities.GeocodedPlace]("no place search provider configured")
	}

	query := BuildGeocodeQuery(info)

	runCtx, cancel := withStageTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.provider.TextSearch(runCtx, query)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", query).Msg("Place search failed")
		return entities.Failed[*entities.GeocodedPlace](fmt.Sprintf("place search failed: %v", err))
	}
	if len(candidates) == 0 {
		return entities.Failed[*entities.GeocodedPlace]("place search returned no results")
	}

	top := candidates[0]
	if top.Location == nil {
		return entities.Failed[*entities.GeocodedPlace]("top result has no coordinates")
	}
	if !entities.ValidCoordinates(top.Location.Latitude, top.Location.Longitude) {
		return entities.Failed[*entities.GeocodedPlace]("top result coordinates out of range")
	}

	name := strings.TrimSpace(top.Name)
	if name == "" {
		name = placeName
	}
	resolvedAddress := strings.TrimSpace(top.FormattedAddress)
	if resolvedAddress == "" {
		resolvedAddress = address
	}

	return entities.Ok(&entities.GeocodedPlace{
		Latitude:  top.Location.Latitude,
		Longitude: top.Location.Longitude,
		Name:      name,
		Address:   resolvedAddress,
		Emoji:     ResolveEmoji(info.Emoji, info.Cuisine, placeName+" "+address+" "+city),
	})
}

// BuildGeocodeQuery prefers the address verbatim, else "placeName, city"
// with empty parts dropped.
func BuildGeocodeQuery(info *entities.ExtractedPlaceInfo) string {
	if address := strings.TrimSpace(info.Address); address != "" {
		return address
	}
	parts := make([]string, 0, 2)
	for _, part := range []string{info.PlaceName, info.City} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// ResolveEmoji keeps a suggested symbol from the fixed set and otherwise
// classifies from cuisine and fallback text.
func ResolveEmoji(suggested, cuisine, fallback string) string {
	normalized := utils.NormalizeEmoji(suggested)
	if normalized != utils.EmojiPin && utils.IsKnownEmoji(normalized) {
		return normalized
	}
	return utils.ClassifyEmoji(cuisine, fallback)
}
