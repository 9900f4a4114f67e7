package geolocation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
)

// MockPlacesProvider answers place searches from a small city table, for
// local runs without a Places API key.
type MockPlacesProvider struct{}

// NewMockPlacesProvider creates a new mock place search provider
func NewMockPlacesProvider() *MockPlacesProvider {
	return &MockPlacesProvider{}
}

var mockCities = []struct {
	name   string
	coords entities.Coordinates
}{
	{"new york", entities.Coordinates{Latitude: 40.7128, Longitude: -74.0060}},
	{"los angeles", entities.Coordinates{Latitude: 34.0522, Longitude: -118.2437}},
	{"chicago", entities.Coordinates{Latitude: 41.8781, Longitude: -87.6298}},
	{"toronto", entities.Coordinates{Latitude: 43.6532, Longitude: -79.3832}},
	{"london", entities.Coordinates{Latitude: 51.5072, Longitude: -0.1276}},
	{"tokyo", entities.Coordinates{Latitude: 35.6762, Longitude: 139.6503}},
	{"lagos", entities.Coordinates{Latitude: 6.5244, Longitude: 3.3792}},
}

// TextSearch returns one candidate located in the first city named in query,
// or San Francisco when none matches.
func (m *MockPlacesProvider) TextSearch(ctx context.Context, query string) ([]entities.PlaceCandidate, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []entities.PlaceCandidate{}, nil
	}

	coords := entities.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	lower := strings.ToLower(trimmed)
	for _, city := range mockCities {
		if strings.Contains(lower, city.name) {
			coords = city.coords
			break
		}
	}

	name := trimmed
	if i := strings.Index(trimmed, ","); i > 0 {
		name = strings.TrimSpace(trimmed[:i])
	}
	return []entities.PlaceCandidate{{
		PlaceID:          "mock-" + hashKey(lower)[:12],
		Name:             name,
		FormattedAddress: trimmed,
		Location:         &coords,
	}}, nil
}

// Autocomplete returns a single prediction echoing input
func (m *MockPlacesProvider) Autocomplete(ctx context.Context, input, sessionToken string) (*providers.RawPlacesResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"status": "OK",
		"predictions": []map[string]string{{
			"description": input,
			"place_id":    "mock-" + hashKey(strings.ToLower(input))[:12],
		}},
	})
	if err != nil {
		return nil, err
	}
	return &providers.RawPlacesResponse{StatusCode: http.StatusOK, Body: body}, nil
}

// Details returns a fixed location for any place ID
func (m *MockPlacesProvider) Details(ctx context.Context, placeID, sessionToken string) (*providers.RawPlacesResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"status": "OK",
		"result": map[string]interface{}{
			"name":              "Mock Place",
			"formatted_address": "1 Market St, San Francisco, CA",
			"geometry": map[string]interface{}{
				"location": map[string]float64{"lat": 37.7749, "lng": -122.4194},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &providers.RawPlacesResponse{StatusCode: http.StatusOK, Body: body}, nil
}
