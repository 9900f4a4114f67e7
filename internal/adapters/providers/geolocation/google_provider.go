package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	googleMapsBaseURL       = "https://maps.googleapis.com/maps/api"
	defaultTextSearchTTL    = 24 * time.Hour
	defaultHTTPTimeout      = 8 * time.Second
	maxResponseBytes        = 2 << 20
	placeDetailsFields      = "geometry/location,name,formatted_address"
	textSearchCacheKeyScope = "geo:v1:textsearch:"
)

// ErrMissingAPIKey is returned by every call when no Places API key is configured
var ErrMissingAPIKey = providers.ErrPlacesAPIKeyMissing

// GooglePlacesProvider implements PlaceSearchProvider against the Google Places web service
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

type googleTextSearchResponse struct {
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message"`
	Results      []googlePlacesResult `json:"results"`
}

type googlePlacesResult struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         *struct {
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// NewGooglePlacesProvider creates a Google Places provider. cache may be nil.
func NewGooglePlacesProvider(apiKey string, cache providers.CacheProvider) *GooglePlacesProvider {
	return NewGooglePlacesProviderWithOptions(apiKey, cache, googleMapsBaseURL, nil)
}

// NewGooglePlacesProviderWithOptions allows overriding the API base URL and
// HTTP client, mainly for tests.
func NewGooglePlacesProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) *GooglePlacesProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleMapsBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "google-places",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})
	return &GooglePlacesProvider{
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
		cache:      cache,
		baseURL:    strings.TrimRight(baseURL, "/"),
		breaker:    breaker,
	}
}

// TextSearch runs a Places text search and returns candidates in Google's order.
// ZERO_RESULTS yields an empty slice; any other non-OK status is an error.
func (g *GooglePlacesProvider) TextSearch(ctx context.Context, query string) ([]entities.PlaceCandidate, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("query is required")
	}

	cacheKey := textSearchCacheKeyScope + hashKey(strings.ToLower(trimmed))
	if g.cache != nil {
		if cached, found, err := g.cache.Get(ctx, cacheKey); err == nil && found {
			var candidates []entities.PlaceCandidate
			if err := json.Unmarshal(cached, &candidates); err == nil {
				return candidates, nil
			}
		}
	}

	params := url.Values{}
	params.Set("query", trimmed)
	params.Set("key", g.apiKey)

	status, body, err := g.get(ctx, "/place/textsearch/json", params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("places text search returned status %d", status)
	}

	var payload googleTextSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode places text search response: %w", err)
	}
	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []entities.PlaceCandidate{}, nil
	default:
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("places text search failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("places text search failed: %s", payload.Status)
	}

	candidates := make([]entities.PlaceCandidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidate := entities.PlaceCandidate{
			PlaceID:          result.PlaceID,
			Name:             result.Name,
			FormattedAddress: result.FormattedAddress,
		}
		if result.Geometry != nil && result.Geometry.Location != nil {
			candidate.Location = &entities.Coordinates{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			}
		}
		candidates = append(candidates, candidate)
	}

	if g.cache != nil && len(candidates) > 0 {
		if data, err := json.Marshal(candidates); err == nil {
			if err := g.cache.Set(ctx, cacheKey, data, defaultTextSearchTTL); err != nil {
				log.Debug().Err(err).Msg("Failed to cache places text search")
			}
		}
	}

	return candidates, nil
}

// Autocomplete proxies the Places autocomplete endpoint
func (g *GooglePlacesProvider) Autocomplete(ctx context.Context, input, sessionToken string) (*providers.RawPlacesResponse, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	params := url.Values{}
	params.Set("input", input)
	if sessionToken != "" {
		params.Set("sessiontoken", sessionToken)
	}
	params.Set("key", g.apiKey)
	return g.passthrough(ctx, "/place/autocomplete/json", params)
}

// Details proxies the Places details endpoint, limited to location, name and address
func (g *GooglePlacesProvider) Details(ctx context.Context, placeID, sessionToken string) (*providers.RawPlacesResponse, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", placeDetailsFields)
	if sessionToken != "" {
		params.Set("sessiontoken", sessionToken)
	}
	params.Set("key", g.apiKey)
	return g.passthrough(ctx, "/place/details/json", params)
}

func (g *GooglePlacesProvider) passthrough(ctx context.Context, path string, params url.Values) (*providers.RawPlacesResponse, error) {
	status, body, err := g.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("places %s returned a non-JSON body", path)
	}
	if status >= 200 && status < 300 {
		status = http.StatusOK
	}
	return &providers.RawPlacesResponse{StatusCode: status, Body: body}, nil
}

type rawResponse struct {
	status int
	body   []byte
}

// get performs the request through the circuit breaker. Only transport
// failures and 5xx answers count against the breaker.
func (g *GooglePlacesProvider) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build places request: %w", err)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("places request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read places response: %w", err)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("places request returned status %d", resp.StatusCode)
		}
		return rawResponse{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return 0, nil, err
	}
	raw := result.(rawResponse)
	return raw.status, raw.body, nil
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
