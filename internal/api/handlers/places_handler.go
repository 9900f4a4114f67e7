package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/reelspot/backend/internal/infrastructure/observability"
)

const (
	placesStatusInvalidRequest = "INVALID_REQUEST"
	placesStatusServerError    = "SERVER_ERROR"

	msgMissingQuery       = "Missing query parameter."
	msgMissingPlaceID     = "Missing placeId parameter."
	msgMissingPlacesKey   = "Missing GOOGLE_PLACES_API_KEY."
	msgPlacesUnreachable  = "Failed to reach Google Places."
	placesContentTypeJSON = "application/json"
)

// PlacesHandler proxies autocomplete and place details lookups
type PlacesHandler struct {
	provider providers.PlaceSearchProvider
}

// NewPlacesHandler creates a new places handler
func NewPlacesHandler(provider providers.PlaceSearchProvider) *PlacesHandler {
	return &PlacesHandler{provider: provider}
}

// SearchPlaces handles GET /api/places?query=...&sessionToken=...
func (h *PlacesHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	sessionToken := strings.TrimSpace(r.URL.Query().Get("sessionToken"))
	if query == "" {
		respondWithPlacesError(w, http.StatusBadRequest, placesStatusInvalidRequest, msgMissingQuery)
		return
	}

	h.passthrough(w, r, func(ctx context.Context) (*providers.RawPlacesResponse, error) {
		return h.provider.Autocomplete(ctx, query, sessionToken)
	})
}

// PlaceDetails handles GET /api/place-details?placeId=...&sessionToken=...
func (h *PlacesHandler) PlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := strings.TrimSpace(r.URL.Query().Get("placeId"))
	sessionToken := strings.TrimSpace(r.URL.Query().Get("sessionToken"))
	if placeID == "" {
		respondWithPlacesError(w, http.StatusBadRequest, placesStatusInvalidRequest, msgMissingPlaceID)
		return
	}

	h.passthrough(w, r, func(ctx context.Context) (*providers.RawPlacesResponse, error) {
		return h.provider.Details(ctx, placeID, sessionToken)
	})
}

func (h *PlacesHandler) passthrough(w http.ResponseWriter, r *http.Request, call func(context.Context) (*providers.RawPlacesResponse, error)) {
	if h.provider == nil {
		respondWithPlacesError(w, http.StatusInternalServerError, placesStatusServerError, msgMissingPlacesKey)
		return
	}

	resp, err := call(r.Context())
	if err != nil {
		if errors.Is(err, providers.ErrPlacesAPIKeyMissing) {
			respondWithPlacesError(w, http.StatusInternalServerError, placesStatusServerError, msgMissingPlacesKey)
			return
		}
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("Places passthrough failed")
		respondWithPlacesError(w, http.StatusInternalServerError, placesStatusServerError, msgPlacesUnreachable)
		return
	}

	w.Header().Set("Content-Type", placesContentTypeJSON)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func respondWithPlacesError(w http.ResponseWriter, statusCode int, status, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"status":        status,
		"error_message": message,
	})
}
