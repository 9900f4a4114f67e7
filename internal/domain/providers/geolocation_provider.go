package providers

import (
	"context"
	"errors"

	"github.com/reelspot/backend/internal/domain/entities"
)

// ErrPlacesAPIKeyMissing is returned by place search providers that need a key and have none
var ErrPlacesAPIKeyMissing = errors.New("missing GOOGLE_PLACES_API_KEY")

// PlaceSearchProvider defines the interface for place search operations
type PlaceSearchProvider interface {
	// TextSearch returns ranked candidates for a free-text query
	TextSearch(ctx context.Context, query string) ([]entities.PlaceCandidate, error)

	// Autocomplete returns the provider's raw autocomplete response
	Autocomplete(ctx context.Context, input, sessionToken string) (*RawPlacesResponse, error)

	// Details returns the provider's raw place details response
	Details(ctx context.Context, placeID, sessionToken string) (*RawPlacesResponse, error)
}

// RawPlacesResponse is a provider answer passed through to API callers untouched
type RawPlacesResponse struct {
	StatusCode int
	Body       []byte
}
