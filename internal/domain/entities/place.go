package entities

// ExtractedPlaceInfo is what the language model pulled out of a transcript.
// It is never persisted; it only feeds geocoding.
type ExtractedPlaceInfo struct {
	PlaceName  string  `json:"placeName"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Cuisine    string  `json:"cuisine"`
	Clues      string  `json:"clues"`
	Confidence float64 `json:"confidence"`
	Emoji      string  `json:"emoji"`
}

// GeocodedPlace is a resolved location ready to become a marker
type GeocodedPlace struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Emoji     string  `json:"emoji"`
}

// Draft converts the place into marker input
func (p *GeocodedPlace) Draft() MarkerDraft {
	return MarkerDraft{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Name:      p.Name,
		Address:   p.Address,
		Emoji:     p.Emoji,
	}
}

// Coordinates represents geographic coordinates
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// PlaceCandidate is one ranked result from a place search.
// Location is nil when the provider returned no geometry.
type PlaceCandidate struct {
	PlaceID          string       `json:"place_id"`
	Name             string       `json:"name"`
	FormattedAddress string       `json:"formatted_address"`
	Location         *Coordinates `json:"location,omitempty"`
}
