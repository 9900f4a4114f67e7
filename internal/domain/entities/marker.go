package entities

import (
	"time"
)

// Marker is a persisted, geolocated place shown on a user's map.
// Markers are append-only: once stored they are never updated or deleted.
type Marker struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"-" db:"user_id"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MarkerDraft is the caller-supplied part of a marker, before the store
// assigns an ID and creation time.
type MarkerDraft struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
	Emoji     string
}

// ValidCoordinates reports whether lat/lng are within WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
