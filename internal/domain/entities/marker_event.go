package entities

import (
	"time"

	"github.com/google/uuid"
)

// MarkerEventType represents the type of marker event
type MarkerEventType string

const (
	MarkerEventTypeCreated MarkerEventType = "marker_created"
)

// MarkerEventSource tells subscribers how the marker was produced
type MarkerEventSource string

const (
	MarkerEventSourceIngest MarkerEventSource = "ingest"
	MarkerEventSourceManual MarkerEventSource = "manual"
)

// MarkerEvent is broadcast when a marker is appended
type MarkerEvent struct {
	ID        string            `json:"id"`
	EventType MarkerEventType   `json:"event_type"`
	Source    MarkerEventSource `json:"source"`
	AccountID int64             `json:"account_id"`
	Marker    *Marker           `json:"marker"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewMarkerCreatedEvent creates a new marker_created event
func NewMarkerCreatedEvent(marker *Marker, source MarkerEventSource) *MarkerEvent {
	return &MarkerEvent{
		ID:        uuid.NewString(),
		EventType: MarkerEventTypeCreated,
		Source:    source,
		AccountID: marker.AccountID,
		Marker:    marker,
		Timestamp: time.Now().UTC(),
	}
}
