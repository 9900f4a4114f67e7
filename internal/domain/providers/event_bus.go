package providers

import (
	"context"
	"strconv"

	"github.com/reelspot/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to marker events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.MarkerEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is done or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.MarkerEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelAccountPrefix is the prefix for per-account marker channels
const EventChannelAccountPrefix = "markers:account:"

// GetAccountChannel returns the channel name for a specific account
func GetAccountChannel(accountID int64) string {
	return EventChannelAccountPrefix + strconv.FormatInt(accountID, 10)
}
