package events

import (
	"context"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
)

// MemoryEventBus is an in-process EventBus used when Redis is not configured
type MemoryEventBus struct {
	local *fanout
}

// NewMemoryEventBus creates a new in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{local: newFanout()}
}

// Publish delivers event to current subscribers without blocking
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.MarkerEvent) error {
	return b.local.deliver(channel, event)
}

// Subscribe subscribes to events on a channel
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.MarkerEvent, error) {
	return b.local.add(ctx, channel, nil)
}

// Close closes all subscriber channels
func (b *MemoryEventBus) Close() error {
	b.local.closeAll()
	return nil
}
