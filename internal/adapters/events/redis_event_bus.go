package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/reelspot/backend/internal/domain/providers"
	"github.com/rs/zerolog/log"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub, so
// marker events reach subscribers connected to any API replica. Each channel
// holds one Redis subscription while it has local subscribers.
type RedisEventBus struct {
	client        *redis.Client
	local         *fanout
	mu            sync.Mutex
	subscriptions map[string]*redis.PubSub
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redis.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		local:         newFanout(),
		subscriptions: make(map[string]*redis.PubSub),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish sends event to every replica subscribed to channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.MarkerEvent) error {
	if b.ctx.Err() != nil {
		return errBusClosed
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("Published marker event")
	return nil
}

// Subscribe subscribes to events on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.MarkerEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		return nil, errBusClosed
	}

	eventChan, err := b.local.add(ctx, channel, func(remaining int) {
		if remaining == 0 {
			b.release(channel)
		}
	})
	if err != nil {
		return nil, err
	}

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receive(channel, pubsub)
	}

	log.Debug().Str("channel", channel).Int("subscribers", b.local.count(channel)).Msg("Subscribed to marker events")
	return eventChan, nil
}

// release drops the Redis subscription once no local subscriber is left
func (b *RedisEventBus) release(channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.local.count(channel) > 0 {
		return
	}
	if pubsub, ok := b.subscriptions[channel]; ok {
		_ = pubsub.Close()
		delete(b.subscriptions, channel)
	}
}

func (b *RedisEventBus) receive(channel string, pubsub *redis.PubSub) {
	messages := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event entities.MarkerEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Dropping undecodable marker event")
				continue
			}
			_ = b.local.deliver(channel, &event)
		}
	}
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.local.closeAll()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscription %s: %w", channel, err))
		}
		delete(b.subscriptions, channel)
	}
	return errors.Join(errs...)
}
