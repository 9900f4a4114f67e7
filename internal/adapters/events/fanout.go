package events

import (
	"context"
	"errors"
	"sync"

	"github.com/reelspot/backend/internal/domain/entities"
	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 16

var errBusClosed = errors.New("event bus closed")

// fanout delivers events to the local subscribers of each channel. A slow
// subscriber misses events rather than blocking the publisher.
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.MarkerEvent]struct{}
	closed      bool
}

func newFanout() *fanout {
	return &fanout{subscribers: make(map[string]map[chan *entities.MarkerEvent]struct{})}
}

// add registers a subscriber that is removed when ctx is done. onLeave runs
// after removal with the number of subscribers left on the channel.
func (f *fanout) add(ctx context.Context, channel string, onLeave func(remaining int)) (<-chan *entities.MarkerEvent, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errBusClosed
	}
	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.MarkerEvent]struct{})
	}
	eventChan := make(chan *entities.MarkerEvent, subscriberBuffer)
	f.subscribers[channel][eventChan] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		if remaining, removed := f.remove(channel, eventChan); removed && onLeave != nil {
			onLeave(remaining)
		}
	}()
	return eventChan, nil
}

func (f *fanout) remove(channel string, eventChan chan *entities.MarkerEvent) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	subscribers := f.subscribers[channel]
	if _, ok := subscribers[eventChan]; !ok {
		return 0, false
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(f.subscribers, channel)
	}
	return len(subscribers), true
}

func (f *fanout) count(channel string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[channel])
}

func (f *fanout) deliver(channel string, event *entities.MarkerEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return errBusClosed
	}
	for subscriber := range f.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
		}
	}
	return nil
}

// closeAll closes every subscriber channel and rejects later calls
func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for channel, subscribers := range f.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(f.subscribers, channel)
	}
}
