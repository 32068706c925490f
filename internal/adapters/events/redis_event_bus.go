package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/redis"
)

// subscriberBuffer absorbs bursts; once full, delivery blocks until the subscriber
// drains, its context ends, or the bus closes. Events are never dropped locally.
const subscriberBuffer = 100

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client *redisclient.Client

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return &RedisEventBus{
		client: client,
		subs:   make(map[*redis.PubSub]struct{}),
		done:   make(chan struct{}),
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.RestaurantEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("Published restaurant event")
	return nil
}

// Subscribe subscribes to events on a channel. The returned channel is closed when ctx is
// cancelled or the bus is closed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.RestaurantEvent, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, errors.New("event bus is closed")
	}
	b.mu.Unlock()

	pubsub := b.client.Client().Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no event published after Subscribe returns is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	b.mu.Lock()
	b.subs[pubsub] = struct{}{}
	b.mu.Unlock()

	out := make(chan *entities.RestaurantEvent, subscriberBuffer)
	b.wg.Add(1)
	go b.receive(ctx, channel, pubsub, out)

	log.Info().Str("channel", channel).Msg("Subscribed to restaurant events")
	return out, nil
}

func (b *RedisEventBus) receive(ctx context.Context, channel string, pubsub *redis.PubSub, out chan<- *entities.RestaurantEvent) {
	defer b.wg.Done()
	defer close(out)
	defer b.release(pubsub)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event entities.RestaurantEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal restaurant event")
				continue
			}

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			case <-b.done:
				return
			}
		}
	}
}

func (b *RedisEventBus) release(pubsub *redis.PubSub) {
	b.mu.Lock()
	_, tracked := b.subs[pubsub]
	delete(b.subs, pubsub)
	b.mu.Unlock()

	if tracked {
		_ = pubsub.Close()
	}
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	subs := make([]*redis.PubSub, 0, len(b.subs))
	for pubsub := range b.subs {
		subs = append(subs, pubsub)
	}
	b.subs = make(map[*redis.PubSub]struct{})
	b.mu.Unlock()
	b.once.Do(func() { close(b.done) })

	var errs []error
	for _, pubsub := range subs {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	b.wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %w", errors.Join(errs...))
	}

	log.Info().Msg("Event bus closed")
	return nil
}
