package providers

import (
	"context"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to restaurant events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.RestaurantEvent) error

	// Subscribe subscribes to events on a channel until ctx is cancelled
	Subscribe(ctx context.Context, channel string) (<-chan *entities.RestaurantEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelRestaurantUpdates is the channel restaurant management publishes changes on
const EventChannelRestaurantUpdates = "restaurant:updates"
