package events_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/events"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/redis"
)

func newTestBus(t *testing.T) providers.EventBus {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return events.NewRedisEventBus(redisclient.NewClientFromRedis(client))
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, providers.EventChannelRestaurantUpdates)
	require.NoError(t, err)

	event := entities.NewRestaurantEvent("r-1", "DE", entities.RestaurantEventTypeUpdated)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelRestaurantUpdates, event))

	select {
	case received := <-ch:
		require.NotNil(t, received)
		assert.Equal(t, event.ID, received.ID)
		assert.Equal(t, "r-1", received.RestaurantID)
		assert.Equal(t, "DE", received.CountryCode)
		assert.Equal(t, entities.RestaurantEventTypeUpdated, received.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisEventBus_CancelClosesChannel(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, providers.EventChannelRestaurantUpdates)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after cancel")
	}
}

func TestRedisEventBus_SubscribeAfterClose(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Close())

	_, err := bus.Subscribe(context.Background(), providers.EventChannelRestaurantUpdates)
	assert.Error(t, err)
}

func TestRedisEventBus_SlowSubscriberKeepsEvents(t *testing.T) {
	bus := newTestBus(t)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, providers.EventChannelRestaurantUpdates)
	require.NoError(t, err)

	const burst = 150
	for i := 0; i < burst; i++ {
		event := entities.NewRestaurantEvent(fmt.Sprintf("r-%d", i), "DE", entities.RestaurantEventTypeUpdated)
		require.NoError(t, bus.Publish(ctx, providers.EventChannelRestaurantUpdates, event))
	}

	for i := 0; i < burst; i++ {
		select {
		case received := <-ch:
			require.NotNil(t, received)
			assert.Equal(t, fmt.Sprintf("r-%d", i), received.RestaurantID)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", i, burst)
		}
	}
}

func TestRedisEventBus_CloseUnblocksFullSubscriber(t *testing.T) {
	bus := newTestBus(t)

	ch, err := bus.Subscribe(context.Background(), providers.EventChannelRestaurantUpdates)
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		event := entities.NewRestaurantEvent(fmt.Sprintf("r-%d", i), "DE", entities.RestaurantEventTypeUpdated)
		require.NoError(t, bus.Publish(context.Background(), providers.EventChannelRestaurantUpdates, event))
	}
	time.Sleep(100 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- bus.Close() }()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a full subscriber")
	}

	for range ch {
	}
}
