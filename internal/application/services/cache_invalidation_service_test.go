package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/application/services"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
)

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.RestaurantEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.RestaurantEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.RestaurantEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockSnapshotInvalidator struct {
	mock.Mock
}

func (m *MockSnapshotInvalidator) InvalidateRestaurant(ctx context.Context, countryCode, restaurantID string) error {
	return m.Called(ctx, countryCode, restaurantID).Error(0)
}

func TestCacheInvalidationService_InvalidatesOnEvent(t *testing.T) {
	events := make(chan *entities.RestaurantEvent, 2)
	bus := new(MockEventBus)
	bus.On("Subscribe", mock.Anything, providers.EventChannelRestaurantUpdates).
		Return((<-chan *entities.RestaurantEvent)(events), nil)

	invalidated := make(chan string, 2)
	invalidator := new(MockSnapshotInvalidator)
	invalidator.On("InvalidateRestaurant", mock.Anything, "DE", "r-1").
		Run(func(args mock.Arguments) { invalidated <- args.String(2) }).
		Return(nil).Once()
	invalidator.On("InvalidateRestaurant", mock.Anything, "FR", "r-2").
		Run(func(args mock.Arguments) { invalidated <- args.String(2) }).
		Return(errors.New("redis down")).Once()

	service := services.NewCacheInvalidationService(invalidator, bus)
	require.NoError(t, service.Start())

	events <- entities.NewRestaurantEvent("r-1", "DE", entities.RestaurantEventTypeUpdated)
	events <- entities.NewRestaurantEvent("r-2", "FR", entities.RestaurantEventTypeUnpublished)

	for _, want := range []string{"r-1", "r-2"} {
		select {
		case got := <-invalidated:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for invalidation of %s", want)
		}
	}

	service.Stop()
	invalidator.AssertExpectations(t)
}

func TestCacheInvalidationService_StopsWhenChannelCloses(t *testing.T) {
	events := make(chan *entities.RestaurantEvent)
	bus := new(MockEventBus)
	bus.On("Subscribe", mock.Anything, mock.Anything).Return((<-chan *entities.RestaurantEvent)(events), nil)

	service := services.NewCacheInvalidationService(new(MockSnapshotInvalidator), bus)
	require.NoError(t, service.Start())

	close(events)

	stopped := make(chan struct{})
	go func() {
		service.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestCacheInvalidationService_SubscribeError(t *testing.T) {
	bus := new(MockEventBus)
	bus.On("Subscribe", mock.Anything, mock.Anything).Return(nil, errors.New("no redis"))

	service := services.NewCacheInvalidationService(new(MockSnapshotInvalidator), bus)
	err := service.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to subscribe")
}
