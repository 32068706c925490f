package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
)

const invalidationTimeout = 5 * time.Second

// SnapshotInvalidator drops cached restaurant data
type SnapshotInvalidator interface {
	InvalidateRestaurant(ctx context.Context, countryCode, restaurantID string) error
}

// CacheInvalidationService handles cache invalidation based on restaurant events
type CacheInvalidationService struct {
	invalidator SnapshotInvalidator
	eventBus    providers.EventBus
	ctx         context.Context
	cancel      context.CancelFunc
	done        sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(invalidator SnapshotInvalidator, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		invalidator: invalidator,
		eventBus:    eventBus,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelRestaurantUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to restaurant updates: %w", err)
	}

	s.done.Add(1)
	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.done.Wait()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.RestaurantEvent) {
	defer s.done.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.RestaurantEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	logger := log.With().
		Str("event_id", event.ID).
		Str("restaurant_id", event.RestaurantID).
		Str("country", event.CountryCode).
		Str("event_type", string(event.EventType)).
		Logger()

	if err := s.invalidator.InvalidateRestaurant(ctx, event.CountryCode, event.RestaurantID); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate restaurant cache")
		return
	}

	logger.Debug().Msg("Invalidated restaurant cache")
}
