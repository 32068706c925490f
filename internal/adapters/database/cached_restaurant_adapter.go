package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/repositories"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

const (
	defaultSnapshotTTL  = 60 * time.Second
	snapshotLoadTimeout = 10 * time.Second
	snapshotCacheName   = "restaurant_snapshot"
	snapshotKeyPrefix   = "restaurants:country:"
)

// SnapshotCacheKey returns the cache key holding a country's published restaurants
func SnapshotCacheKey(countryCode string) string {
	return snapshotKeyPrefix + strings.ToUpper(countryCode)
}

// CachedRestaurantAdapter keeps a per-country snapshot of published restaurants in the
// cache. Concurrent misses for one country share a single repository load. Cache failures
// are logged and never fail a read. Single restaurant lookups are not cached.
type CachedRestaurantAdapter struct {
	adapter repositories.RestaurantRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedRestaurantAdapter creates a new cached restaurant adapter
func NewCachedRestaurantAdapter(adapter repositories.RestaurantRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedRestaurantAdapter {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &CachedRestaurantAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

// ListPublishedByCountry serves the country snapshot from cache, loading it on a miss
func (a *CachedRestaurantAdapter) ListPublishedByCountry(ctx context.Context, countryCode string) ([]*entities.Restaurant, error) {
	key := SnapshotCacheKey(countryCode)

	if restaurants, ok := a.fromCache(ctx, key); ok {
		observability.RecordCacheHit(ctx, a.metrics, snapshotCacheName)
		return restaurants, nil
	}
	observability.RecordCacheMiss(ctx, a.metrics, snapshotCacheName)

	restaurants, shared, err := a.load(ctx, key, countryCode)
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("key", key).Msg("Shared in-flight snapshot load")
	}
	return restaurants, nil
}

// WarmCountry reloads a country snapshot from the repository and stores it, whether
// or not a cached copy exists. It returns the number of restaurants cached.
func (a *CachedRestaurantAdapter) WarmCountry(ctx context.Context, countryCode string) (int, error) {
	key := SnapshotCacheKey(countryCode)
	restaurants, _, err := a.load(ctx, key, countryCode)
	if err != nil {
		return 0, fmt.Errorf("failed to warm snapshot %s: %w", key, err)
	}
	return len(restaurants), nil
}

// load reads the snapshot through singleflight. The shared load outlives any single
// caller; cancelling one request must not fail the others waiting on it.
func (a *CachedRestaurantAdapter) load(ctx context.Context, key, countryCode string) ([]*entities.Restaurant, bool, error) {
	v, err, shared := a.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
		defer cancel()

		restaurants, err := a.adapter.ListPublishedByCountry(loadCtx, countryCode)
		if err != nil {
			return nil, err
		}
		a.store(loadCtx, key, restaurants)
		return restaurants, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return v.([]*entities.Restaurant), shared, nil
}

// GetByID delegates to the underlying repository
func (a *CachedRestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	return a.adapter.GetByID(ctx, id)
}

// InvalidateRestaurant drops the snapshot containing the restaurant. When the event carries
// no country, the restaurant is looked up to find it; if it no longer exists every country
// snapshot is dropped since any of them may still list it.
func (a *CachedRestaurantAdapter) InvalidateRestaurant(ctx context.Context, countryCode, restaurantID string) error {
	if countryCode == "" {
		if restaurantID == "" {
			return nil
		}
		r, err := a.adapter.GetByID(ctx, restaurantID)
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			dropped, err := a.cache.DeletePrefix(ctx, snapshotKeyPrefix)
			if err != nil {
				return fmt.Errorf("failed to drop snapshots: %w", err)
			}
			log.Info().Str("restaurant_id", restaurantID).Int("snapshots", dropped).Msg("Dropped all snapshots for removed restaurant")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve country for restaurant %s: %w", restaurantID, err)
		}
		countryCode = r.CountryCode
	}

	return a.cache.Delete(ctx, SnapshotCacheKey(countryCode))
}

func (a *CachedRestaurantAdapter) fromCache(ctx context.Context, key string) ([]*entities.Restaurant, bool) {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("Snapshot cache read failed, falling back to database")
		}
		return nil, false
	}

	var restaurants []*entities.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached snapshot")
		return nil, false
	}
	return restaurants, true
}

func (a *CachedRestaurantAdapter) store(ctx context.Context, key string, restaurants []*entities.Restaurant) {
	data, err := json.Marshal(restaurants)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to marshal snapshot")
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache snapshot")
	}
}
