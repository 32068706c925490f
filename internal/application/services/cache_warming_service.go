package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const warmTimeout = 30 * time.Second

// SnapshotWarmer loads a country snapshot into the cache
type SnapshotWarmer interface {
	WarmCountry(ctx context.Context, countryCode string) (int, error)
}

// CacheWarmingService keeps the snapshots of frequently searched countries in the cache
// so the first searches after startup or expiry do not wait on PostgreSQL.
type CacheWarmingService struct {
	warmer    SnapshotWarmer
	countries []string
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	done      sync.WaitGroup
}

// NewCacheWarmingService creates a warming service. A zero interval warms once on Start.
func NewCacheWarmingService(warmer SnapshotWarmer, countries []string, interval time.Duration) *CacheWarmingService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheWarmingService{
		warmer:    warmer,
		countries: countries,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// WarmCache warms every configured country. A failing country does not stop the others;
// the returned error joins every failure.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	var (
		warmed int
		errs   []error
	)
	for _, country := range s.countries {
		n, err := s.warmer.WarmCountry(ctx, country)
		if err != nil {
			log.Warn().Err(err).Str("country", country).Msg("Failed to warm snapshot")
			errs = append(errs, err)
			continue
		}
		warmed++
		log.Debug().Str("country", country).Int("restaurants", n).Msg("Warmed snapshot")
	}
	return warmed, errors.Join(errs...)
}

// Start warms the cache in the background, then again every interval until Stop
func (s *CacheWarmingService) Start() {
	if len(s.countries) == 0 {
		return
	}

	s.done.Add(1)
	go s.run()
	log.Info().Strs("countries", s.countries).Dur("interval", s.interval).Msg("Cache warming service started")
}

// Stop cancels warming and waits for the background loop to exit
func (s *CacheWarmingService) Stop() {
	s.cancel()
	s.done.Wait()
}

func (s *CacheWarmingService) run() {
	defer s.done.Done()

	s.warmOnce()
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.warmOnce()
		}
	}
}

func (s *CacheWarmingService) warmOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, warmTimeout)
	defer cancel()

	warmed, err := s.WarmCache(ctx)
	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.Int("warmed", warmed).Int("countries", len(s.countries)).Msg("Cache warming pass finished")
}
