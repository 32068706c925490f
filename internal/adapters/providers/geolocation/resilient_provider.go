package geolocation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/restaurantdiscovery/backend/pkg/retry"
)

// ResilienceOptions configures the ResilientGeocoder decorator
type ResilienceOptions struct {
	// Name labels logs, metrics and the circuit breaker
	Name string
	// RateLimit is the allowed calls per second; zero disables limiting
	RateLimit float64
	// MaxAttempts is the total number of tries for a transient failure
	MaxAttempts int
	// BreakerFailures is the number of consecutive failures that opens the breaker
	BreakerFailures int
	// BreakerCooldown is how long the breaker stays open before probing again
	BreakerCooldown time.Duration
	Metrics         *observability.Metrics
}

// ResilientGeocoder wraps a Geocoder with rate limiting, a circuit breaker and retries
type ResilientGeocoder struct {
	next     providers.Geocoder
	name     string
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	retryCfg retry.Config
	metrics  *observability.Metrics
}

// noResult carries a definitive "address unknown" answer through the breaker without
// counting it as a provider failure
type noResult struct {
	err error
}

// NewResilientGeocoder decorates next with the given options
func NewResilientGeocoder(next providers.Geocoder, opts ResilienceOptions) *ResilientGeocoder {
	if opts.Name == "" {
		opts.Name = "geocoder"
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	failures := uint32(opts.BreakerFailures)
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Geocoder circuit breaker state changed")
		},
	})

	return &ResilientGeocoder{
		next:    next,
		name:    opts.Name,
		limiter: limiter,
		breaker: breaker,
		retryCfg: retry.Config{
			MaxAttempts:   opts.MaxAttempts,
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2.0,
		},
		metrics: opts.Metrics,
	}
}

// Geocode resolves the address through the underlying provider
func (g *ResilientGeocoder) Geocode(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error) {
	start := time.Now()

	var coords *entities.Coordinates
	err := retry.DoWithLog(ctx, g.retryCfg, g.name, func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return retry.Permanent(err)
			}
		}

		result, err := g.breaker.Execute(func() (interface{}, error) {
			c, err := g.next.Geocode(ctx, address)
			if errors.Is(err, providers.ErrNoGeocodeResults) {
				return noResult{err: err}, nil
			}
			if err != nil {
				return nil, err
			}
			return c, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}

		switch v := result.(type) {
		case noResult:
			return retry.Permanent(v.err)
		case *entities.Coordinates:
			coords = v
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).
			Str("provider", g.name).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Msg("Geocode attempt failed, retrying")
	})

	observability.RecordGeocode(ctx, g.metrics, g.name, err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	return coords, nil
}

// State reports the current circuit breaker state
func (g *ResilientGeocoder) State() gobreaker.State {
	return g.breaker.State()
}
