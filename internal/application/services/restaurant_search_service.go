package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/repositories"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

// Search outcomes recorded on the restaurant.search.count metric
const (
	outcomeOK               = "ok"
	outcomeValidation       = "validation"
	outcomeLocationNotFound = "location_not_found"
	outcomeNotFound         = "not_found"
	outcomeInternal         = "internal"
)

const internalErrorMessage = "internal server error"

// LocationResolver resolves the search origin
type LocationResolver interface {
	Resolve(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error)
}

// RestaurantSearchService runs the discovery pipeline: resolve the address, load the
// country snapshot, filter, rank, paginate and sanitize. It holds no per-call state.
type RestaurantSearchService struct {
	repo     repositories.RestaurantRepository
	resolver LocationResolver
	clock    func() time.Time
	location *time.Location
	metrics  *observability.Metrics
}

// SearchServiceOption configures a RestaurantSearchService
type SearchServiceOption func(*RestaurantSearchService)

// WithClock overrides the time source used for opening-hours checks
func WithClock(clock func() time.Time) SearchServiceOption {
	return func(s *RestaurantSearchService) {
		s.clock = clock
	}
}

// WithTimezone sets the location in which opening hours are evaluated
func WithTimezone(loc *time.Location) SearchServiceOption {
	return func(s *RestaurantSearchService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMetrics enables search outcome metrics
func WithMetrics(metrics *observability.Metrics) SearchServiceOption {
	return func(s *RestaurantSearchService) {
		s.metrics = metrics
	}
}

// NewRestaurantSearchService creates a new restaurant search service
func NewRestaurantSearchService(repo repositories.RestaurantRepository, resolver LocationResolver, opts ...SearchServiceOption) *RestaurantSearchService {
	s := &RestaurantSearchService{
		repo:     repo,
		resolver: resolver,
		clock:    time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the page of restaurants matching criteria. Errors are always *apperrors.AppError
// of type VALIDATION, LOCATION_NOT_FOUND or INTERNAL, and no partial result is ever returned.
func (s *RestaurantSearchService) Search(ctx context.Context, criteria entities.SearchCriteria) (result *entities.SearchResult, err error) {
	ctx, span := observability.StartSpan(ctx, "RestaurantSearchService.Search")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = s.internalError(ctx, "search pipeline panicked", fmt.Errorf("panic: %v", rec))
			observability.RecordError(span, err)
			observability.RecordSearch(ctx, s.metrics, outcomeInternal)
		}
	}()

	criteria.ApplyDefaults()
	if err := criteria.Validate(); err != nil {
		observability.RecordSearch(ctx, s.metrics, outcomeValidation)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("search.country", criteria.CountryCode),
		attribute.String("search.zip", criteria.Zip),
		attribute.Float64("search.radius_km", criteria.RadiusKm),
		attribute.Int("search.page", criteria.Page),
		attribute.Int("search.limit", criteria.Limit),
	)

	origin, err := s.resolver.Resolve(ctx, criteria.Address())
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Info().Err(err).
			Str("country", criteria.CountryCode).
			Str("zip", criteria.Zip).
			Msg("Search address could not be resolved")
		observability.RecordSearch(ctx, s.metrics, outcomeLocationNotFound)

		if apperrors.IsType(err, apperrors.ErrorTypeLocationNotFound) {
			return nil, err
		}
		return nil, apperrors.NewLocationNotFoundError("location not found", err)
	}

	restaurants, err := s.repo.ListPublishedByCountry(ctx, criteria.CountryCode)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordSearch(ctx, s.metrics, outcomeInternal)
		return nil, s.internalError(ctx, "failed to load restaurants", err)
	}

	now := s.now()
	candidates := FilterCandidates(restaurants, criteria, now)
	page, pagination := RankAndPaginate(candidates, *origin, criteria)

	observability.SetSpanAttributes(span,
		attribute.Int("search.candidates", len(candidates)),
		attribute.Int("search.total", pagination.Total),
	)
	observability.RecordSearch(ctx, s.metrics, outcomeOK)

	return &entities.SearchResult{
		Restaurants: SanitizePage(page, now),
		Pagination:  pagination,
	}, nil
}

// GetRestaurant returns the public view of a single published restaurant
func (s *RestaurantSearchService) GetRestaurant(ctx context.Context, id string) (*entities.RestaurantSearchItem, error) {
	ctx, span := observability.StartSpan(ctx, "RestaurantSearchService.GetRestaurant")
	defer span.End()

	observability.SetSpanAttributes(span, attribute.String("restaurant.id", id))

	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			observability.RecordSearch(ctx, s.metrics, outcomeNotFound)
			return nil, apperrors.NewNotFoundError("restaurant not found")
		}
		observability.RecordError(span, err)
		observability.RecordSearch(ctx, s.metrics, outcomeInternal)
		return nil, s.internalError(ctx, "failed to load restaurant", err)
	}

	if restaurant == nil || !restaurant.Published {
		observability.RecordSearch(ctx, s.metrics, outcomeNotFound)
		return nil, apperrors.NewNotFoundError("restaurant not found")
	}

	item := SanitizeRestaurant(restaurant, s.now(), nil)
	observability.RecordSearch(ctx, s.metrics, outcomeOK)
	return &item, nil
}

func (s *RestaurantSearchService) now() time.Time {
	return s.clock().In(s.location)
}

// internalError logs the cause and hides it behind the generic message
func (s *RestaurantSearchService) internalError(ctx context.Context, msg string, cause error) error {
	observability.LoggerFromContext(ctx).Error().Err(cause).Msg(msg)
	return apperrors.NewInternalError(internalErrorMessage, cause)
}
