package services

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

const defaultGeocodeTimeout = 5 * time.Second

// AddressResolver turns address fragments into a search origin
type AddressResolver struct {
	geocoder providers.Geocoder
	timeout  time.Duration
}

// NewAddressResolver creates a resolver that bounds each provider call by timeout
func NewAddressResolver(geocoder providers.Geocoder, timeout time.Duration) *AddressResolver {
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	return &AddressResolver{
		geocoder: geocoder,
		timeout:  timeout,
	}
}

// Resolve geocodes the address. Every failure is reported as a location-not-found error.
func (r *AddressResolver) Resolve(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error) {
	if address.IsEmpty() {
		return nil, apperrors.NewLocationNotFoundError("location not found", errors.New("no address component supplied"))
	}

	ctx, span := observability.StartSpan(ctx, "AddressResolver.Resolve")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	coords, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewLocationNotFoundError("location not found", err)
	}
	if coords == nil || !coords.Valid() {
		return nil, apperrors.NewLocationNotFoundError("location not found", errors.New("geocoder returned an unusable coordinate"))
	}

	return coords, nil
}
