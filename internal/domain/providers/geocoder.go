package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// ErrNoGeocodeResults is returned when the provider found no match for an address
var ErrNoGeocodeResults = errors.New("no geocode results for address")

// Geocoder converts address fragments to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error)
}
