package repositories

import (
	"context"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// RestaurantRepository is the read side of restaurant management used by discovery
type RestaurantRepository interface {
	// ListPublishedByCountry returns every published restaurant in a country with
	// menu items and opening times loaded. Staff roles are not part of the listing.
	ListPublishedByCountry(ctx context.Context, countryCode string) ([]*entities.Restaurant, error)

	// GetByID retrieves a single restaurant, including staff, regardless of its published flag
	GetByID(ctx context.Context, id string) (*entities.Restaurant, error)
}
