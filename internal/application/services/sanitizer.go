package services

import (
	"time"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// SanitizeRestaurant projects a restaurant into its public form. Staff roles have no place in
// the projection, unpublished menu items are dropped and only active opening times are kept.
func SanitizeRestaurant(r *entities.Restaurant, now time.Time, distanceKm *float64) entities.RestaurantSearchItem {
	menu := make([]entities.MenuItem, 0, len(r.MenuItems))
	for _, item := range r.MenuItems {
		if item.Published {
			menu = append(menu, item)
		}
	}

	return entities.RestaurantSearchItem{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Address:      r.Address,
		Location:     r.Location,
		Rating:       r.Rating,
		CountryCode:  r.CountryCode,
		MenuItems:    menu,
		OpeningTimes: ActiveOpeningTimes(r.OpeningTimes, now),
		DistanceKm:   distanceKm,
	}
}

// SanitizePage sanitizes a ranked page, attaching each distance
func SanitizePage(page []RankedRestaurant, now time.Time) []entities.RestaurantSearchItem {
	items := make([]entities.RestaurantSearchItem, 0, len(page))
	for _, ranked := range page {
		distance := ranked.DistanceKm
		items = append(items, SanitizeRestaurant(ranked.Restaurant, now, &distance))
	}
	return items
}
