package services

import (
	"math"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the Haversine formula
func DistanceKm(from, to entities.Coordinates) float64 {
	lat1Rad := toRadians(from.Latitude)
	lat2Rad := toRadians(to.Latitude)
	deltaLat := toRadians(to.Latitude - from.Latitude)
	deltaLon := toRadians(to.Longitude - from.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
