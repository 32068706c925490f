package services

import (
	"sort"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// RankedRestaurant pairs a candidate with its distance from the search origin
type RankedRestaurant struct {
	Restaurant *entities.Restaurant
	DistanceKm float64
}

// RankAndPaginate drops candidates outside the radius, orders the rest by ascending distance
// and returns the requested page. Ties keep their input order. Total counts every candidate
// inside the radius, not just the page.
func RankAndPaginate(candidates []*entities.Restaurant, origin entities.Coordinates, criteria entities.SearchCriteria) ([]RankedRestaurant, entities.Pagination) {
	ranked := make([]RankedRestaurant, 0, len(candidates))
	for _, r := range candidates {
		d := DistanceKm(origin, r.Location)
		if d > criteria.RadiusKm {
			continue
		}
		ranked = append(ranked, RankedRestaurant{Restaurant: r, DistanceKm: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	total := len(ranked)
	pagination := entities.NewPagination(total, criteria.Page, criteria.Limit)

	// Compare page numbers before multiplying so huge pages cannot wrap skip.
	if criteria.Page < 1 || criteria.Limit < 1 || criteria.Page > pagination.Pages {
		return []RankedRestaurant{}, pagination
	}

	skip := (criteria.Page - 1) * criteria.Limit

	end := skip + criteria.Limit
	if end > total {
		end = total
	}
	return ranked[skip:end], pagination
}
