package services

import (
	"strings"
	"time"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// FilterCandidates keeps the restaurants that satisfy every non-geospatial predicate of the
// criteria. Criteria fields that are absent apply no predicate. Input order is preserved.
func FilterCandidates(restaurants []*entities.Restaurant, criteria entities.SearchCriteria, now time.Time) []*entities.Restaurant {
	text := strings.ToLower(criteria.Text())
	openOnly := criteria.CurrentlyOpen != nil && *criteria.CurrentlyOpen

	candidates := make([]*entities.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if r == nil || !r.Published {
			continue
		}
		if r.CountryCode != criteria.CountryCode {
			continue
		}
		if text != "" && !matchesText(r, text) {
			continue
		}
		if criteria.MinRating != nil && r.Rating < *criteria.MinRating {
			continue
		}
		if openOnly && !IsOpenNow(r.OpeningTimes, now) {
			continue
		}
		candidates = append(candidates, r)
	}
	return candidates
}

// matchesText expects lowerText to be lower-cased already
func matchesText(r *entities.Restaurant, lowerText string) bool {
	return strings.Contains(strings.ToLower(r.Name), lowerText) ||
		strings.Contains(strings.ToLower(r.Description), lowerText)
}
