package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/application/services"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

var origin = entities.Coordinates{Latitude: 52.5323, Longitude: 13.3846}

// northOf returns a point roughly km kilometres due north of origin
func northOf(km float64) entities.Coordinates {
	return entities.Coordinates{Latitude: origin.Latitude + km/111.195, Longitude: origin.Longitude}
}

func rankedIDs(ranked []services.RankedRestaurant) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Restaurant.ID)
	}
	return out
}

func TestRankAndPaginate_SortsAndDropsOutsideRadius(t *testing.T) {
	candidates := []*entities.Restaurant{
		{ID: "five", Location: northOf(5)},
		{ID: "far", Location: northOf(15)},
		{ID: "one", Location: northOf(1)},
		{ID: "three", Location: northOf(3)},
	}
	criteria := entities.SearchCriteria{RadiusKm: 10, Page: 1, Limit: 10}

	page, pagination := services.RankAndPaginate(candidates, origin, criteria)

	assert.Equal(t, []string{"one", "three", "five"}, rankedIDs(page))
	assert.Equal(t, entities.Pagination{Total: 3, Page: 1, Limit: 10, Pages: 1}, pagination)

	for i, r := range page {
		assert.LessOrEqual(t, r.DistanceKm, criteria.RadiusKm)
		assert.InDelta(t, services.DistanceKm(origin, r.Restaurant.Location), r.DistanceKm, 1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, r.DistanceKm, page[i-1].DistanceKm)
		}
	}
}

func TestRankAndPaginate_TiesKeepInputOrder(t *testing.T) {
	same := northOf(2)
	candidates := []*entities.Restaurant{
		{ID: "b", Location: same, Rating: 3},
		{ID: "a", Location: same, Rating: 5},
		{ID: "c", Location: same, Rating: 4},
	}

	page, _ := services.RankAndPaginate(candidates, origin, entities.SearchCriteria{RadiusKm: 10, Page: 1, Limit: 10})
	assert.Equal(t, []string{"b", "a", "c"}, rankedIDs(page))
}

func TestRankAndPaginate_Pages(t *testing.T) {
	var candidates []*entities.Restaurant
	for i := 0; i < 7; i++ {
		candidates = append(candidates, &entities.Restaurant{ID: string(rune('a' + i)), Location: northOf(float64(i) * 0.5)})
	}

	tests := []struct {
		name  string
		page  int
		limit int
		want  []string
		pages int
	}{
		{name: "first page", page: 1, limit: 3, want: []string{"a", "b", "c"}, pages: 3},
		{name: "middle page", page: 2, limit: 3, want: []string{"d", "e", "f"}, pages: 3},
		{name: "last partial page", page: 3, limit: 3, want: []string{"g"}, pages: 3},
		{name: "beyond last page", page: 4, limit: 3, want: []string{}, pages: 3},
		{name: "single page", page: 1, limit: 100, want: []string{"a", "b", "c", "d", "e", "f", "g"}, pages: 1},
		{name: "exact division", page: 7, limit: 1, want: []string{"g"}, pages: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pagination := services.RankAndPaginate(candidates, origin, entities.SearchCriteria{RadiusKm: 10, Page: tt.page, Limit: tt.limit})

			require.LessOrEqual(t, len(page), tt.limit)
			assert.Equal(t, tt.want, rankedIDs(page))
			assert.Equal(t, 7, pagination.Total)
			assert.Equal(t, tt.pages, pagination.Pages)
			assert.Equal(t, int(math.Ceil(float64(pagination.Total)/float64(pagination.Limit))), pagination.Pages)
		})
	}
}

func TestRankAndPaginate_HugePageIsEmpty(t *testing.T) {
	var candidates []*entities.Restaurant
	for i := 0; i < 100; i++ {
		candidates = append(candidates, &entities.Restaurant{ID: string(rune('A' + i)), Location: northOf(float64(i) * 0.1)})
	}

	for _, pageNo := range []int{2, 184467440737095518, math.MaxInt} {
		page, pagination := services.RankAndPaginate(candidates, origin, entities.SearchCriteria{RadiusKm: 50, Page: pageNo, Limit: 100})

		assert.Empty(t, page, "page %d", pageNo)
		assert.Equal(t, 100, pagination.Total)
		assert.Equal(t, 1, pagination.Pages)
	}
}

func TestRankAndPaginate_Empty(t *testing.T) {
	page, pagination := services.RankAndPaginate(nil, origin, entities.SearchCriteria{RadiusKm: 10, Page: 1, Limit: 10})

	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.Equal(t, entities.Pagination{Total: 0, Page: 1, Limit: 10, Pages: 0}, pagination)
}
