package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

// RestaurantSearcher is the search service used by RestaurantHandler
type RestaurantSearcher interface {
	Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error)
	GetRestaurant(ctx context.Context, id string) (*entities.RestaurantSearchItem, error)
}

// RestaurantHandler handles restaurant discovery endpoints
type RestaurantHandler struct {
	service RestaurantSearcher
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(service RestaurantSearcher) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// SearchRestaurants handles GET /api/restaurants/search
func (h *RestaurantHandler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r.URL.Query())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetRestaurant handles GET /api/restaurants/{id}
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "restaurant ID is required")
		return
	}

	restaurant, err := h.service.GetRestaurant(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, restaurant)
}

// parseSearchCriteria reads the search query string. Malformed values and explicit zeros for
// radius, page and limit are reported together as one validation error.
func parseSearchCriteria(query url.Values) (entities.SearchCriteria, error) {
	p := queryParser{values: query, details: map[string]string{}}

	criteria := entities.SearchCriteria{
		SearchText:   p.optionalString("q"),
		CountryCode:  strings.TrimSpace(query.Get("country")),
		Zip:          strings.TrimSpace(query.Get("zip")),
		Street:       p.optionalString("street"),
		StreetNumber: p.optionalString("streetNumber"),
		City:         p.optionalString("city"),
	}

	if v := p.optionalFloat("radiusKm", "radius_km"); v != nil {
		if *v <= 0 {
			p.details["radius_km"] = fmt.Sprintf("radius_km must be greater than 0 and at most %g", entities.MaxRadiusKm)
		}
		criteria.RadiusKm = *v
	}
	criteria.MinRating = p.optionalFloat("minRating", "min_rating")
	criteria.CurrentlyOpen = p.optionalBool("currentlyOpen", "currently_open")

	if v := p.optionalInt("page", "page"); v != nil {
		if *v < 1 {
			p.details["page"] = "page must be at least 1"
		}
		criteria.Page = *v
	}
	if v := p.optionalInt("limit", "limit"); v != nil {
		if *v < 1 {
			p.details["limit"] = fmt.Sprintf("limit must be between 1 and %d", entities.MaxLimit)
		}
		criteria.Limit = *v
	}

	if len(p.details) > 0 {
		return criteria, apperrors.NewValidationError("invalid search criteria", p.details)
	}
	return criteria, nil
}

type queryParser struct {
	values  url.Values
	details map[string]string
}

func (p *queryParser) raw(name string) (string, bool) {
	v := strings.TrimSpace(p.values.Get(name))
	return v, v != ""
}

func (p *queryParser) optionalString(name string) *string {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	return &v
}

func (p *queryParser) optionalFloat(name, field string) *float64 {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.details[field] = fmt.Sprintf("%s must be a number", name)
		return nil
	}
	return &f
}

func (p *queryParser) optionalInt(name, field string) *int {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.details[field] = fmt.Sprintf("%s must be an integer", name)
		return nil
	}
	return &i
}

func (p *queryParser) optionalBool(name, field string) *bool {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.details[field] = fmt.Sprintf("%s must be true or false", name)
		return nil
	}
	return &b
}
