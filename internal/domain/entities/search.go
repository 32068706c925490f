package entities

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

// Search criteria bounds
const (
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 50.0
	DefaultPage     = 1
	DefaultLimit    = 100
	MaxLimit        = 100
	MaxRating       = 5.0
)

// SearchCriteria describes a restaurant discovery request
type SearchCriteria struct {
	SearchText    *string  `json:"q,omitempty"`
	CountryCode   string   `json:"country"`
	Zip           string   `json:"zip"`
	Street        *string  `json:"street,omitempty"`
	StreetNumber  *string  `json:"street_number,omitempty"`
	City          *string  `json:"city,omitempty"`
	RadiusKm      float64  `json:"radius_km"`
	MinRating     *float64 `json:"min_rating,omitempty"`
	CurrentlyOpen *bool    `json:"currently_open,omitempty"`
	Page          int      `json:"page"`
	Limit         int      `json:"limit"`
}

// ApplyDefaults fills unset radius, page and limit with their defaults.
// Explicitly out-of-range values are left alone so Validate can reject them.
func (c *SearchCriteria) ApplyDefaults() {
	if c.RadiusKm == 0 {
		c.RadiusKm = DefaultRadiusKm
	}
	if c.Page == 0 {
		c.Page = DefaultPage
	}
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	c.CountryCode = strings.ToUpper(strings.TrimSpace(c.CountryCode))
	c.Zip = strings.TrimSpace(c.Zip)
}

// Validate checks the criteria and returns a validation AppError naming every bad field
func (c *SearchCriteria) Validate() error {
	details := make(map[string]string)

	if len(c.CountryCode) != 2 {
		details["country"] = "country must be a two-letter country code"
	}
	if c.Zip == "" {
		details["zip"] = "zip is required"
	}
	if math.IsNaN(c.RadiusKm) || c.RadiusKm <= 0 || c.RadiusKm > MaxRadiusKm {
		details["radius_km"] = fmt.Sprintf("radius_km must be greater than 0 and at most %g", MaxRadiusKm)
	}
	if c.MinRating != nil && (math.IsNaN(*c.MinRating) || *c.MinRating < 0 || *c.MinRating > MaxRating) {
		details["min_rating"] = fmt.Sprintf("min_rating must be between 0 and %g", MaxRating)
	}
	if c.Page < 1 {
		details["page"] = "page must be at least 1"
	}
	if c.Limit < 1 || c.Limit > MaxLimit {
		details["limit"] = fmt.Sprintf("limit must be between 1 and %d", MaxLimit)
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid search criteria", details)
	}
	return nil
}

// Address returns the address fragments to geocode
func (c *SearchCriteria) Address() AddressQuery {
	return AddressQuery{
		Street:       deref(c.Street),
		StreetNumber: deref(c.StreetNumber),
		Zip:          c.Zip,
		City:         deref(c.City),
		Country:      c.CountryCode,
	}
}

// Text returns the trimmed search text, or "" when none was given
func (c *SearchCriteria) Text() string {
	return strings.TrimSpace(deref(c.SearchText))
}

// RestaurantSearchItem is the sanitized restaurant representation returned to search callers.
// It has no staff field.
type RestaurantSearchItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Address      Address       `json:"address"`
	Location     Coordinates   `json:"location"`
	Rating       float64       `json:"rating"`
	CountryCode  string        `json:"country_code"`
	MenuItems    []MenuItem    `json:"menu_items"`
	OpeningTimes []OpeningTime `json:"opening_times"`
	DistanceKm   *float64      `json:"distance_km,omitempty"`
}

// Pagination describes the page of a search result
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit)
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// SearchResult is the outcome of a restaurant search
type SearchResult struct {
	Restaurants []RestaurantSearchItem `json:"restaurants"`
	Pagination  Pagination             `json:"pagination"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
