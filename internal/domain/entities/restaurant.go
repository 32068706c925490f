package entities

import (
	"strings"
	"time"
)

// Restaurant is a read-only snapshot of a restaurant as owned by restaurant management
type Restaurant struct {
	ID           string        `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Address      Address       `json:"address" db:"-"`
	Location     Coordinates   `json:"location" db:"-"`
	Published    bool          `json:"published" db:"published"`
	Rating       float64       `json:"rating" db:"rating"`
	CountryCode  string        `json:"country_code" db:"country_code"`
	MenuItems    []MenuItem    `json:"menu_items" db:"-"`
	OpeningTimes []OpeningTime `json:"opening_times" db:"-"`
	StaffRoles   []StaffRole   `json:"staff_roles,omitempty" db:"-"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Address represents a physical address
type Address struct {
	Street       string `json:"street" db:"street"`
	StreetNumber string `json:"street_number" db:"street_number"`
	City         string `json:"city" db:"city"`
	ZipCode      string `json:"zip_code" db:"zip_code"`
	Country      string `json:"country" db:"country"`
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Valid reports whether the coordinates lie within the WGS84 range
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// MenuItem is a dish offered by a restaurant
type MenuItem struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description,omitempty" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Currency    string  `json:"currency" db:"currency"`
	Published   bool    `json:"published" db:"published"`
}

// StaffRole links a user account to a restaurant. It is private to the management side.
type StaffRole struct {
	UserID string `json:"user_id" db:"user_id"`
	Role   string `json:"role" db:"role"`
}

// AddressQuery holds the free-form address fragments a caller searches around
type AddressQuery struct {
	Street       string
	StreetNumber string
	Zip          string
	City         string
	Country      string
}

// IsEmpty reports whether no address component was supplied
func (q AddressQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Street) == "" &&
		strings.TrimSpace(q.StreetNumber) == "" &&
		strings.TrimSpace(q.Zip) == "" &&
		strings.TrimSpace(q.City) == "" &&
		strings.TrimSpace(q.Country) == ""
}

// String renders the query as a single line, e.g. "Invalidenstr 117, 10115 Berlin, DE"
func (q AddressQuery) String() string {
	var parts []string

	street := strings.TrimSpace(strings.TrimSpace(q.Street) + " " + strings.TrimSpace(q.StreetNumber))
	if street != "" {
		parts = append(parts, street)
	}

	locality := strings.TrimSpace(strings.TrimSpace(q.Zip) + " " + strings.TrimSpace(q.City))
	if locality != "" {
		parts = append(parts, locality)
	}

	if country := strings.TrimSpace(q.Country); country != "" {
		parts = append(parts, country)
	}

	return strings.Join(parts, ", ")
}

