package geolocation

import (
	"context"
	"strings"
	"sync"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
)

// MockGeocoder resolves addresses from a fixed zip and city table. It is used for local
// development and tests when no geocoding API key is configured.
type MockGeocoder struct {
	mu     sync.RWMutex
	byZip  map[string]entities.Coordinates
	byCity map[string]entities.Coordinates
}

// NewMockGeocoder creates a mock geocoder seeded with a handful of German locations
func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{
		byZip: map[string]entities.Coordinates{
			"DE:10115": {Latitude: 52.5323, Longitude: 13.3846},
			"DE:10117": {Latitude: 52.5170, Longitude: 13.3889},
			"DE:10178": {Latitude: 52.5219, Longitude: 13.4132},
			"DE:10435": {Latitude: 52.5386, Longitude: 13.4124},
			"DE:20095": {Latitude: 53.5503, Longitude: 10.0006},
			"DE:50667": {Latitude: 50.9384, Longitude: 6.9599},
			"DE:80331": {Latitude: 48.1374, Longitude: 11.5755},
		},
		byCity: map[string]entities.Coordinates{
			"DE:berlin":  {Latitude: 52.5200, Longitude: 13.4050},
			"DE:hamburg": {Latitude: 53.5511, Longitude: 9.9937},
			"DE:köln":    {Latitude: 50.9375, Longitude: 6.9603},
			"DE:münchen": {Latitude: 48.1351, Longitude: 11.5820},
			"DE:munich":  {Latitude: 48.1351, Longitude: 11.5820},
		},
	}
}

// WithZip registers coordinates for a country/zip pair
func (m *MockGeocoder) WithZip(country, zip string, coords entities.Coordinates) *MockGeocoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byZip[lookupKey(country, zip)] = coords
	return m
}

// Geocode resolves the zip first and falls back to the city
func (m *MockGeocoder) Geocode(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if zip := strings.TrimSpace(address.Zip); zip != "" {
		if coords, ok := m.byZip[lookupKey(address.Country, zip)]; ok {
			return &coords, nil
		}
	}

	if city := strings.TrimSpace(address.City); city != "" {
		if coords, ok := m.byCity[lookupKey(address.Country, strings.ToLower(city))]; ok {
			return &coords, nil
		}
	}

	return nil, providers.ErrNoGeocodeResults
}

func lookupKey(country, value string) string {
	return strings.ToUpper(strings.TrimSpace(country)) + ":" + value
}
