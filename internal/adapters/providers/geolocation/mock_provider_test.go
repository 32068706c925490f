package geolocation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
)

func TestMockGeocoder_Geocode(t *testing.T) {
	geocoder := NewMockGeocoder()

	tests := []struct {
		name    string
		query   entities.AddressQuery
		wantLat float64
		wantErr error
	}{
		{name: "zip", query: entities.AddressQuery{Zip: "10115", Country: "DE"}, wantLat: 52.5323},
		{name: "lower case country", query: entities.AddressQuery{Zip: "80331", Country: "de"}, wantLat: 48.1374},
		{name: "city fallback", query: entities.AddressQuery{Zip: "99999", City: "Hamburg", Country: "DE"}, wantLat: 53.5511},
		{name: "zip in wrong country", query: entities.AddressQuery{Zip: "10115", Country: "FR"}, wantErr: providers.ErrNoGeocodeResults},
		{name: "unknown", query: entities.AddressQuery{Zip: "00000", Country: "DE"}, wantErr: providers.ErrNoGeocodeResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords, err := geocoder.Geocode(context.Background(), tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, coords)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantLat, coords.Latitude, 1e-9)
		})
	}
}

func TestMockGeocoder_WithZip(t *testing.T) {
	geocoder := NewMockGeocoder().WithZip("AT", "1010", entities.Coordinates{Latitude: 48.2082, Longitude: 16.3738})

	coords, err := geocoder.Geocode(context.Background(), entities.AddressQuery{Zip: "1010", Country: "AT"})
	require.NoError(t, err)
	assert.Equal(t, 16.3738, coords.Longitude)
}

func TestMockGeocoder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockGeocoder().Geocode(ctx, entities.AddressQuery{Zip: "10115", Country: "DE"})
	assert.ErrorIs(t, err, context.Canceled)
}
