package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
)

const (
	googleGeocodeURL   = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultHTTPTimeout = 8 * time.Second
)

// GoogleGeocoder implements Geocoder using the Google Geocoding API
type GoogleGeocoder struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleGeocoder creates a new Google geocoder
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return NewGoogleGeocoderWithOptions(apiKey, googleGeocodeURL, nil)
}

// NewGoogleGeocoderWithOptions allows overriding base URL and HTTP client (used for tests)
func NewGoogleGeocoderWithOptions(apiKey, baseURL string, httpClient *http.Client) *GoogleGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeocoder{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Geocode resolves address fragments. Postal code and country are sent as component
// filters so a bare zip resolves inside the requested country.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error) {
	if address.IsEmpty() {
		return nil, fmt.Errorf("address is required")
	}

	resp, err := g.doGeocodeRequest(ctx, buildGeocodeParams(address))
	if err != nil {
		return nil, err
	}

	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, providers.ErrNoGeocodeResults
	}

	location := resp.Results[0].Geometry.Location
	return &entities.Coordinates{
		Latitude:  location.Lat,
		Longitude: location.Lng,
	}, nil
}

func buildGeocodeParams(address entities.AddressQuery) url.Values {
	params := url.Values{}

	var components []string
	if zip := strings.TrimSpace(address.Zip); zip != "" {
		components = append(components, "postal_code:"+zip)
	}
	if country := strings.TrimSpace(address.Country); country != "" {
		components = append(components, "country:"+country)
	}
	if len(components) > 0 {
		params.Set("components", strings.Join(components, "|"))
	}

	free := entities.AddressQuery{
		Street:       address.Street,
		StreetNumber: address.StreetNumber,
		City:         address.City,
	}.String()
	if free != "" {
		params.Set("address", free)
	}

	return params
}

func (g *GoogleGeocoder) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
	}

	return &payload, nil
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
