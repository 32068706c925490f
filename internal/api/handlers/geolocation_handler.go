package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// AddressResolver resolves address fragments to coordinates
type AddressResolver interface {
	Resolve(ctx context.Context, address entities.AddressQuery) (*entities.Coordinates, error)
}

// GeolocationHandler handles geolocation endpoints.
type GeolocationHandler struct {
	resolver AddressResolver
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(resolver AddressResolver) *GeolocationHandler {
	return &GeolocationHandler{resolver: resolver}
}

type geocodeResponse struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocode handles GET /api/geocode?zip=...&country=...
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := entities.AddressQuery{
		Street:       strings.TrimSpace(q.Get("street")),
		StreetNumber: strings.TrimSpace(q.Get("streetNumber")),
		Zip:          strings.TrimSpace(q.Get("zip")),
		City:         strings.TrimSpace(q.Get("city")),
		Country:      strings.ToUpper(strings.TrimSpace(q.Get("country"))),
	}
	if address.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "at least one address parameter is required")
		return
	}

	coords, err := h.resolver.Resolve(r.Context(), address)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, geocodeResponse{
		Address:   address.String(),
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
}
