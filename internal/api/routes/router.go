package routes

import (
	"net/http"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/api/handlers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/api/middleware"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	restaurantHandler  *handlers.RestaurantHandler
	geolocationHandler *handlers.GeolocationHandler
	healthHandler      *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	restaurantHandler *handlers.RestaurantHandler,
	geolocationHandler *handlers.GeolocationHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler()
	}
	return &Router{
		mux:                http.NewServeMux(),
		restaurantHandler:  restaurantHandler,
		geolocationHandler: geolocationHandler,
		healthHandler:      healthHandler,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Live)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Restaurant discovery endpoints
	r.mux.HandleFunc("GET /api/restaurants/search", r.restaurantHandler.SearchRestaurants)
	r.mux.HandleFunc("GET /api/restaurants/{id}", r.restaurantHandler.GetRestaurant)

	if r.geolocationHandler != nil {
		r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits directly above recovery so it sees the routed pattern.
	var handler http.Handler = r.mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
