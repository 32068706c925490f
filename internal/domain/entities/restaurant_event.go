package entities

import (
	"time"

	"github.com/google/uuid"
)

// RestaurantEventType represents the kind of change restaurant management announced
type RestaurantEventType string

const (
	RestaurantEventTypeUpdated     RestaurantEventType = "restaurant_updated"
	RestaurantEventTypePublished   RestaurantEventType = "restaurant_published"
	RestaurantEventTypeUnpublished RestaurantEventType = "restaurant_unpublished"
	RestaurantEventTypeDeleted     RestaurantEventType = "restaurant_deleted"
)

// RestaurantEvent is published on the event bus whenever restaurant data changes
type RestaurantEvent struct {
	ID           string              `json:"id"`
	RestaurantID string              `json:"restaurant_id"`
	CountryCode  string              `json:"country_code"`
	EventType    RestaurantEventType `json:"event_type"`
	Timestamp    time.Time           `json:"timestamp"`
}

// NewRestaurantEvent creates a new restaurant event
func NewRestaurantEvent(restaurantID, countryCode string, eventType RestaurantEventType) *RestaurantEvent {
	return &RestaurantEvent{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		CountryCode:  countryCode,
		EventType:    eventType,
		Timestamp:    time.Now().UTC(),
	}
}
