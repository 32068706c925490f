package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/adapters/events"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	"github.com/zatekoja/restaurantdiscovery/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT,
	street        TEXT NOT NULL DEFAULT '',
	street_number TEXT,
	city          TEXT NOT NULL DEFAULT '',
	zip_code      TEXT NOT NULL DEFAULT '',
	country       TEXT NOT NULL DEFAULT '',
	latitude      DOUBLE PRECISION NOT NULL,
	longitude     DOUBLE PRECISION NOT NULL,
	published     BOOLEAN NOT NULL DEFAULT FALSE,
	rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
	country_code  CHAR(2) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_restaurants_country_published ON restaurants (country_code, published);

CREATE TABLE IF NOT EXISTS menu_items (
	id            TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	price         NUMERIC(10, 2) NOT NULL,
	currency      CHAR(3) NOT NULL DEFAULT 'EUR',
	published     BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant ON menu_items (restaurant_id);

CREATE TABLE IF NOT EXISTS opening_times (
	id            TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	day           SMALLINT NOT NULL CHECK (day BETWEEN 0 AND 6),
	open_time     TEXT NOT NULL,
	close_time    TEXT NOT NULL,
	valid_from    DATE,
	valid_to      DATE,
	published     BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_opening_times_restaurant ON opening_times (restaurant_id);

CREATE TABLE IF NOT EXISTS restaurant_staff (
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	user_id       TEXT NOT NULL,
	role          TEXT NOT NULL,
	PRIMARY KEY (restaurant_id, user_id)
);
`

type seedRestaurant struct {
	restaurant entities.Restaurant
	menu       []entities.MenuItem
	schedule   []entities.OpeningTime
	staff      []entities.StaffRole
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("restaurant-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				restaurant_staff,
				opening_times,
				menu_items,
				restaurants
			CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	db := goqu.New("postgres", pgClient.DB())
	seeds := berlinRestaurants(time.Now().UTC())

	var created []entities.Restaurant
	for _, s := range seeds {
		if err := insertRestaurant(ctx, db, s); err != nil {
			log.Error().Err(err).Str("restaurant", s.restaurant.Name).Msg("Failed to seed restaurant")
			continue
		}
		created = append(created, s.restaurant)
		log.Info().Str("id", s.restaurant.ID).Str("restaurant", s.restaurant.Name).Msg("Seeded restaurant")
	}

	// Let running API instances drop their cached country snapshots
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, skipping change notifications")
		} else {
			defer redisClient.Close()
			bus := events.NewRedisEventBus(redisClient)
			defer bus.Close()
			for _, r := range created {
				event := entities.NewRestaurantEvent(r.ID, r.CountryCode, entities.RestaurantEventTypeUpdated)
				if err := bus.Publish(ctx, providers.EventChannelRestaurantUpdates, event); err != nil {
					log.Warn().Err(err).Str("id", r.ID).Msg("Failed to publish restaurant event")
				}
			}
		}
	}

	log.Info().Int("restaurants", len(created)).Msg("Seeding complete")
}

func insertRestaurant(ctx context.Context, db *goqu.Database, s seedRestaurant) error {
	return db.WithTx(func(tx *goqu.TxDatabase) error {
		r := s.restaurant
		if _, err := tx.Insert("restaurants").Rows(goqu.Record{
			"id":            r.ID,
			"name":          r.Name,
			"description":   r.Description,
			"street":        r.Address.Street,
			"street_number": r.Address.StreetNumber,
			"city":          r.Address.City,
			"zip_code":      r.Address.ZipCode,
			"country":       r.Address.Country,
			"latitude":      r.Location.Latitude,
			"longitude":     r.Location.Longitude,
			"published":     r.Published,
			"rating":        r.Rating,
			"country_code":  r.CountryCode,
			"created_at":    r.CreatedAt,
			"updated_at":    r.UpdatedAt,
		}).Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("insert restaurant: %w", err)
		}

		for _, m := range s.menu {
			if _, err := tx.Insert("menu_items").Rows(goqu.Record{
				"id":            m.ID,
				"restaurant_id": r.ID,
				"name":          m.Name,
				"description":   m.Description,
				"price":         m.Price,
				"currency":      m.Currency,
				"published":     m.Published,
			}).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("insert menu item %s: %w", m.Name, err)
			}
		}

		for _, o := range s.schedule {
			record := goqu.Record{
				"id":            o.ID,
				"restaurant_id": r.ID,
				"day":           o.Day,
				"open_time":     entities.FormatClock(o.OpenMinute),
				"close_time":    entities.FormatClock(o.CloseMinute),
				"published":     o.Published,
			}
			if o.ValidFrom != nil {
				record["valid_from"] = o.ValidFrom.Format(time.DateOnly)
			}
			if o.ValidTo != nil {
				record["valid_to"] = o.ValidTo.Format(time.DateOnly)
			}
			if _, err := tx.Insert("opening_times").Rows(record).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("insert opening time: %w", err)
			}
		}

		for _, st := range s.staff {
			if _, err := tx.Insert("restaurant_staff").Rows(goqu.Record{
				"restaurant_id": r.ID,
				"user_id":       st.UserID,
				"role":          st.Role,
			}).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("insert staff role: %w", err)
			}
		}
		return nil
	})
}

func weekly(opensAt, closesAt string, days ...time.Weekday) []entities.OpeningTime {
	openMinute, err := entities.ParseClock(opensAt)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid seed schedule")
	}
	closeMinute, err := entities.ParseClock(closesAt)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid seed schedule")
	}

	entries := make([]entities.OpeningTime, 0, len(days))
	for _, d := range days {
		entries = append(entries, entities.OpeningTime{
			ID:          uuid.New().String(),
			Day:         int(d),
			OpenMinute:  openMinute,
			CloseMinute: closeMinute,
			Published:   true,
		})
	}
	return entries
}

func restaurant(name, description, street, number, zip string, lat, lon, rating float64, published bool, now time.Time) entities.Restaurant {
	return entities.Restaurant{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Address: entities.Address{
			Street:       street,
			StreetNumber: number,
			City:         "Berlin",
			ZipCode:      zip,
			Country:      "DE",
		},
		Location:    entities.Coordinates{Latitude: lat, Longitude: lon},
		Published:   published,
		Rating:      rating,
		CountryCode: "DE",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func dish(name string, price float64, published bool) entities.MenuItem {
	return entities.MenuItem{ID: uuid.New().String(), Name: name, Price: price, Currency: "EUR", Published: published}
}

func berlinRestaurants(now time.Time) []seedRestaurant {
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	everyDay := append([]time.Weekday{time.Sunday, time.Saturday}, weekdays...)

	summerStart := time.Date(now.Year(), time.June, 1, 0, 0, 0, 0, time.UTC)
	summerEnd := time.Date(now.Year(), time.August, 31, 0, 0, 0, 0, time.UTC)
	beerGarden := weekly("12:00", "22:00", everyDay...)
	for i := range beerGarden {
		beerGarden[i].ValidFrom = &summerStart
		beerGarden[i].ValidTo = &summerEnd
	}

	return []seedRestaurant{
		{
			restaurant: restaurant("Pasta Mitte", "Fresh pasta made every morning", "Invalidenstraße", "117", "10115", 52.5310, 13.3849, 4.6, true, now),
			menu: []entities.MenuItem{
				dish("Tagliatelle al ragù", 14.50, true),
				dish("Cacio e pepe", 12.00, true),
				dish("Chef's tasting menu", 48.00, false),
			},
			schedule: weekly("11:30", "22:00", everyDay...),
			staff:    []entities.StaffRole{{UserID: uuid.New().String(), Role: "owner"}},
		},
		{
			restaurant: restaurant("Späti Kitchen", "Late night bites", "Torstraße", "55", "10119", 52.5290, 13.4010, 4.1, true, now),
			menu: []entities.MenuItem{
				dish("Currywurst", 5.50, true),
				dish("Falafel wrap", 7.00, true),
			},
			schedule: append(weekly("18:00", "02:00", time.Friday, time.Saturday), weekly("18:00", "23:30", weekdays[:4]...)...),
			staff:    []entities.StaffRole{{UserID: uuid.New().String(), Role: "manager"}},
		},
		{
			restaurant: restaurant("Kreuzberg Ramen", "Tonkotsu and shoyu ramen", "Oranienstraße", "20", "10999", 52.5010, 13.4180, 4.8, true, now),
			menu: []entities.MenuItem{
				dish("Tonkotsu ramen", 13.90, true),
				dish("Gyoza", 6.50, true),
			},
			schedule: weekly("12:00", "21:30", weekdays...),
		},
		{
			restaurant: restaurant("Prenzlauer Biergarten", "Seasonal beer garden", "Kastanienallee", "7", "10435", 52.5380, 13.4090, 3.9, true, now),
			menu: []entities.MenuItem{
				dish("Brezel", 3.50, true),
				dish("Schnitzel", 16.00, true),
			},
			schedule: beerGarden,
		},
		{
			restaurant: restaurant("Coming Soon Bistro", "Opening next month", "Friedrichstraße", "100", "10117", 52.5200, 13.3880, 0, false, now),
			menu:       []entities.MenuItem{dish("Soup of the day", 6.00, true)},
			schedule:   weekly("09:00", "17:00", weekdays...),
		},
	}
}
