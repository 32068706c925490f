package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/repositories"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

const (
	restaurantsTable     = "restaurants"
	menuItemsTable       = "menu_items"
	openingTimesTable    = "opening_times"
	restaurantStaffTable = "restaurant_staff"
)

var restaurantColumns = []interface{}{
	"id", "name", "description",
	"street", "street_number", "city", "zip_code", "country",
	"latitude", "longitude",
	"published", "rating", "country_code",
	"created_at", "updated_at",
}

// RestaurantAdapter implements RestaurantRepository on Postgres
type RestaurantAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewRestaurantAdapter creates a new restaurant adapter
func NewRestaurantAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.RestaurantRepository {
	return &RestaurantAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// ListPublishedByCountry loads every published restaurant of a country with its menu and
// schedule. Staff assignments are not loaded.
func (a *RestaurantAdapter) ListPublishedByCountry(ctx context.Context, countryCode string) ([]*entities.Restaurant, error) {
	ctx, span := observability.StartSpan(ctx, "RestaurantAdapter.ListPublishedByCountry")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "list_published_restaurants", time.Since(start))
	}()

	query, args, err := a.db.From(restaurantsTable).
		Select(restaurantColumns...).
		Where(goqu.Ex{
			"country_code": countryCode,
			"published":    true,
		}).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to list restaurants", err)
	}
	defer rows.Close()

	var restaurants []*entities.Restaurant
	byID := make(map[string]*entities.Restaurant)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan restaurant", err)
		}
		restaurants = append(restaurants, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate restaurants", err)
	}

	if len(restaurants) == 0 {
		return []*entities.Restaurant{}, nil
	}

	ids := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ID)
	}

	if err := a.attachChildren(ctx, ids, byID, false); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return restaurants, nil
}

// GetByID retrieves a restaurant with menu, schedule and staff assignments
func (a *RestaurantAdapter) GetByID(ctx context.Context, id string) (*entities.Restaurant, error) {
	ctx, span := observability.StartSpan(ctx, "RestaurantAdapter.GetByID")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "get_restaurant", time.Since(start))
	}()

	query, args, err := a.db.From(restaurantsTable).
		Select(restaurantColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	r, err := scanRestaurant(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("restaurant with id %s not found", id))
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to get restaurant", err)
	}

	if err := a.attachChildren(ctx, []string{r.ID}, map[string]*entities.Restaurant{r.ID: r}, true); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	return r, nil
}

func (a *RestaurantAdapter) attachChildren(ctx context.Context, ids []string, byID map[string]*entities.Restaurant, withStaff bool) error {
	if err := a.loadMenuItems(ctx, ids, byID); err != nil {
		return err
	}
	if err := a.loadOpeningTimes(ctx, ids, byID); err != nil {
		return err
	}
	if withStaff {
		return a.loadStaff(ctx, ids, byID)
	}
	return nil
}

func (a *RestaurantAdapter) loadMenuItems(ctx context.Context, ids []string, byID map[string]*entities.Restaurant) error {
	query, args, err := a.db.From(menuItemsTable).
		Select("restaurant_id", "id", "name", "description", "price", "currency", "published").
		Where(goqu.Ex{"restaurant_id": ids}).
		Order(goqu.I("restaurant_id").Asc(), goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to list menu items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			restaurantID string
			item         entities.MenuItem
			description  sql.NullString
		)
		if err := rows.Scan(&restaurantID, &item.ID, &item.Name, &description, &item.Price, &item.Currency, &item.Published); err != nil {
			return apperrors.NewInternalError("failed to scan menu item", err)
		}
		item.Description = description.String

		if r, ok := byID[restaurantID]; ok {
			r.MenuItems = append(r.MenuItems, item)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate menu items", err)
	}
	return nil
}

func (a *RestaurantAdapter) loadOpeningTimes(ctx context.Context, ids []string, byID map[string]*entities.Restaurant) error {
	query, args, err := a.db.From(openingTimesTable).
		Select("restaurant_id", "id", "day", "open_time", "close_time", "valid_from", "valid_to", "published").
		Where(goqu.Ex{"restaurant_id": ids}).
		Order(goqu.I("restaurant_id").Asc(), goqu.I("day").Asc(), goqu.I("open_time").Asc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to list opening times", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			restaurantID        string
			entry               entities.OpeningTime
			openTime, closeTime string
			validFrom, validTo  sql.NullTime
		)
		if err := rows.Scan(&restaurantID, &entry.ID, &entry.Day, &openTime, &closeTime, &validFrom, &validTo, &entry.Published); err != nil {
			return apperrors.NewInternalError("failed to scan opening time", err)
		}

		if entry.OpenMinute, err = entities.ParseClock(openTime); err != nil {
			log.Warn().Err(err).Str("opening_time_id", entry.ID).Msg("Skipping opening time with invalid open_time")
			continue
		}
		if entry.CloseMinute, err = entities.ParseClock(closeTime); err != nil {
			log.Warn().Err(err).Str("opening_time_id", entry.ID).Msg("Skipping opening time with invalid close_time")
			continue
		}
		if entry.Day < 0 || entry.Day > 6 {
			log.Warn().Int("day", entry.Day).Str("opening_time_id", entry.ID).Msg("Skipping opening time with invalid day")
			continue
		}
		if validFrom.Valid {
			entry.ValidFrom = &validFrom.Time
		}
		if validTo.Valid {
			entry.ValidTo = &validTo.Time
		}

		if r, ok := byID[restaurantID]; ok {
			r.OpeningTimes = append(r.OpeningTimes, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate opening times", err)
	}
	return nil
}

func (a *RestaurantAdapter) loadStaff(ctx context.Context, ids []string, byID map[string]*entities.Restaurant) error {
	query, args, err := a.db.From(restaurantStaffTable).
		Select("restaurant_id", "user_id", "role").
		Where(goqu.Ex{"restaurant_id": ids}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to list restaurant staff", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			restaurantID string
			role         entities.StaffRole
		)
		if err := rows.Scan(&restaurantID, &role.UserID, &role.Role); err != nil {
			return apperrors.NewInternalError("failed to scan restaurant staff", err)
		}
		if r, ok := byID[restaurantID]; ok {
			r.StaffRoles = append(r.StaffRoles, role)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate restaurant staff", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRestaurant(row rowScanner) (*entities.Restaurant, error) {
	r := &entities.Restaurant{}
	var description, streetNumber sql.NullString

	err := row.Scan(
		&r.ID,
		&r.Name,
		&description,
		&r.Address.Street,
		&streetNumber,
		&r.Address.City,
		&r.Address.ZipCode,
		&r.Address.Country,
		&r.Location.Latitude,
		&r.Location.Longitude,
		&r.Published,
		&r.Rating,
		&r.CountryCode,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.Address.StreetNumber = streetNumber.String
	r.MenuItems = []entities.MenuItem{}
	r.OpeningTimes = []entities.OpeningTime{}
	return r, nil
}
