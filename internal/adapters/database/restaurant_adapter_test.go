package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

var (
	restaurantRowColumns = []string{
		"id", "name", "description",
		"street", "street_number", "city", "zip_code", "country",
		"latitude", "longitude",
		"published", "rating", "country_code",
		"created_at", "updated_at",
	}
	menuRowColumns    = []string{"restaurant_id", "id", "name", "description", "price", "currency", "published"}
	openingRowColumns = []string{"restaurant_id", "id", "day", "open_time", "close_time", "valid_from", "valid_to", "published"}
	staffRowColumns   = []string{"restaurant_id", "user_id", "role"}
)

func setupMockDB(t *testing.T) (*RestaurantAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	adapter := NewRestaurantAdapter(postgres.NewClientFromDB(db), nil).(*RestaurantAdapter)
	return adapter, mock
}

func TestRestaurantAdapter_ListPublishedByCountry(t *testing.T) {
	adapter, mock := setupMockDB(t)
	created := time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC)
	validTo := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM "restaurants" WHERE .*"country_code" = 'DE'`).
		WillReturnRows(sqlmock.NewRows(restaurantRowColumns).
			AddRow("r-1", "Mustafa's", "Gemüse Kebap", "Mehringdamm", "32", "Berlin", "10961", "DE", 52.4938, 13.3880, true, 4.7, "DE", created, created).
			AddRow("r-2", "Curry 36", nil, "Mehringdamm", nil, "Berlin", "10961", "DE", 52.4936, 13.3878, true, 4.2, "DE", created, created))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "menu_items" WHERE ("restaurant_id" IN ('r-1', 'r-2'))`)).
		WillReturnRows(sqlmock.NewRows(menuRowColumns).
			AddRow("r-1", "m-1", "Kebap", nil, 6.5, "EUR", true).
			AddRow("r-2", "m-2", "Currywurst", "with fries", 4.9, "EUR", false))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "opening_times"`)).
		WillReturnRows(sqlmock.NewRows(openingRowColumns).
			AddRow("r-1", "ot-1", 1, "10:00", "02:00", nil, validTo, true).
			AddRow("r-1", "ot-bad", 2, "25:00", "23:00", nil, nil, true).
			AddRow("r-2", "ot-2", 3, "09:30", "17:00", created, nil, false))

	restaurants, err := adapter.ListPublishedByCountry(context.Background(), "DE")
	require.NoError(t, err)
	require.Len(t, restaurants, 2)

	first := restaurants[0]
	assert.Equal(t, "r-1", first.ID)
	assert.Equal(t, "Gemüse Kebap", first.Description)
	assert.Equal(t, "32", first.Address.StreetNumber)
	assert.InDelta(t, 52.4938, first.Location.Latitude, 1e-9)
	require.Len(t, first.MenuItems, 1)
	assert.Equal(t, "Kebap", first.MenuItems[0].Name)

	require.Len(t, first.OpeningTimes, 1, "row with invalid clock value is skipped")
	assert.Equal(t, 600, first.OpeningTimes[0].OpenMinute)
	assert.Equal(t, 120, first.OpeningTimes[0].CloseMinute)
	assert.True(t, first.OpeningTimes[0].CrossesMidnight())
	assert.Nil(t, first.OpeningTimes[0].ValidFrom)
	require.NotNil(t, first.OpeningTimes[0].ValidTo)
	assert.True(t, validTo.Equal(*first.OpeningTimes[0].ValidTo))
	assert.Empty(t, first.StaffRoles)

	second := restaurants[1]
	assert.Equal(t, "", second.Description)
	assert.Equal(t, "", second.Address.StreetNumber)
	require.Len(t, second.MenuItems, 1)
	assert.False(t, second.MenuItems[0].Published)
	require.Len(t, second.OpeningTimes, 1)
	assert.Equal(t, 570, second.OpeningTimes[0].OpenMinute)
	assert.False(t, second.OpeningTimes[0].Published)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantAdapter_ListPublishedByCountry_Empty(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM "restaurants"`).WillReturnRows(sqlmock.NewRows(restaurantRowColumns))

	restaurants, err := adapter.ListPublishedByCountry(context.Background(), "LU")
	require.NoError(t, err)
	assert.NotNil(t, restaurants)
	assert.Empty(t, restaurants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantAdapter_ListPublishedByCountry_QueryError(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM "restaurants"`).WillReturnError(errors.New("connection refused"))

	_, err := adapter.ListPublishedByCountry(context.Background(), "DE")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantAdapter_ListPublishedByCountry_ChildQueryError(t *testing.T) {
	adapter, mock := setupMockDB(t)
	created := time.Now()

	mock.ExpectQuery(`FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows(restaurantRowColumns).
			AddRow("r-1", "A", nil, "S", nil, "Berlin", "10115", "DE", 52.5, 13.4, true, 4.0, "DE", created, created))
	mock.ExpectQuery(`FROM "menu_items"`).WillReturnError(errors.New("timeout"))

	_, err := adapter.ListPublishedByCountry(context.Background(), "DE")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantAdapter_GetByID(t *testing.T) {
	adapter, mock := setupMockDB(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "restaurants" WHERE ("id" = 'r-1')`)).
		WillReturnRows(sqlmock.NewRows(restaurantRowColumns).
			AddRow("r-1", "A", "desc", "S", "1", "Berlin", "10115", "DE", 52.5, 13.4, false, 4.0, "DE", created, created))
	mock.ExpectQuery(`FROM "menu_items"`).WillReturnRows(sqlmock.NewRows(menuRowColumns))
	mock.ExpectQuery(`FROM "opening_times"`).WillReturnRows(sqlmock.NewRows(openingRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "restaurant_staff"`)).
		WillReturnRows(sqlmock.NewRows(staffRowColumns).AddRow("r-1", "u-1", "owner"))

	r, err := adapter.GetByID(context.Background(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, "r-1", r.ID)
	assert.False(t, r.Published)
	assert.NotNil(t, r.MenuItems)
	require.Len(t, r.StaffRoles, 1)
	assert.Equal(t, "owner", r.StaffRoles[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantAdapter_GetByID_NotFound(t *testing.T) {
	adapter, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM "restaurants"`).WillReturnError(sql.ErrNoRows)

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
