package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env         string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Geolocation GeolocationConfig
	Search      SearchConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
	PoolSize int
}

// GeolocationConfig holds geocoder configuration
type GeolocationConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	MaxAttempts     int
	RateLimit       float64
	BreakerFailures int
}

// SearchConfig holds discovery pipeline configuration
type SearchConfig struct {
	Timezone    *time.Location
	SnapshotTTL time.Duration

	// WarmCountries are uppercased country codes whose snapshots are loaded at startup
	WarmCountries []string
	WarmInterval  time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables, reading a .env file first if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	geocoderTimeout, err := getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	snapshotTTL, err := getEnvAsDuration("SEARCH_SNAPSHOT_TTL", 60*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	warmInterval, err := getEnvAsDuration("SEARCH_WARM_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	warmCountries, err := parseCountryCodes("SEARCH_WARM_COUNTRIES")
	if err != nil {
		return nil, err
	}

	tzName := getEnv("SEARCH_TIMEZONE", "UTC")
	timezone, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_TIMEZONE %q: %w", tzName, err)
	}

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "restaurant_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		Geolocation: GeolocationConfig{
			Provider:        getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:          getEnv("GEOLOCATION_API_KEY", ""),
			BaseURL:         getEnv("GEOLOCATION_BASE_URL", ""),
			Timeout:         geocoderTimeout,
			MaxAttempts:     getEnvAsInt("GEOCODER_MAX_ATTEMPTS", 1),
			RateLimit:       getEnvAsFloat("GEOCODER_RATE_LIMIT", 0),
			BreakerFailures: getEnvAsInt("GEOCODER_BREAKER_FAILURES", 5),
		},
		Search: SearchConfig{
			Timezone:    timezone,
			SnapshotTTL: snapshotTTL,

			WarmCountries: warmCountries,
			WarmInterval:  warmInterval,
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "restaurant-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func parseCountryCodes(key string) ([]string, error) {
	var codes []string
	for _, code := range getEnvAsList(key, nil) {
		if len(code) != 2 {
			return nil, fmt.Errorf("invalid %s entry %q: want a two-letter country code", key, code)
		}
		codes = append(codes, strings.ToUpper(code))
	}
	return codes, nil
}
