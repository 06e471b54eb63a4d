package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
	ProviderWeatherAPI  = "weatherapi"
)

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	// Provider selects the weather backend; the API URL and key are passed to it explicitly.
	Provider      string `validate:"oneof=openweather openmeteo weatherapi"`
	WeatherAPIURL string `validate:"required,url"`
	WeatherAPIKey string
	Units         string `validate:"oneof=standard metric imperial"`

	// RotationInterval controls how often the dashboard moves to the next location.
	RotationInterval time.Duration `validate:"gt=0"`
	CycleTimeout     time.Duration `validate:"gte=0"`
	HTTPTimeout      time.Duration `validate:"gte=0"`
	MaxRetries       int           `validate:"gte=0,lte=10"`
	CircuitBreaker   bool

	// Locations to rotate through.
	Locations []weather.Location `validate:"min=1"`

	// In-memory history retention.
	StoreMaxHistory int           // max number of cycles per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of cycles (0 = unlimited)

	GeocoderAPIKey string

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from a .env file (if any) and the environment, with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	env := envReader{getenv: getenv}
	cfg := &AppConfig{}

	cfg.AppEnv = env.get("APP_ENV", "dev")

	level, err := parseLogLevel(env.get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.Provider = strings.ToLower(env.get("WEATHER_PROVIDER", ProviderOpenWeather))
	cfg.WeatherAPIURL = common.FirstNonEmpty(getenv("WEATHER_API_URL"), defaultAPIURL(cfg.Provider))
	cfg.WeatherAPIKey = strings.TrimSpace(getenv("WEATHER_API_KEY"))
	cfg.Units = env.get("WEATHER_UNITS", "metric")

	// Rotation interval: default 5 seconds.
	if cfg.RotationInterval, err = env.duration("ROTATION_INTERVAL", "5s"); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = env.duration("CYCLE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = env.duration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = env.integer("PROVIDER_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.CircuitBreaker, err = env.boolean("PROVIDER_CIRCUIT_BREAKER", true); err != nil {
		return nil, err
	}

	// History retention.
	if cfg.StoreMaxHistory, err = env.integer("STORE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = env.duration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Locations = weather.DefaultLocations()
	if raw := strings.TrimSpace(getenv("WEATHER_LOCATIONS")); raw != "" {
		locs, err := weather.ParseLocationList(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS: %w", err)
		}
		cfg.Locations = locs
	}

	cfg.GeocoderAPIKey = strings.TrimSpace(getenv("GEOCODER_API_KEY"))
	cfg.Port = env.get("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Provider != ProviderOpenMeteo && cfg.WeatherAPIKey == "" {
		slog.Warn("WEATHER_API_KEY is empty; every fetch cycle will fail", "provider", cfg.Provider)
	}

	return cfg, nil
}

// ProviderConfig returns the explicit configuration handed to the weather client.
func (c *AppConfig) ProviderConfig() providers.Config {
	return providers.Config{
		BaseURL:    c.WeatherAPIURL,
		APIKey:     c.WeatherAPIKey,
		Units:      c.Units,
		MaxRetries: c.MaxRetries,

		DisableCircuitBreaker: !c.CircuitBreaker,
	}
}

func defaultAPIURL(provider string) string {
	switch provider {
	case ProviderOpenMeteo:
		return providers.DefaultOpenMeteoURL
	case ProviderWeatherAPI:
		return providers.DefaultWeatherAPIURL
	default:
		return providers.DefaultOpenWeatherURL
	}
}

type envReader struct {
	getenv func(string) string
}

func (e envReader) get(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e envReader) duration(key, def string) (time.Duration, error) {
	v := e.get(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (e envReader) integer(key string, def int) (int, error) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func (e envReader) boolean(key string, def bool) (bool, error) {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
