package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{"WEATHER_API_KEY": "k"}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.AppEnv != "dev" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("AppEnv/LogLevel = %q/%v", cfg.AppEnv, cfg.LogLevel)
	}
	if cfg.Provider != ProviderOpenWeather || cfg.WeatherAPIURL != providers.DefaultOpenWeatherURL {
		t.Errorf("provider = %q at %q", cfg.Provider, cfg.WeatherAPIURL)
	}
	if cfg.Units != "metric" {
		t.Errorf("Units = %q, want metric", cfg.Units)
	}
	if cfg.RotationInterval != 5*time.Second {
		t.Errorf("RotationInterval = %v, want 5s", cfg.RotationInterval)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if !cfg.CircuitBreaker {
		t.Error("CircuitBreaker = false, want enabled by default")
	}
	if len(cfg.Locations) != 6 || cfg.Locations[0].Label != "Mumbai, IN" {
		t.Errorf("Locations = %+v", cfg.Locations)
	}
	if cfg.StoreMaxHistory != 96 || cfg.StoreMaxAge != 24*time.Hour {
		t.Errorf("retention = %d/%v", cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}

	pc := cfg.ProviderConfig()
	if pc.APIKey != "k" || pc.BaseURL != providers.DefaultOpenWeatherURL || pc.Units != "metric" || pc.DisableCircuitBreaker {
		t.Errorf("ProviderConfig = %+v", pc)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"APP_ENV":           "prod",
		"LOG_LEVEL":         "DEBUG",
		"WEATHER_PROVIDER":  "OpenMeteo",
		"ROTATION_INTERVAL": "30s",
		"WEATHER_LOCATIONS": "Pune, IN|18.5204 73.8567;Goa, IN|15.2993 74.1240",
		"STORE_MAX_HISTORY": "0",
		"PORT":              "9090",

		"PROVIDER_CIRCUIT_BREAKER": "false",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.Provider != ProviderOpenMeteo || cfg.WeatherAPIURL != providers.DefaultOpenMeteoURL {
		t.Errorf("provider = %q at %q", cfg.Provider, cfg.WeatherAPIURL)
	}
	if cfg.RotationInterval != 30*time.Second {
		t.Errorf("RotationInterval = %v", cfg.RotationInterval)
	}
	if len(cfg.Locations) != 2 || cfg.Locations[1].Label != "Goa, IN" {
		t.Errorf("Locations = %+v", cfg.Locations)
	}
	if cfg.StoreMaxHistory != 0 {
		t.Errorf("StoreMaxHistory = %d, want 0", cfg.StoreMaxHistory)
	}
	if cfg.CircuitBreaker || !cfg.ProviderConfig().DisableCircuitBreaker {
		t.Error("PROVIDER_CIRCUIT_BREAKER=false did not disable the breaker")
	}
}

func TestFromEnvExplicitURLWins(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"WEATHER_PROVIDER": "weatherapi",
		"WEATHER_API_URL":  "http://localhost:9000/v1",
		"WEATHER_API_KEY":  "k",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.WeatherAPIURL != "http://localhost:9000/v1" {
		t.Errorf("WeatherAPIURL = %q", cfg.WeatherAPIURL)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "interval", env: map[string]string{"ROTATION_INTERVAL": "soon"}, want: "ROTATION_INTERVAL"},
		{name: "zero interval", env: map[string]string{"ROTATION_INTERVAL": "0s"}, want: "RotationInterval"},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "verbose"}, want: "LOG_LEVEL"},
		{name: "provider", env: map[string]string{"WEATHER_PROVIDER": "darksky"}, want: "Provider"},
		{name: "app env", env: map[string]string{"APP_ENV": "staging"}, want: "AppEnv"},
		{name: "units", env: map[string]string{"WEATHER_UNITS": "kelvin"}, want: "Units"},
		{name: "circuit breaker", env: map[string]string{"PROVIDER_CIRCUIT_BREAKER": "sometimes"}, want: "PROVIDER_CIRCUIT_BREAKER"},
		{name: "retries", env: map[string]string{"PROVIDER_MAX_RETRIES": "many"}, want: "PROVIDER_MAX_RETRIES"},
		{name: "locations", env: map[string]string{"WEATHER_LOCATIONS": "Pune|north"}, want: "WEATHER_LOCATIONS"},
		{name: "port", env: map[string]string{"PORT": "http"}, want: "Port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookup(tt.env))
			if err == nil {
				t.Fatal("FromEnv: expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %s", err, tt.want)
			}
		})
	}
}
