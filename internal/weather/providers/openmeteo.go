package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenMeteoURL is the Open-Meteo API root. No key is needed.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1"

// openMeteoTimeLayout is the local-time format Open-Meteo uses with timezone=UTC.
const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Client interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, cfg Config) *OpenMeteoProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: newHTTPClientConfig(client, cfg.MaxRetries),
		circuit: newCircuitBreaker("openmeteo", cfg),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) CurrentConditions(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	values := p.baseValues(coords)
	values.Set("current_weather", "true")

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			Time        string  `json:"time"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}

	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint(values), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	cond := mapOpenMeteoCondition(payload.CurrentWeather.WeatherCode)
	summary := weather.Summary{
		Timestamp:   parseOpenMeteoTime(payload.CurrentWeather.Time),
		Temperature: payload.CurrentWeather.Temperature,
		// Open-Meteo current_weather has limited fields; we fill what we can.
		WindSpeed:   payload.CurrentWeather.WindSpeed,
		Condition:   cond,
		Description: describe(string(cond)),
	}

	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Summary:  &summary,
	}, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	values := p.baseValues(coords)
	values.Set("hourly", "temperature_2m,relative_humidity_2m,pressure_msl,precipitation,wind_speed_10m,weather_code")
	values.Set("forecast_days", "5")

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature   []float64 `json:"temperature_2m"`
			Humidity      []float64 `json:"relative_humidity_2m"`
			Pressure      []float64 `json:"pressure_msl"`
			Precipitation []float64 `json:"precipitation"`
			WindSpeed     []float64 `json:"wind_speed_10m"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint(values), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	h := payload.Hourly
	entries := make([]weather.Summary, 0, len(h.Time))
	for i, ts := range h.Time {
		code := valueAt(h.WeatherCode, i)
		cond := mapOpenMeteoCondition(code)
		entries = append(entries, weather.Summary{
			Timestamp:   parseOpenMeteoTime(ts),
			Temperature: valueAt(h.Temperature, i),
			Humidity:    valueAt(h.Humidity, i),
			WindSpeed:   valueAt(h.WindSpeed, i),
			Pressure:    valueAt(h.Pressure, i),
			PrecipMM:    valueAt(h.Precipitation, i),
			Condition:   cond,
			Description: describe(string(cond)),
		})
	}

	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Entries:  entries,
	}, nil
}

func (p *OpenMeteoProvider) baseValues(coords weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("timezone", "UTC")
	values.Set("wind_speed_unit", "ms")
	return values
}

func (p *OpenMeteoProvider) endpoint(values url.Values) string {
	return fmt.Sprintf("%s?%s", joinURL(p.baseURL, "forecast"), values.Encode())
}

func parseOpenMeteoTime(s string) time.Time {
	ts, err := time.Parse(openMeteoTimeLayout, s)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}

// valueAt tolerates hourly series of unequal length.
func valueAt[T any](xs []T, i int) T {
	var zero T
	if i < 0 || i >= len(xs) {
		return zero
	}
	return xs[i]
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on Open-Meteo WMO weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
