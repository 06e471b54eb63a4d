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

// DefaultOpenWeatherURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Client interface for OpenWeatherMap.
// Current conditions come from /weather, the 3-hourly forecast from /forecast.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	units   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, cfg Config) *OpenWeatherProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  cfg.APIKey,
		units:   units,
		baseURL: baseURL,
		httpCfg: newHTTPClientConfig(client, cfg.MaxRetries),
		circuit: newCircuitBreaker("openweather", cfg),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"snow"`
	Weather []openWeatherCondition `json:"weather"`
}

type openWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (p *OpenWeatherProvider) CurrentConditions(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	var payload openWeatherEntry
	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint("weather", coords), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	summary := p.summarize(payload)
	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Summary:  &summary,
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	var payload struct {
		List []openWeatherEntry `json:"list"`
	}
	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint("forecast", coords), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	entries := make([]weather.Summary, 0, len(payload.List))
	for _, item := range payload.List {
		entries = append(entries, p.summarize(item))
	}

	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Entries:  entries,
	}, nil
}

func (p *OpenWeatherProvider) endpoint(path string, coords weather.Coordinates) string {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	values.Set("units", p.units)

	return fmt.Sprintf("%s?%s", joinURL(p.baseURL, path), values.Encode())
}

func (p *OpenWeatherProvider) summarize(e openWeatherEntry) weather.Summary {
	ts := time.Now().UTC()
	if e.Dt > 0 {
		ts = time.Unix(e.Dt, 0).UTC()
	}

	precip := e.Rain.OneH
	if precip == 0 {
		precip = e.Rain.ThreeH
	}
	if precip == 0 {
		precip = e.Snow.OneH + e.Snow.ThreeH
	}

	var description string
	if len(e.Weather) > 0 {
		description = describe(e.Weather[0].Description)
	}

	return weather.Summary{
		Timestamp:   ts,
		Temperature: e.Main.Temp,
		Humidity:    e.Main.Humidity,
		WindSpeed:   e.Wind.Speed,
		Pressure:    e.Main.Pressure,
		PrecipMM:    precip,
		Condition:   mapOpenWeatherCondition(e.Weather),
		Description: description,
	}
}

func mapOpenWeatherCondition(items []openWeatherCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
