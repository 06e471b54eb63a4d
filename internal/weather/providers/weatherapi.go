package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultWeatherAPIURL is the WeatherAPI.com v1 API root.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider implements the weather.Client interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, cfg Config) *WeatherAPIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultWeatherAPIURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpCfg: newHTTPClientConfig(client, cfg.MaxRetries),
		circuit: newCircuitBreaker("weatherapi", cfg),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIObservation struct {
	TimeEpoch        int64   `json:"time_epoch"`
	LastUpdatedEpoch int64   `json:"last_updated_epoch"`
	TempC            float64 `json:"temp_c"`
	Humidity         float64 `json:"humidity"`
	WindKph          float64 `json:"wind_kph"`
	PressureMb       float64 `json:"pressure_mb"`
	PrecipMm         float64 `json:"precip_mm"`
	Condition        struct {
		Text string `json:"text"`
	} `json:"condition"`
}

func (p *WeatherAPIProvider) CurrentConditions(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	var payload struct {
		Current weatherAPIObservation `json:"current"`
	}
	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint("current.json", coords, nil), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	summary := summarizeWeatherAPI(payload.Current, payload.Current.LastUpdatedEpoch)
	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Summary:  &summary,
	}, nil
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	extra := url.Values{}
	extra.Set("days", "3")

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []weatherAPIObservation `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	body, err := getJSON(ctx, p.httpCfg, p.circuit, p.endpoint("forecast.json", coords, extra), &payload)
	if err != nil {
		return weather.Reading{}, err
	}

	var entries []weather.Summary
	for _, day := range payload.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			entries = append(entries, summarizeWeatherAPI(hour, hour.TimeEpoch))
		}
	}

	return weather.Reading{
		Provider: p.name,
		Body:     body,
		Entries:  entries,
	}, nil
}

func (p *WeatherAPIProvider) endpoint(path string, coords weather.Coordinates, extra url.Values) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "lat,lon".
	values.Set("q", strconv.FormatFloat(coords.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	return fmt.Sprintf("%s?%s", joinURL(p.baseURL, path), values.Encode())
}

func summarizeWeatherAPI(o weatherAPIObservation, epoch int64) weather.Summary {
	ts := time.Now().UTC()
	if epoch > 0 {
		ts = time.Unix(epoch, 0).UTC()
	}

	return weather.Summary{
		Timestamp:   ts,
		Temperature: o.TempC,
		Humidity:    o.Humidity,
		// Convert wind from kph to m/s (approx).
		WindSpeed:   o.WindKph / 3.6,
		Pressure:    o.PressureMb,
		PrecipMM:    o.PrecipMm,
		Condition:   mapWeatherAPICondition(o.Condition.Text),
		Description: describe(o.Condition.Text),
	}
}

func mapWeatherAPICondition(text string) weather.Condition {
	text = strings.ToLower(text)
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
