package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// New returns the weather client registered under name.
func New(name string, client *http.Client, cfg Config) (weather.Client, error) {
	switch name {
	case "openweather", "openweathermap", "":
		return NewOpenWeatherProvider(client, cfg), nil
	case "openmeteo":
		return NewOpenMeteoProvider(client, cfg), nil
	case "weatherapi":
		return NewWeatherAPIProvider(client, cfg), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
