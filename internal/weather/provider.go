package weather

import (
	"context"
	"time"
)

// Client abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo)
// exposing the two reads a fetch cycle needs.
type Client interface {
	Name() string
	CurrentConditions(ctx context.Context, coords Coordinates) (Reading, error)
	Forecast(ctx context.Context, coords Coordinates) (Reading, error)
}

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Coordinates, error)
}

// Store is the contract the presentation state must satisfy.
type Store interface {
	SetLoading(loading bool)
	SetError(msg string)
	SaveCycle(cycle Cycle)
	View() View
	GetLatest(label string) (Cycle, error)
	GetRange(label string, from, to time.Time) ([]Cycle, error)
}
