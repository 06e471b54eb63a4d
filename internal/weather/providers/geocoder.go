package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var errEmptyQuery = errors.New("geocode query is empty")

// geocoderKeyMu guards the package-level API key of kelvins/geocoder.
var geocoderKeyMu sync.Mutex

// GoogleGeocoder resolves free-text labels such as "Pune, IN" through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

// Geocode splits query into "city, [state,] country" parts and resolves it.
// The underlying library is not context aware; ctx only bounds how long we wait.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("geocoder: %w", errMissingAPIKey)
	}
	addr, err := addressFromLabel(query)
	if err != nil {
		return weather.Coordinates{}, err
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		geocoderKeyMu.Lock()
		defer geocoderKeyMu.Unlock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(addr)
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("geocode %q: %w", query, r.err)
		}
		return weather.Coordinates{Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}, nil
	}
}

func addressFromLabel(label string) (geocoder.Address, error) {
	var parts []string
	for _, p := range strings.Split(label, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return geocoder.Address{}, errEmptyQuery
	case 1:
		return geocoder.Address{City: parts[0]}, nil
	case 2:
		return geocoder.Address{City: parts[0], Country: parts[1]}, nil
	default:
		return geocoder.Address{City: parts[0], State: parts[1], Country: parts[len(parts)-1]}, nil
	}
}
