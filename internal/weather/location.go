package weather

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCoordinates is returned when a "lat lon" pair cannot be parsed.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrEmptyLabel is returned when a location has no display label.
	ErrEmptyLabel = errors.New("location label is required")
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// String formats the pair the way search selections carry it: "lat lon".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + " " + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// Location represents a named place for which we fetch weather.
type Location struct {
	Label       string      `json:"label"`
	Coordinates Coordinates `json:"coordinates"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(strings.TrimSpace(l.Label))
}

// DefaultLocations returns the built-in rotation.
func DefaultLocations() []Location {
	return []Location{
		{Label: "Mumbai, IN", Coordinates: Coordinates{Latitude: 19.0760, Longitude: 72.8777}},
		{Label: "Delhi, IN", Coordinates: Coordinates{Latitude: 28.6139, Longitude: 77.2090}},
		{Label: "Bengaluru, IN", Coordinates: Coordinates{Latitude: 12.9716, Longitude: 77.5946}},
		{Label: "Chennai, IN", Coordinates: Coordinates{Latitude: 13.0827, Longitude: 80.2707}},
		{Label: "Kolkata, IN", Coordinates: Coordinates{Latitude: 22.5726, Longitude: 88.3639}},
		{Label: "Hyderabad, IN", Coordinates: Coordinates{Latitude: 17.3850, Longitude: 78.4867}},
	}
}

// ParseCoordinates parses a whitespace separated "lat lon" pair.
func ParseCoordinates(value string) (Coordinates, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("%w: expected \"lat lon\", got %q", ErrInvalidCoordinates, value)
	}

	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, parts[0])
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, parts[1])
	}

	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, lon)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// ParseSearchSelection builds a Location from a search selection event {label, value: "lat lon"}.
func ParseSearchSelection(label, value string) (Location, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Location{}, ErrEmptyLabel
	}
	coords, err := ParseCoordinates(value)
	if err != nil {
		return Location{}, err
	}
	return Location{Label: label, Coordinates: coords}, nil
}

// ParseLocationList parses "label|lat lon;label|lat lon" into an ordered rotation.
func ParseLocationList(s string) ([]Location, error) {
	var locs []Location
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		label, value, ok := strings.Cut(entry, "|")
		if !ok {
			return nil, fmt.Errorf("location %q: expected \"label|lat lon\"", entry)
		}
		loc, err := ParseSearchSelection(label, value)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", entry, err)
		}
		locs = append(locs, loc)
	}
	if len(locs) == 0 {
		return nil, fmt.Errorf("no locations in %q", s)
	}
	return locs, nil
}
