package weather

import (
	"encoding/json"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Payload is a parsed provider response body, kept as-is.
type Payload map[string]any

// Summary is the normalized view of a single provider observation or forecast entry.
type Summary struct {
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
}

// DaySummary aggregates the forecast entries that fall on one UTC day.
type DaySummary struct {
	Date        time.Time `json:"date"`
	High        float64   `json:"highC"`
	Low         float64   `json:"lowC"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"maxWindSpeed"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description,omitempty"`
}

// Reading is one decoded provider response.
// Current-conditions readings carry Summary; forecast readings carry Entries.
type Reading struct {
	Provider string
	Body     Payload
	Summary  *Summary
	Entries  []Summary
}

// Snapshot is the latest successfully parsed response body for one side of a fetch cycle,
// tagged with the display label it was requested for.
type Snapshot struct {
	CycleID   string
	City      string
	Location  Location
	Provider  string
	FetchedAt time.Time
	Body      Payload

	Summary *Summary
	Daily   []DaySummary
}

// MarshalJSON renders the snapshot as {city: label} overlaid with the response body.
// A "city" key in the body replaces the label, as the forecast's city object does.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Body)+3)
	out["city"] = s.City
	for k, v := range s.Body {
		out[k] = v
	}
	if s.Summary != nil {
		out["summary"] = s.Summary
	}
	if len(s.Daily) > 0 {
		out["daily"] = s.Daily
	}
	return json.Marshal(out)
}

// Status is the loading/error part of the presentation state.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// View is a point-in-time copy of the presentation state.
// Current and Forecast are nil until the first successful cycle.
type View struct {
	Current  *Snapshot `json:"current"`
	Forecast *Snapshot `json:"forecast"`
	Status
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Cycle is one successful fetch cycle as kept in history.
type Cycle struct {
	ID        string    `json:"id"`
	Location  Location  `json:"location"`
	FetchedAt time.Time `json:"fetchedAt"`
	Current   Snapshot  `json:"current"`
	Forecast  Snapshot  `json:"forecast"`
}
