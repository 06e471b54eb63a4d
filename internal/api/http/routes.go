package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

const geocodeTimeout = 5 * time.Second

// Rotation is the part of the scheduler the API reads and drives.
type Rotation interface {
	Index() int
	Current() weather.Location
	Locations() []weather.Location
	Interval() time.Duration
	Trigger(loc weather.Location) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// geocoder may be nil, in which case searches must carry coordinates.
func RegisterRoutes(app *fiber.App, service *weather.Service, rotation Rotation, geocoder weather.Geocoder) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(dashboardResponse{
			View:     service.View(),
			Rotation: rotationInfoOf(rotation),
		})
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"index":     rotation.Index(),
			"locations": rotation.Locations(),
		})
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid search body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := req.resolve(c.UserContext(), geocoder)
		if err != nil {
			return err
		}

		if err := rotation.Trigger(loc); err != nil {
			if errors.Is(err, scheduler.ErrStopped) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard is shutting down")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start fetch")
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"location": loc,
		})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cycle, err := service.GetLatest(q.City)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(cycle)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cycles, err := service.GetRange(req.City.City, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"city":   req.City.City,
			"from":   req.From,
			"to":     req.To,
			"cycles": cycles,
		})
	})
}

type rotationInfo struct {
	Index    int              `json:"index"`
	Location weather.Location `json:"location"`
	Interval string           `json:"interval"`
}

func rotationInfoOf(r Rotation) rotationInfo {
	return rotationInfo{
		Index:    r.Index(),
		Location: r.Current(),
		Interval: r.Interval().String(),
	}
}

type dashboardResponse struct {
	weather.View
	Rotation rotationInfo `json:"rotation"`
}

// searchRequest is a search selection event: a display label and "lat lon".
type searchRequest struct {
	Label string `json:"label" validate:"required,max=200"`
	Value string `json:"value" validate:"omitempty,max=64"`
}

func (r searchRequest) resolve(ctx context.Context, geocoder weather.Geocoder) (weather.Location, error) {
	if r.Value != "" {
		loc, err := weather.ParseSearchSelection(r.Label, r.Value)
		if err != nil {
			return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return loc, nil
	}

	if geocoder == nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadRequest, "value is required")
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	coords, err := geocoder.Geocode(ctx, r.Label)
	if err != nil {
		return weather.Location{}, fiber.NewError(fiber.StatusBadGateway, "could not resolve location")
	}
	return weather.Location{Label: r.Label, Coordinates: coords}, nil
}

// cityQuery identifies a location by its display label.
type cityQuery struct {
	City string `validate:"required"`
}

func (q *cityQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City cityQuery
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	if err := h.City.bind(c); err != nil {
		return err
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
