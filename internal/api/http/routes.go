package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-aggregation/internal/prefs"
	"github.com/i474232898/weather-forecast-aggregation/internal/store"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

var validate = validator.New()

// Preferences groups the user preference repositories. Nil disables the
// preference routes.
type Preferences struct {
	History   *prefs.History
	Favorites *prefs.Favorites
	Settings  *prefs.Settings
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, p *Preferences) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-forecast-aggregation",
			"stats":   service.Stats(),
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := locReq.toLocation()
		snapshot, err := service.Current(c.UserContext(), loc)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return serviceError(err, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		snapshots, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.GetForecast(c.UserContext(), req.toLocation(), req.Days)
		if err != nil {
			return serviceError(err, "failed to fetch forecast")
		}

		return c.JSON(newForecastResponse(report))
	})

	v1.Get("/geo/reverse", func(c *fiber.Ctx) error {
		var req coordinatesQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Lat == nil || req.Lon == nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required")
		}

		loc, err := service.ReverseGeocode(c.UserContext(), *req.Lat, *req.Lon)
		if err != nil {
			return serviceError(err, "failed to resolve coordinates")
		}
		return c.JSON(loc)
	})

	if p != nil {
		registerPreferenceRoutes(v1, p)
	}
}

// serviceError maps weather failures onto HTTP statuses.
func serviceError(err error, fallback string) error {
	switch {
	case errors.Is(err, weather.ErrUpstream):
		// Any provider outage wins over another provider's not-found.
		return fiber.NewError(fiber.StatusBadGateway, "weather service unavailable, try again later")
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, weather.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrGeocoderUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

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

type coordinatesQuery struct {
	Lat *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lon *float64 `validate:"omitempty,gte=-180,lte=180"`
}

func (q *coordinatesQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = optionalFloat(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = optionalFloat(c, "lon"); err != nil {
		return err
	}
	if (q.Lat == nil) != (q.Lon == nil) {
		return errors.New("lat and lon must be given together")
	}
	return validate.Struct(q)
}

// forecastQuery identifies a place by city/country or by coordinates.
type forecastQuery struct {
	coordinatesQuery
	City    string
	Country string
	Days    int `validate:"gte=0,lte=6"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	if err := q.coordinatesQuery.bind(c); err != nil {
		return err
	}
	q.City = c.Query("city")
	q.Country = c.Query("country")

	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > weather.MaxForecastDays {
			return fmt.Errorf("days must be an integer between 1 and %d", weather.MaxForecastDays)
		}
		q.Days = n
	}

	if q.City == "" && q.Lat == nil {
		return errors.New("city or lat/lon query parameters are required")
	}
	return validate.Struct(q)
}

func (q forecastQuery) toLocation() weather.Location {
	loc := weather.Location{City: q.City, Country: q.Country}
	if q.Lat != nil {
		loc.Lat, loc.Lon = q.Lat, q.Lon
	}
	return loc
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, s)
	}
	return &f, nil
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
