package httpapi

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-aggregation/internal/prefs"
	"github.com/i474232898/weather-forecast-aggregation/internal/theme"
	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

type searchRequest struct {
	Term string `json:"term" validate:"required,max=100"`
}

type favoriteRequest struct {
	City    string   `json:"city" validate:"required"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (r favoriteRequest) toLocation() weather.Location {
	return weather.Location{City: r.City, Country: r.Country, Lat: r.Lat, Lon: r.Lon}
}

type themeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=light dark system"`
}

func registerPreferenceRoutes(v1 fiber.Router, p *Preferences) {
	v1.Get("/search/history", func(c *fiber.Ctx) error {
		terms, err := p.History.Load(c.UserContext())
		if err != nil {
			return storageError(err)
		}
		return c.JSON(fiber.Map{"history": terms})
	})

	v1.Post("/search/history", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		terms, err := p.History.Add(c.UserContext(), req.Term)
		if err != nil {
			return storageError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"history": terms})
	})

	v1.Delete("/search/history", func(c *fiber.Ctx) error {
		if err := p.History.Clear(c.UserContext()); err != nil {
			return storageError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		favs, err := p.Favorites.Load(c.UserContext())
		if err != nil {
			return storageError(err)
		}
		return c.JSON(fiber.Map{"favorites": favs})
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		favs, err := p.Favorites.Add(c.UserContext(), req.toLocation())
		if err != nil {
			return storageError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"favorites": favs})
	})

	// Without city the whole list is cleared.
	v1.Delete("/favorites", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			if err := p.Favorites.Clear(c.UserContext()); err != nil {
				return storageError(err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		}

		favs, err := p.Favorites.Remove(c.UserContext(), weather.Location{City: city, Country: c.Query("country")})
		if err != nil {
			return storageError(err)
		}
		return c.JSON(fiber.Map{"favorites": favs})
	})

	v1.Get("/settings/theme", func(c *fiber.Ctx) error {
		mode, err := p.Settings.ThemeMode(c.UserContext())
		if err != nil {
			return storageError(err)
		}
		return themeResponse(c, mode)
	})

	v1.Put("/settings/theme", func(c *fiber.Ctx) error {
		var req themeRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		mode, err := theme.ParseMode(req.Mode)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := p.Settings.SetThemeMode(c.UserContext(), mode); err != nil {
			return storageError(err)
		}
		return themeResponse(c, mode)
	})

	v1.Delete("/settings/data", func(c *fiber.Ctx) error {
		if err := prefs.ClearAll(c.UserContext(), p.History, p.Favorites); err != nil {
			return storageError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// maxTransitionFrames bounds ?frames on the theme routes.
const maxTransitionFrames = 60

// themeResponse renders the palette for mode. With ?from=<mode> it also
// returns the frames animating from that palette to the current one.
func themeResponse(c *fiber.Ctx, mode theme.Mode) error {
	deviceDark := c.Query("device") == "dark"
	palette := theme.Resolve(mode, deviceDark)
	body := fiber.Map{
		"mode":    mode,
		"palette": palette,
	}

	if from := c.Query("from"); from != "" {
		fromMode, err := theme.ParseMode(from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		frames := c.QueryInt("frames", 10)
		if frames < 1 || frames > maxTransitionFrames {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("frames must be between 1 and %d", maxTransitionFrames))
		}
		body["transition"] = theme.Transition(theme.Resolve(fromMode, deviceDark), palette, frames)
	}

	return c.JSON(body)
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func storageError(err error) error {
	log.Printf("ERROR: preferences: %v", err)
	return fiber.NewError(fiber.StatusInternalServerError, "failed to access preferences")
}
