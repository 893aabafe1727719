package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. metrics may be nil.
func RegisterRoutes(app *fiber.App, service *airquality.Service, metrics http.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		h := service.Health(c.UserContext())
		if h.Status != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(h)
		}
		return c.JSON(h)
	})

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	app.Get("/cities/", func(c *fiber.Ctx) error {
		names, err := service.Cities(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list cities")
		}
		return c.JSON(names)
	})

	aqi := app.Group("/aqi")

	aqi.Get("/current", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		current, err := service.Current(c.UserContext(), q.City)
		switch {
		case errors.Is(err, airquality.ErrLocationNotFound):
			return fiber.NewError(fiber.StatusNotFound, "city not found")
		case errors.Is(err, airquality.ErrNoReadings):
			return fiber.NewError(fiber.StatusNotFound, "no AQI data for requested city")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch AQI data")
		}
		return c.JSON(current)
	})

	aqi.Get("/last-24-hours", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		points, err := service.Last24Hours(c.UserContext(), q.City)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch AQI history")
		}
		return c.JSON(points)
	})

	aqi.Get("/daily-features", func(c *fiber.Ctx) error {
		day, err := parseDateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rows, err := service.DailyFeatures(c.UserContext(), day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch daily features")
		}
		return c.JSON(fiber.Map{
			"date":     day.Format(dateLayout),
			"features": rows,
		})
	})
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// cityQuery holds query parameters for identifying a location.
type cityQuery struct {
	City string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return q, errors.New("city query parameter is required")
	}
	return q, nil
}

const dateLayout = "2006-01-02"

type dateQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// parseDateQuery reads ?date=YYYY-MM-DD, defaulting to yesterday (UTC).
func parseDateQuery(c *fiber.Ctx) (time.Time, error) {
	q := dateQuery{Date: c.Query("date")}
	if err := validate.Struct(q); err != nil {
		return time.Time{}, errors.New("date must be formatted as YYYY-MM-DD")
	}
	if q.Date == "" {
		return airquality.PreviousDay(time.Now()).Start, nil
	}
	return time.Parse(dateLayout, q.Date)
}
