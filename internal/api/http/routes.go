package httpapi

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-proxy/internal/weather"
)

var validate = validator.New()

const (
	msgLocationRequired = "location query parameter is required"
	msgFetchFailed      = "failed to fetch weather forecast"
)

// ForecastService is the part of weather.Service the handlers depend on.
type ForecastService interface {
	GetForecast(ctx context.Context, location string) (weather.WeatherResponse, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ForecastService) {
	app.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseForecastQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, msgLocationRequired)
		}

		resp, err := service.GetForecast(c.UserContext(), q.Location)
		if err != nil {
			if errors.Is(err, weather.ErrEmptyLocation) {
				return fiber.NewError(fiber.StatusBadRequest, msgLocationRequired)
			}
			// Upstream detail stays in the log; the caller gets a generic 500.
			log.Printf("ERROR: forecast failed for location=%q request_id=%s: %v",
				q.Location, c.GetRespHeader(fiber.HeaderXRequestID), err)
			return fiber.NewError(fiber.StatusInternalServerError, msgFetchFailed)
		}

		return c.JSON(resp)
	})
}

// forecastQuery holds the query parameters of GET /weather.
type forecastQuery struct {
	Location string `validate:"required"`
}

func parseForecastQuery(c *fiber.Ctx) (forecastQuery, error) {
	var q forecastQuery

	q.Location = strings.TrimSpace(c.Query("location"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
