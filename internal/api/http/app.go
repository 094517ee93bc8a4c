package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const serviceName = "weather-forecast-proxy"

// Options tunes the Fiber app built by NewApp.
type Options struct {
	// AccessLog enables one log line per request via the logger middleware.
	AccessLog bool
}

// NewApp builds the Fiber app with middleware, error handling and routes.
func NewApp(service ForecastService, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	RegisterRoutes(app, service)

	return app
}

// errorHandler renders every error as a small JSON body. Only *fiber.Error
// messages reach the caller; anything else becomes a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
