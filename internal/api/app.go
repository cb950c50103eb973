// Package api exposes the catalog service as a JSON HTTP API.
package api

import (
	"time"

	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const appName = "AnimeProviders"

// NewApp creates the fiber application with every route registered
func NewApp(catalog services.Catalog) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger)

	registerRoutes(app, &handlers{catalog: catalog})
	return app
}

// requestLogger writes one structured line per request
func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}

	logger := config.GetLogger()
	logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
	return err
}
