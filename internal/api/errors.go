package api

import (
	"errors"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/config"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, &apperrors.ErrNotFound{}):
		return fiber.StatusNotFound
	case errors.Is(err, &apperrors.ParseError{}):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, &apperrors.UpstreamError{}), errors.Is(err, apperrors.ErrEmptyCatalog):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	if status >= fiber.StatusInternalServerError {
		logger := config.GetLogger()
		logger.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("Request failed")

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			if id := c.Params("id"); id != "" {
				scope.SetTag("provider", id)
			}
		})
		hub.CaptureException(err)
	}

	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}
