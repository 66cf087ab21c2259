package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
)

// Logging is a fiber handler that logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
//
// Errors returned further down the chain are rendered here through the
// application error handler, so the logged status is the one the client sees.
func (l *Logging) Handle(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()
	if err != nil {
		if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	statusCode := c.Response().StatusCode()
	attrs := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", statusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	}

	switch {
	case statusCode >= fiber.StatusInternalServerError:
		l.logger.Error("HTTP request failed", append(attrs, "error", errString(err))...)
	case statusCode >= fiber.StatusBadRequest:
		l.logger.Warn("HTTP request rejected", attrs...)
	default:
		l.logger.Info("HTTP request completed", attrs...)
	}

	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
