package handler

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewErrorHandler returns the application-wide fiber error handler.
// Authentication and authorization failures carry a generic message only.
func NewErrorHandler(logger *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("HTTP handler: unhandled error",
				"method", c.Method(),
				"path", c.Path(),
				"error", err.Error())
		}
		return c.Status(status).JSON(body)
	}
}

func classify(err error) (int, ErrorResponse) {
	var validationErr *model.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: fieldErrors(validationErr.Err),
		}
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, model.ErrAuthenticationFailed):
		return fiber.StatusUnauthorized, ErrorResponse{Error: "unauthorized"}
	case errors.Is(err, model.ErrAccessDenied):
		return fiber.StatusForbidden, ErrorResponse{Error: "forbidden"}
	case errors.Is(err, model.ErrConflict):
		return fiber.StatusConflict, ErrorResponse{Error: model.ErrConflict.Error()}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse{Error: fiberErr.Message}
	default:
		return fiber.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}

func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		fields[name] = fieldErr.Error()
	}
	return fields
}
