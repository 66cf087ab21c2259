package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/token"
)

const bearerPrefix = "bearer "

// Authenticate validates bearer tokens and injects the principal into the request context.
//
// A missing or invalid token is not an error here: the request continues
// without a principal and route authorization decides what that means.
type Authenticate struct {
	validator      model.TokenValidator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(validator model.TokenValidator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{validator: validator, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header and attaches the principal when the token is valid.
func (m *Authenticate) Handle(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	principal, err := m.validator.Validate(tokenString)
	if err != nil {
		if token.IsExpired(err) {
			m.logger.Info("Authenticate middleware: token expired",
				"path", c.Path())
		} else {
			m.logger.Debug("Authenticate middleware: token rejected",
				"path", c.Path(),
				"error", err.Error())
		}
		return c.Next()
	}

	c.SetUserContext(m.contextManager.SetPrincipalToContext(c.UserContext(), principal))
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
