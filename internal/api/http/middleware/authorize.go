package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/policy"
)

// Evaluator decides whether a principal satisfies a route requirement.
type Evaluator interface {
	Evaluate(ctx context.Context, req policy.Requirement, principal *model.Principal, path string) policy.Decision
}

// Authorize enforces per-route requirements.
type Authorize struct {
	gate           Evaluator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthorize creates a new Authorize middleware instance.
func NewAuthorize(gate Evaluator, contextManager model.ContextManager, logger *logger.Logger) *Authorize {
	return &Authorize{gate: gate, contextManager: contextManager, logger: logger}
}

// Require returns a handler that lets the request through only when req is met.
// Requests without a principal on a protected route fail authentication;
// any decision other than Allow fails authorization.
func (m *Authorize) Require(req policy.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if req.IsAnonymous() {
			return c.Next()
		}

		ctx := c.UserContext()
		principal, ok := m.contextManager.GetPrincipalFromContext(ctx)
		if !ok {
			return model.ErrAuthenticationFailed
		}

		decision := m.gate.Evaluate(ctx, req, &principal, c.Path())
		if !decision.Allowed() {
			m.logger.Info("Authorize middleware: access denied",
				"path", c.Path(),
				"user_id", principal.SubjectID,
				"requirement", req.String(),
				"decision", decision.String())
			return model.ErrAccessDenied
		}

		return c.Next()
	}
}
