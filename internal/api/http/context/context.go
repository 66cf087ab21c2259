package context

import (
	"context"

	"github.com/dtroode/identity-server/internal/model"
)

// principalKey is the context key under which the authenticated principal is stored.
type principalKey struct{}

// Manager stores and retrieves the authenticated principal in a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
//
// Returns a pointer to the newly created Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipalToContext returns a copy of ctx carrying principal.
//
// Parameters:
//   - ctx: The request context
//   - principal: The identity extracted from a validated token
//
// Returns a new context with the principal attached.
func (m *Manager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipalFromContext retrieves the principal stored by SetPrincipalToContext.
//
// Parameters:
//   - ctx: The request context
//
// Returns the principal and a boolean indicating whether one was found.
func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(model.Principal)
	if !ok || principal.SubjectID == "" {
		return model.Principal{}, false
	}
	return principal, true
}
