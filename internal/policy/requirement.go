package policy

import (
	"context"

	"github.com/dtroode/identity-server/internal/model"
)

type requirementKind int

const (
	kindAnonymous requirementKind = iota
	kindAuthenticated
	kindRole
	kindOwner
)

// Requirement is the access rule declared by an endpoint.
type Requirement struct {
	kind requirementKind
	role string
}

// Anonymous needs no principal.
func Anonymous() Requirement { return Requirement{kind: kindAnonymous} }

// Authenticated needs any valid principal.
func Authenticated() Requirement { return Requirement{kind: kindAuthenticated} }

// Role needs a principal whose role equals name exactly.
func Role(name string) Requirement { return Requirement{kind: kindRole, role: name} }

// Owner needs a principal that passes the ownership policy.
func Owner() Requirement { return Requirement{kind: kindOwner} }

// IsAnonymous reports whether the requirement admits unauthenticated requests.
func (r Requirement) IsAnonymous() bool {
	return r.kind == kindAnonymous
}

func (r Requirement) String() string {
	switch r.kind {
	case kindAnonymous:
		return "anonymous"
	case kindAuthenticated:
		return "authenticated"
	case kindRole:
		return "role:" + r.role
	case kindOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Gate evaluates endpoint requirements for a request.
type Gate struct {
	ownership *Ownership
}

// NewGate creates a Gate that delegates owner checks to ownership.
func NewGate(ownership *Ownership) *Gate {
	return &Gate{ownership: ownership}
}

// Evaluate applies req to principal, which is nil for unauthenticated requests.
func (g *Gate) Evaluate(ctx context.Context, req Requirement, principal *model.Principal, path string) Decision {
	if req.kind == kindAnonymous {
		return Allow
	}

	if principal == nil {
		return Deny
	}

	switch req.kind {
	case kindAuthenticated:
		return Allow
	case kindRole:
		if req.role != "" && principal.Role == req.role {
			return Allow
		}
		return Deny
	case kindOwner:
		if g.ownership == nil {
			return Indeterminate
		}
		return g.ownership.Authorize(ctx, principal, path)
	default:
		return Indeterminate
	}
}
