package policy

import (
	"context"
	"errors"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// UserFinder looks up a stored user by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

// Ownership allows a principal to reach only the resource whose id equals its own stored id.
type Ownership struct {
	users     UserFinder
	extractor ResourceIDExtractor
	logger    *logger.Logger
}

// NewOwnership creates an ownership policy. A nil extractor defaults to LastSegment.
func NewOwnership(users UserFinder, extractor ResourceIDExtractor, logger *logger.Logger) *Ownership {
	if extractor == nil {
		extractor = LastSegment{}
	}
	return &Ownership{users: users, extractor: extractor, logger: logger}
}

// Authorize decides whether principal may access the resource addressed by path.
func (o *Ownership) Authorize(ctx context.Context, principal *model.Principal, path string) Decision {
	if principal == nil || principal.SubjectID == "" {
		return Deny
	}

	resourceID, ok := o.extractor.ResourceID(path)
	if !ok {
		o.logger.Debug("Ownership policy: no resource id in path", "path", path)
		return Deny
	}

	user, err := o.users.FindByID(ctx, principal.SubjectID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			o.logger.Info("Ownership policy: principal has no stored record",
				"subject_id", principal.SubjectID)
			return Deny
		}
		o.logger.Error("Ownership policy: failed to look up principal",
			"subject_id", principal.SubjectID,
			"error", err.Error())
		return Indeterminate
	}

	if user.ID != "" && user.ID == resourceID {
		return Allow
	}

	return Deny
}
