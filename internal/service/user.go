package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// NewUser holds the fields supplied when an account is created.
type NewUser struct {
	UserName  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// Profile holds the fields a user may change after creation.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// Users manages user records.
type Users struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	adminKey  string
	logger    *logger.Logger
	now       func() time.Time
}

// NewUsers creates the user service. An empty adminKey disables admin creation.
func NewUsers(userStore model.UserStore, hasher model.PasswordHasher, adminKey string, logger *logger.Logger) *Users {
	return &Users{
		userStore: userStore,
		hasher:    hasher,
		adminKey:  adminKey,
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers a regular user and returns its id.
func (s *Users) Create(ctx context.Context, input NewUser) (string, error) {
	return s.create(ctx, input, model.RoleUser)
}

// CreateAdmin registers an admin when adminKey matches the configured key.
func (s *Users) CreateAdmin(ctx context.Context, input NewUser, adminKey string) (string, error) {
	if !s.adminKeyMatches(adminKey) {
		s.logger.Warn("User service: rejected admin creation with invalid key",
			"user_name", input.UserName)
		return "", model.ErrAuthenticationFailed
	}
	return s.create(ctx, input, model.RoleAdmin)
}

func (s *Users) adminKeyMatches(key string) bool {
	if s.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) == 1
}

// create checks the username before inserting. The check and the insert are
// not atomic; stores report a late duplicate as model.ErrConflict where they can.
func (s *Users) create(ctx context.Context, input NewUser, role string) (string, error) {
	s.logger.Debug("User service: starting user creation",
		"user_name", input.UserName,
		"role", role)

	_, err := s.userStore.FindByUserName(ctx, input.UserName)
	switch {
	case err == nil:
		s.logger.Info("User service: username already exists",
			"user_name", input.UserName)
		return "", model.ErrConflict
	case !errors.Is(err, model.ErrNotFound):
		s.logger.Error("User service: failed to get user by username",
			"user_name", input.UserName,
			"error", err.Error())
		return "", fmt.Errorf("failed to get user by username: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("User service: failed to hash password",
			"user_name", input.UserName,
			"error", err.Error())
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	saved, err := s.userStore.Create(ctx, model.User{
		ID:           uuid.NewString(),
		UserName:     input.UserName,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Role:         role,
		IsOwner:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return "", model.ErrConflict
		}
		s.logger.Error("User service: failed to create user",
			"user_name", input.UserName,
			"error", err.Error())
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User service: user created",
		"user_id", saved.ID,
		"role", role)

	return saved.ID, nil
}

// Get returns the user with the given id.
func (s *Users) Get(ctx context.Context, id string) (model.User, error) {
	user, err := s.userStore.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Update changes the profile fields of the user with the given id.
func (s *Users) Update(ctx context.Context, id string, profile Profile) (model.User, error) {
	updated, err := s.userStore.Update(ctx, model.User{
		ID:        id,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		s.logger.Error("User service: failed to update user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User service: user updated", "user_id", id)
	return updated, nil
}

// Delete removes the user with the given id.
func (s *Users) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.userStore.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		s.logger.Error("User service: failed to delete user",
			"user_id", id,
			"error", err.Error())
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User service: user deleted", "user_id", id)
	return nil
}

// List returns every stored user.
func (s *Users) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Ping reports whether the backing store is reachable.
func (s *Users) Ping(ctx context.Context) error {
	return s.userStore.Ping(ctx)
}
