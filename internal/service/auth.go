package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// dummyPassword is hashed once so that logins for unknown users still pay for a verification.
const dummyPassword = "identity-server/unknown-user"

// Auth authenticates credentials and issues tokens.
type Auth struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	issuer    model.TokenIssuer
	logger    *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuth creates the authentication flow.
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	issuer model.TokenIssuer,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore: userStore,
		hasher:    hasher,
		issuer:    issuer,
		logger:    logger,
	}
}

// Login verifies the credentials and returns a token built from the stored record.
// Unknown users and wrong passwords both yield model.ErrAuthenticationFailed.
func (a *Auth) Login(ctx context.Context, userName, password string) (string, error) {
	a.logger.Debug("Auth service: starting login",
		"user_name", userName)

	user, err := a.authenticate(ctx, userName, password)
	if err != nil {
		return "", err
	}

	token, err := a.issuer.Issue(user.Principal())
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login succeeded",
		"user_id", user.ID,
		"role", user.Role)

	return token, nil
}

// UpdatePassword re-authenticates with the old password and stores a hash of
// the new one. Nothing is written when re-authentication fails.
func (a *Auth) UpdatePassword(ctx context.Context, userName, oldPassword, newPassword string) error {
	a.logger.Debug("Auth service: starting password update",
		"user_name", userName)

	user, err := a.authenticate(ctx, userName, oldPassword)
	if err != nil {
		return err
	}

	if newPassword == "" {
		return model.NewValidationError(errors.New("new password must not be empty"))
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash new password",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
		a.logger.Error("Auth service: failed to store new password",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Auth service: password updated",
		"user_id", user.ID)

	return nil
}

func (a *Auth) authenticate(ctx context.Context, userName, password string) (model.User, error) {
	user, err := a.userStore.FindByUserName(ctx, userName)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to get user by username",
				"user_name", userName,
				"error", err.Error())
			return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
		}
		a.verifyDummy(password)
		a.logger.Info("Auth service: authentication failed",
			"user_name", userName)
		return model.User{}, model.ErrAuthenticationFailed
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: authentication failed",
			"user_name", userName)
		return model.User{}, model.ErrAuthenticationFailed
	}

	return user, nil
}

func (a *Auth) verifyDummy(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash", "error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	_ = a.hasher.Verify(password, a.dummyHash)
}
