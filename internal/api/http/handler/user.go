package handler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// UserService defines user record operations.
type UserService interface {
	Create(ctx context.Context, input service.NewUser) (string, error)
	CreateAdmin(ctx context.Context, input service.NewUser, adminKey string) (string, error)
	Get(ctx context.Context, id string) (model.User, error)
	Update(ctx context.Context, id string, profile service.Profile) (model.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

// AuthService defines credential operations.
type AuthService interface {
	Login(ctx context.Context, userName, password string) (string, error)
	UpdatePassword(ctx context.Context, userName, oldPassword, newPassword string) error
}

// User handles HTTP endpoints under /users.
type User struct {
	userService    UserService
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Create registers a regular user.
func (h *User) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.userService.Create(c.UserContext(), req.toNewUser())
	if err != nil {
		return err
	}

	h.logger.Info("User handler: user created", "user_id", id)
	return c.Status(fiber.StatusCreated).JSON(IDResponse{ID: id})
}

// Get returns a single user.
func (h *User) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(newUserResponse(user))
}

// Update changes profile fields. The id in the path wins over anything in the body.
func (h *User) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Update(c.UserContext(), id, service.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(newUserResponse(user))
}

// Delete removes a user.
func (h *User) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Login exchanges credentials for a bearer token.
func (h *User) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.UserContext(), req.UserName, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(TokenResponse{Token: token})
}

// UpdatePassword changes the caller's password after re-checking the old one.
func (h *User) UpdatePassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	principal, ok := h.contextManager.GetPrincipalFromContext(c.UserContext())
	if !ok {
		return model.ErrAuthenticationFailed
	}
	if !strings.EqualFold(principal.Name, req.UserName) {
		h.logger.Info("User handler: password update for another user refused",
			"user_id", principal.SubjectID)
		return model.ErrAccessDenied
	}

	if err := h.authService.UpdatePassword(c.UserContext(), req.UserName, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func bindAndValidate(c *fiber.Ctx, req validatable) error {
	if err := c.BodyParser(req); err != nil {
		return model.NewValidationError(fmt.Errorf("malformed request body: %w", err))
	}
	return validate(req)
}

func pathID(c *fiber.Ctx) (string, error) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || id == "" {
		return "", model.NewValidationError(fmt.Errorf("invalid user id %q", c.Params("id")))
	}
	return id, nil
}
