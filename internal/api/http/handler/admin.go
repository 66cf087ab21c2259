package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/logger"
)

// Admin handles HTTP endpoints under /admins.
type Admin struct {
	userService UserService
	logger      *logger.Logger
}

// NewAdmin creates a new Admin handler.
func NewAdmin(userService UserService, logger *logger.Logger) *Admin {
	return &Admin{userService: userService, logger: logger}
}

// Create registers an admin. The adminKey query parameter must match the configured key.
func (h *Admin) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.userService.CreateAdmin(c.UserContext(), req.toNewUser(), c.Query("adminKey"))
	if err != nil {
		return err
	}

	h.logger.Info("Admin handler: admin created", "user_id", id)
	return c.Status(fiber.StatusCreated).JSON(IDResponse{ID: id})
}

// List returns every stored user.
func (h *Admin) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext())
	if err != nil {
		return err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	return c.JSON(resp)
}
