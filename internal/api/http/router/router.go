package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/identity-server/internal/api/http/handler"
	"github.com/dtroode/identity-server/internal/api/http/middleware"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/policy"
)

// APIPrefix is the path every route is mounted under.
const APIPrefix = "/api"

// UserService is the user record surface the router exposes.
type UserService interface {
	handler.UserService
	handler.Pinger
}

// Timeouts bounds reading and writing a single request.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
}

// Route binds a method and path to the requirement a caller must meet.
type Route struct {
	Method      string
	Path        string
	Requirement policy.Requirement
	Handler     fiber.Handler
}

// Router represents the HTTP router for identity operations.
// It owns the endpoint gating table and the middleware chain.
type Router struct {
	userService    UserService
	authService    handler.AuthService
	tokenValidator model.TokenValidator
	gate           middleware.Evaluator
	contextManager model.ContextManager
	timeouts       Timeouts
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
//
// Parameters:
//   - userService: The user record service
//   - authService: The login and password service
//   - tokenValidator: Validates bearer tokens on incoming requests
//   - gate: Evaluates route requirements
//   - contextManager: Carries the principal through the request context
//   - timeouts: Read and write timeouts for the fiber app
//   - logger: The logger for request logging
//
// Returns a pointer to the newly created Router instance.
func New(
	userService UserService,
	authService handler.AuthService,
	tokenValidator model.TokenValidator,
	gate middleware.Evaluator,
	contextManager model.ContextManager,
	timeouts Timeouts,
	logger *logger.Logger,
) *Router {
	return &Router{
		userService:    userService,
		authService:    authService,
		tokenValidator: tokenValidator,
		gate:           gate,
		contextManager: contextManager,
		timeouts:       timeouts,
		logger:         logger,
	}
}

// Routes returns the endpoint gating table, relative to APIPrefix.
func (r *Router) Routes() []Route {
	users := handler.NewUser(r.userService, r.authService, r.contextManager, r.logger)
	admins := handler.NewAdmin(r.userService, r.logger)
	health := handler.NewHealth(r.userService, r.logger)

	return []Route{
		{Method: fiber.MethodPost, Path: "/users", Requirement: policy.Anonymous(), Handler: users.Create},
		{Method: fiber.MethodPost, Path: "/users/login", Requirement: policy.Anonymous(), Handler: users.Login},
		{Method: fiber.MethodGet, Path: "/users/:id", Requirement: policy.Owner(), Handler: users.Get},
		{Method: fiber.MethodPut, Path: "/users/:id", Requirement: policy.Owner(), Handler: users.Update},
		{Method: fiber.MethodDelete, Path: "/users/:id", Requirement: policy.Owner(), Handler: users.Delete},
		{Method: fiber.MethodPut, Path: "/users/updatepassword/:id", Requirement: policy.Owner(), Handler: users.UpdatePassword},
		{Method: fiber.MethodPost, Path: "/admins", Requirement: policy.Anonymous(), Handler: admins.Create},
		{Method: fiber.MethodGet, Path: "/admins", Requirement: policy.Role(model.RoleAdmin), Handler: admins.List},
		{Method: fiber.MethodGet, Path: "/healthz", Requirement: policy.Anonymous(), Handler: health.Check},
	}
}

// Register builds the fiber app with request logging, authentication and
// every route of the gating table.
//
// Returns the configured fiber app.
func (r *Router) Register() *fiber.App {
	logging := middleware.NewLogging(r.logger.With("component", "http"))
	authenticate := middleware.NewAuthenticate(r.tokenValidator, r.contextManager, r.logger)
	authorize := middleware.NewAuthorize(r.gate, r.contextManager, r.logger)

	app := fiber.New(fiber.Config{
		AppName:               "identity-server",
		ErrorHandler:          handler.NewErrorHandler(r.logger),
		ReadTimeout:           r.timeouts.Read,
		WriteTimeout:          r.timeouts.Write,
		DisableStartupMessage: true,
	})
	app.Use(logging.Handle, authenticate.Handle)

	api := app.Group(APIPrefix)
	for _, route := range r.Routes() {
		api.Add(route.Method, route.Path, authorize.Require(route.Requirement), route.Handler)
	}

	return app
}
