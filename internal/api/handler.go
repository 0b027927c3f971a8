package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ttwa/helloworld/internal/metrics"
	"github.com/ttwa/helloworld/internal/store"
	"github.com/ttwa/helloworld/pkg/model"
)

// UserStore defines the store operations the handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	HealthCheck(ctx context.Context) error
}

// Bootstrapper creates the database and schema on demand. Optional — if nil,
// a missing database stays unhealthy until an operator intervenes.
type Bootstrapper func(ctx context.Context) error

// Handler serves the helloworld HTTP surface.
type Handler struct {
	logger    *zap.Logger
	store     UserStore
	bootstrap Bootstrapper
}

// NewHandler creates a Handler. bootstrap may be nil.
func NewHandler(logger *zap.Logger, st UserStore, bootstrap Bootstrapper) *Handler {
	return &Handler{
		logger:    logger,
		store:     st,
		bootstrap: bootstrap,
	}
}

// Ping reports process liveness without touching any dependency.
func (h *Handler) Ping(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(PingResponse{Status: "container running"})
}

// Health runs the deep health check against the database. When the database
// itself is missing it attempts an on-demand bootstrap so a freshly
// provisioned Aurora cluster converges without a redeploy.
func (h *Handler) Health(c *fiber.Ctx) error {
	err := h.store.HealthCheck(c.Context())
	if err == nil {
		metrics.IncDBHealthCheck("ok")
		return c.Status(fiber.StatusOK).JSON(HealthResponse{
			Status:   "healthy",
			Database: "connected",
		})
	}

	metrics.IncDBHealthCheck("failed")
	h.logger.Error("health.check_failed", zap.Error(err))

	if store.IsDatabaseMissing(err) && h.bootstrap != nil {
		if berr := h.bootstrap(c.Context()); berr == nil {
			metrics.IncSchemaBootstrap("ok")
			return c.Status(fiber.StatusOK).JSON(HealthResponse{
				Status:  "initializing",
				Message: "database created, connection will recover",
			})
		} else {
			metrics.IncSchemaBootstrap("failed")
			h.logger.Error("health.bootstrap_failed", zap.Error(berr))
		}
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
		Status: "unhealthy",
		Error:  err.Error(),
	})
}

// ListUsers returns all users.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		h.logger.Error("users.list_failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if users == nil {
		users = []model.User{}
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// CreateUser inserts a new user.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.store.CreateUser(c.Context(), model.User{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username or email already taken"})
		}
		h.logger.Error("users.create_failed",
			zap.String("username", req.Username),
			zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
