package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterRoutes wires the full HTTP surface onto app.
func RegisterRoutes(app *fiber.App, logger *zap.Logger, h *Handler) {
	app.Use(RequestID())
	app.Use(RequestLogger(logger))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Liveness (ALB target group path) and deep health
	app.Get("/ping", h.Ping)
	app.Get("/", h.Health)

	// API routes
	v1 := app.Group("/api/v1")
	v1.Get("/users", h.ListUsers)
	v1.Post("/users", h.CreateUser)
}
