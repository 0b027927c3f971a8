package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ttwa/helloworld/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns a request ID when the caller did not send one and echoes
// it back on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

// RequestLogger logs each request with latency and status, plus the
// Prometheus request counter and histogram.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path
		metrics.ObserveRequest(route, c.Method(), strconv.Itoa(status), start)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := c.Locals("request_id").(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}

		if status >= 500 {
			logger.Error("http.request", fields...)
		} else {
			logger.Info("http.request", fields...)
		}
		return err
	}
}
