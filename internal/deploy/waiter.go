package deploy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ttwa/helloworld/internal/httpclient"
)

// HealthWaiter polls a freshly deployed environment's /ping endpoint until
// the service answers, or the deadline passes. DNS propagation and ALB
// target registration make the first minutes after a deploy unreliable, so
// individual failures are expected and only logged.
type HealthWaiter struct {
	logger   *zap.Logger
	exec     *httpclient.Executor
	interval time.Duration
	timeout  time.Duration
}

// NewHealthWaiter builds a waiter. A nil httpClient gets sane defaults.
func NewHealthWaiter(logger *zap.Logger, httpClient *http.Client, interval, timeout time.Duration) *HealthWaiter {
	return &HealthWaiter{
		logger:   logger,
		exec:     httpclient.New(logger, httpClient, 0, "waiter"),
		interval: interval,
		timeout:  timeout,
	}
}

// WaitHealthy blocks until baseURL+"/ping" responds with the expected
// liveness payload.
func (w *HealthWaiter) WaitHealthy(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	url := baseURL + "/ping"
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		var out struct {
			Status string `json:"status"`
		}
		err := w.exec.GetJSON(ctx, url, &out)
		if err == nil && out.Status != "" {
			w.logger.Info("waiter.healthy",
				zap.String("url", url),
				zap.Int("attempts", attempt))
			return nil
		}
		if err != nil {
			w.logger.Info("waiter.not_ready",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service at %s not healthy before deadline: %w", baseURL, ctx.Err())
		case <-ticker.C:
		}
	}
}
