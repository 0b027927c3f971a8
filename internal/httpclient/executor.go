package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// Executor handles retrying HTTP execution with JSON decoding. 5xx responses
// and transport errors are retried with backoff; 4xx responses fail fast.
type Executor struct {
	logger   *zap.Logger
	http     *http.Client
	retryMax int
	tag      string
}

// New creates an Executor. tag prefixes log events.
func New(logger *zap.Logger, httpClient *http.Client, retryMax int, tag string) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Executor{
		logger:   logger,
		http:     httpClient,
		retryMax: retryMax,
		tag:      tag,
	}
}

// GetJSON fetches url and JSON-decodes the response into out. out may be nil
// when only the status matters.
func (e *Executor) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		start := time.Now()
		resp, err := e.http.Do(req)
		if err != nil {
			lastErr = err
			e.logger.Warn(e.tag+".http_failed",
				zap.String("url", url),
				zap.Error(err),
				zap.Int("attempt", attempt))
			sleep(ctx, Backoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(start)

		if resp.StatusCode >= 500 {
			e.logger.Warn(e.tag+".server_error",
				zap.Int("status", resp.StatusCode),
				zap.String("url", url),
				zap.Duration("latency", elapsed))
			lastErr = fmt.Errorf("%s server error: %d", e.tag, resp.StatusCode)
			sleep(ctx, Backoff(attempt))
			continue
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s returned %d", e.tag, resp.StatusCode)
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response from %s: %w", url, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%s: retries exhausted: %w", e.tag, lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
