package deploy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWaitHealthy_ImmediateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"container running"}`))
	}))
	defer srv.Close()

	w := NewHealthWaiter(zap.NewNop(), srv.Client(), 10*time.Millisecond, time.Second)
	err := w.WaitHealthy(context.Background(), srv.URL)
	require.NoError(t, err)
}

func TestWaitHealthy_EventualSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"container running"}`))
	}))
	defer srv.Close()

	w := NewHealthWaiter(zap.NewNop(), srv.Client(), 10*time.Millisecond, 5*time.Second)
	err := w.WaitHealthy(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitHealthy_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	w := NewHealthWaiter(zap.NewNop(), srv.Client(), 20*time.Millisecond, 150*time.Millisecond)
	err := w.WaitHealthy(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not healthy before deadline")
}
