package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ttwa/helloworld/internal/store"
	"github.com/ttwa/helloworld/pkg/model"
)

// --- Mock Store ---

type mockStore struct {
	createUserFn  func(ctx context.Context, u model.User) (*model.User, error)
	listUsersFn   func(ctx context.Context) ([]model.User, error)
	healthCheckFn func(ctx context.Context) error
}

func (m *mockStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, u)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockStore) ListUsers(ctx context.Context) ([]model.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockStore) HealthCheck(ctx context.Context) error {
	if m.healthCheckFn != nil {
		return m.healthCheckFn(ctx)
	}
	return nil
}

// --- Test Helpers ---

func newTestApp(st UserStore, bootstrap Bootstrapper) *fiber.App {
	app := fiber.New()
	handler := NewHandler(zap.NewNop(), st, bootstrap)
	RegisterRoutes(app, zap.NewNop(), handler)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	respBody, _ := io.ReadAll(resp.Body)
	return resp, respBody
}

func dbMissingErr() error {
	return fmt.Errorf("postgres ping failed: %w", &pgconn.PgError{
		Code:    "3D000",
		Message: `database "helloworld" does not exist`,
	})
}

// --- Ping ---

func TestPing(t *testing.T) {
	app := newTestApp(&mockStore{}, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/ping", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"container running"}`, string(body))
}

func TestPing_DoesNotTouchStore(t *testing.T) {
	st := &mockStore{
		healthCheckFn: func(ctx context.Context) error {
			t.Fatal("ping must not call the store")
			return nil
		},
	}
	app := newTestApp(st, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/ping", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// --- Health ---

func TestHealth_Healthy(t *testing.T) {
	st := &mockStore{healthCheckFn: func(ctx context.Context) error { return nil }}
	app := newTestApp(st, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "connected", health.Database)
}

func TestHealth_Unhealthy(t *testing.T) {
	st := &mockStore{
		healthCheckFn: func(ctx context.Context) error {
			return fmt.Errorf("connection refused")
		},
	}
	app := newTestApp(st, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/", "")

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, health.Error, "connection refused")
}

func TestHealth_DatabaseMissing_BootstrapSucceeds(t *testing.T) {
	st := &mockStore{healthCheckFn: func(ctx context.Context) error { return dbMissingErr() }}

	bootstrapped := false
	app := newTestApp(st, func(ctx context.Context) error {
		bootstrapped = true
		return nil
	})

	resp, body := doRequest(t, app, http.MethodGet, "/", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, bootstrapped)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "initializing", health.Status)
}

func TestHealth_DatabaseMissing_BootstrapFails(t *testing.T) {
	st := &mockStore{healthCheckFn: func(ctx context.Context) error { return dbMissingErr() }}
	app := newTestApp(st, func(ctx context.Context) error {
		return fmt.Errorf("permission denied")
	})

	resp, _ := doRequest(t, app, http.MethodGet, "/", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth_DatabaseMissing_NoBootstrapper(t *testing.T) {
	st := &mockStore{healthCheckFn: func(ctx context.Context) error { return dbMissingErr() }}
	app := newTestApp(st, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

// --- ListUsers ---

func TestListUsers_Success(t *testing.T) {
	st := &mockStore{
		listUsersFn: func(ctx context.Context) ([]model.User, error) {
			return []model.User{
				{ID: 1, Username: "ada", Email: "ada@example.com"},
				{ID: 2, Username: "grace", Email: "grace@example.com"},
			}, nil
		},
	}
	app := newTestApp(st, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/users", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var users []model.User
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Username)
}

func TestListUsers_EmptyIsArray(t *testing.T) {
	st := &mockStore{
		listUsersFn: func(ctx context.Context) ([]model.User, error) { return nil, nil },
	}
	app := newTestApp(st, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/users", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestListUsers_StoreError(t *testing.T) {
	st := &mockStore{
		listUsersFn: func(ctx context.Context) ([]model.User, error) {
			return nil, fmt.Errorf("postgres unavailable")
		},
	}
	app := newTestApp(st, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

// --- CreateUser ---

func TestCreateUser_Success(t *testing.T) {
	st := &mockStore{
		createUserFn: func(ctx context.Context, u model.User) (*model.User, error) {
			u.ID = 42
			return &u, nil
		},
	}
	app := newTestApp(st, nil)

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/users",
		`{"username":"ada","email":"ada@example.com"}`)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user model.User
	require.NoError(t, json.Unmarshal(body, &user))
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "ada", user.Username)
}

func TestCreateUser_InvalidJSON(t *testing.T) {
	app := newTestApp(&mockStore{}, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users", "{invalid")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateUser_MissingFields(t *testing.T) {
	app := newTestApp(&mockStore{}, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users", `{"username":"ada"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/users", `{"email":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateUser_Duplicate(t *testing.T) {
	st := &mockStore{
		createUserFn: func(ctx context.Context, u model.User) (*model.User, error) {
			return nil, store.ErrDuplicateUser
		},
	}
	app := newTestApp(st, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users",
		`{"username":"ada","email":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateUser_StoreError(t *testing.T) {
	st := &mockStore{
		createUserFn: func(ctx context.Context, u model.User) (*model.User, error) {
			return nil, fmt.Errorf("postgres unavailable")
		},
	}
	app := newTestApp(st, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users",
		`{"username":"ada","email":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

// --- Request ID middleware ---

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	app := newTestApp(&mockStore{}, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/ping", "")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestID_Preserved(t *testing.T) {
	app := newTestApp(&mockStore{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}
