package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ttwa/helloworld/pkg/model"
)

// ErrDuplicateUser is returned when an insert violates the username or email
// uniqueness constraint.
var ErrDuplicateUser = errors.New("user already exists")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the contract for persisting and caching users.
type Store interface {
	EnsureSchema(ctx context.Context) error
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore is Postgres-backed with an optional Redis read cache.
// Redis being absent or down never fails a write path.
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

const listCacheKey = "users:all"
const listCacheTTL = 30 * time.Second

// NewHybrid creates the store. redisAddr may be empty, in which case the
// store is Postgres-only; redisPass may be empty for unauthenticated Redis.
// pgxpool does not dial eagerly, so an unreachable database surfaces at the
// first query (health check), not here.
func NewHybrid(redisAddr string, redisDB int, redisPass string, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			DB:       redisDB,
			Password: redisPass,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure postgres pool: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// EnsureSchema creates the users table if missing. Idempotent.
func (s *HybridStore) EnsureSchema(ctx context.Context) error {
	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	_, err := s.PG.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id       BIGSERIAL PRIMARY KEY,
			username VARCHAR(80)  UNIQUE NOT NULL,
			email    VARCHAR(120) UNIQUE NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateUser inserts a user and returns the stored row. Duplicate username
// or email maps to ErrDuplicateUser. The cached listing is busted on success.
func (s *HybridStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	row := s.PG.QueryRow(ctx, `
		INSERT INTO users (username, email)
		VALUES ($1, $2)
		RETURNING id
	`, u.Username, u.Email)

	if err := row.Scan(&u.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, listCacheKey).Err(); err != nil {
			s.logger.Warn("store.redis.bust_failed", zap.Error(err))
		}
	}
	return &u, nil
}

func (s *HybridStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	var u model.User
	err := s.PG.QueryRow(ctx, `
		SELECT id, username, email FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, via the Redis cache when one is configured.
func (s *HybridStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var cached []model.User
	if err := s.GetJSON(ctx, listCacheKey, &cached); err == nil && cached != nil {
		return cached, nil
	}

	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	rows, err := s.PG.Query(ctx, `
		SELECT id, username, email FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var results []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.SetJSON(ctx, listCacheKey, results, listCacheTTL); err != nil {
		s.logger.Warn("store.redis.cache_failed", zap.Error(err))
	}
	return results, nil
}

// SetJSON stores a JSON-encoded value in Redis. No-op without Redis.
func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.redis == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads a JSON-encoded value from Redis into dest.
// Returns redis.Nil when the key is absent; any error without Redis.
func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	if s.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// HealthCheck pings Postgres (and Redis when configured).
func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.PG == nil {
		return fmt.Errorf("postgres not initialized")
	}
	var one int
	if err := s.PG.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// IsDatabaseMissing reports whether err indicates the target database does
// not exist yet (invalid_catalog_name), the one failure mode the service
// repairs on demand via bootstrap.
func IsDatabaseMissing(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "3D000"
}

// IsAuthFailure reports whether err is a Postgres authentication rejection
// (invalid_password or invalid_authorization_specification). Seen when cached
// credentials go stale after a secret rotation.
func IsAuthFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "28P01" || pgErr.Code == "28000"
}
