package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/ttwa/helloworld/pkg/config"
)

// Config holds the runtime configuration for the helloworld service.
// Every field is environment-driven with a sensible default so the container
// runs with nothing but the variables the task definition injects
// (ENVIRONMENT, DB_SECRET_ARN, DB_HOST, AWS_REGION).
type Config struct {
	ServiceName string
	Env         string // deployment environment name: "dev", "test", "prod"
	Port        int    // HTTP listen port; the ALB target group points here
	AWSRegion   string
	LogLevel    string

	DBSecretName string // Secrets Manager name or ARN holding username/password
	DBHost       string
	DBPort       int
	DBName       string
	DBSSLMode    string

	RedisAddr string // optional; empty disables the read cache
	RedisDB   int
	RedisPass string

	CacheTTL    time.Duration // TTL for resolved credentials
	CleanupFreq time.Duration // frequency for cache cleanup goroutine

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	env := pkgconfig.GetEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "helloworld"),
		Env:         env,
		Port:        pkgconfig.GetEnvInt("PORT", 5000),
		AWSRegion:   pkgconfig.GetEnv("AWS_REGION", "eu-central-1"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),

		DBSecretName: pkgconfig.GetEnv("DB_SECRET_ARN", fmt.Sprintf("%s-aurora-credentials", env)),
		DBHost:       pkgconfig.GetEnv("DB_HOST", "localhost"),
		DBPort:       pkgconfig.GetEnvInt("DB_PORT", 5432),
		DBName:       pkgconfig.GetEnv("DB_NAME", "helloworld"),
		DBSSLMode:    pkgconfig.GetEnv("DB_SSLMODE", "require"),

		RedisAddr: pkgconfig.GetEnv("REDIS_ADDR", ""),
		RedisDB:   pkgconfig.GetEnvInt("REDIS_DB", 0),
		RedisPass: pkgconfig.GetEnv("REDIS_PASS", ""),

		CacheTTL:    pkgconfig.GetEnvDuration("CACHE_TTL", 1*time.Hour),
		CleanupFreq: pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),

		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1<<20),

		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 8),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 1),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
	}

	return cfg
}

// DSN builds the Postgres connection string for the given credentials.
func (c *Config) DSN(username, password string) string {
	return c.dsnFor(c.DBName, username, password)
}

// AdminDSN is the DSN of the cluster's maintenance database, used only to
// create the service database when it does not exist yet.
func (c *Config) AdminDSN(username, password string) string {
	return c.dsnFor("postgres", username, password)
}

// dsnFor builds the URL through net/url so credentials containing reserved
// characters (@, /, ?) survive parsing; the master password is operator-chosen
// and unconstrained.
func (c *Config) dsnFor(dbName, username, password string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(username, password),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": []string{c.DBSSLMode}}.Encode(),
	}
	return u.String()
}
