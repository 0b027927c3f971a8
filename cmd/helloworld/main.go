package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ttwa/helloworld/internal/api"
	"github.com/ttwa/helloworld/internal/config"
	internalsecrets "github.com/ttwa/helloworld/internal/secrets"
	"github.com/ttwa/helloworld/internal/store"
	"github.com/ttwa/helloworld/pkg/logger"
	"github.com/ttwa/helloworld/pkg/secrets"
	"github.com/ttwa/helloworld/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [helloworld]...")

	// --- AWS Secrets Manager provider ---
	awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
	}

	// --- Credentials resolver (secret cached in-memory) ---
	credsCache := secrets.NewCache[secrets.Credentials](cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	go credsCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

	resolver := internalsecrets.NewDBCredentialsResolver(
		logg.Desugar(),
		cfg.DBSecretName,
		awsProvider,
		credsCache,
	)

	// Credentials are required to build the DSN; without them the process
	// cannot serve and the orchestrator should restart it.
	creds, err := resolver.Resolve(ctx)
	if err != nil {
		logg.Fatalw("failed to resolve database credentials",
			"secret", cfg.DBSecretName,
			"error", err)
	}

	dsn := cfg.DSN(creds.Username, creds.Password)
	logg.Info("connecting to DSN: ", utils.MaskDSN(dsn))

	// --- Store (Postgres, optional Redis cache) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, dsn, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Schema bootstrap (best-effort at startup, retried from /) ---
	bootstrap := func(ctx context.Context) error {
		creds, err := resolver.Resolve(ctx)
		if err != nil {
			return err
		}
		err = store.Bootstrap(ctx, cfg.AdminDSN(creds.Username, creds.Password), cfg.DBName, st, logger.L())
		if !store.IsAuthFailure(err) {
			return err
		}
		// Cached credentials went stale after a rotation: refetch and retry once.
		logg.Warnw("bootstrap auth failed, refetching credentials", "error", err)
		resolver.Invalidate()
		creds, err = resolver.Resolve(ctx)
		if err != nil {
			return err
		}
		return store.Bootstrap(ctx, cfg.AdminDSN(creds.Username, creds.Password), cfg.DBName, st, logger.L())
	}

	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	if err := bootstrap(bootCtx); err != nil {
		logg.Warnw("could not bootstrap database during startup; health endpoint will retry",
			"error", err)
	}
	cancelBoot()

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewHandler(logg.Desugar(), st, bootstrap)
	api.RegisterRoutes(app, logger.L(), handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			// Bind failure is fatal; restart policy is the orchestrator's job.
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[helloworld] running",
		"env", cfg.Env,
		"port", cfg.Port,
		"db_host", cfg.DBHost,
		"redis", cfg.RedisAddr != "")

	<-ctx.Done()
	logg.Info("shutting down [helloworld]...")

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
