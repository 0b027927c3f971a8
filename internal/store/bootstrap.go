package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var dbNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Bootstrap creates the service database if it does not exist, then ensures
// the schema inside it. adminDSN must point at the cluster's maintenance
// database ("postgres"); CREATE DATABASE cannot run inside a transaction, so
// this uses a plain single connection rather than the pool.
//
// The Aurora credentials from Secrets Manager are the cluster master user,
// which is allowed to create databases.
func Bootstrap(ctx context.Context, adminDSN, dbName string, st Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !dbNameRegex.MatchString(dbName) {
		return fmt.Errorf("invalid database name %q", dbName)
	}

	conn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database existence: %w", err)
	}

	if !exists {
		logger.Info("store.bootstrap.creating_database", zap.String("database", dbName))
		// Identifier, not a bind parameter; dbName is regex-validated above.
		if _, err := conn.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %s`, dbName)); err != nil {
			return fmt.Errorf("create database %s: %w", dbName, err)
		}
	} else {
		logger.Info("store.bootstrap.database_exists", zap.String("database", dbName))
	}

	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	logger.Info("store.bootstrap.complete", zap.String("database", dbName))
	return nil
}
