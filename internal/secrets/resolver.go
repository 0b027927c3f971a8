package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgsecrets "github.com/ttwa/helloworld/pkg/secrets"
)

// DBCredentialsResolver resolves the Aurora master credentials from AWS
// Secrets Manager, caching them locally to reduce API calls.
//
// Secret naming convention: {env}-aurora-credentials
// Secret JSON format:       {"username": "...", "password": "..."}
type DBCredentialsResolver struct {
	logger     *zap.Logger
	secretName string
	provider   pkgsecrets.Provider
	cache      *pkgsecrets.Cache[pkgsecrets.Credentials]
}

// NewDBCredentialsResolver constructs a resolver for the given secret name or ARN.
func NewDBCredentialsResolver(
	logger *zap.Logger,
	secretName string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[pkgsecrets.Credentials],
) *DBCredentialsResolver {
	return &DBCredentialsResolver{
		logger:     logger,
		secretName: secretName,
		provider:   provider,
		cache:      cache,
	}
}

// Resolve fetches or caches the database credentials.
func (r *DBCredentialsResolver) Resolve(ctx context.Context) (pkgsecrets.Credentials, error) {
	// --- check in-memory cache first ---
	if creds, ok := r.cache.Get(r.secretName); ok {
		return creds, nil
	}

	// --- fetch from AWS Secrets Manager ---
	secretMap, err := r.provider.GetSecret(ctx, r.secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("secret", r.secretName),
			zap.Error(err))
		return pkgsecrets.Credentials{}, fmt.Errorf("resolve db credentials: %w", err)
	}

	creds, err := parseCredentials(secretMap)
	if err != nil {
		return pkgsecrets.Credentials{}, fmt.Errorf("parse secret %q: %w", r.secretName, err)
	}

	// --- cache locally for next time ---
	r.cache.Put(r.secretName, creds)

	r.logger.Info("aws.db_credentials_resolved",
		zap.String("secret", r.secretName),
		zap.String("username", creds.Username),
	)
	return creds, nil
}

// Invalidate drops the cached credentials, forcing a re-fetch on the next
// Resolve. The schema bootstrap path calls this when Postgres rejects the
// cached password, so a rotated secret is retried without restarting the
// task. The serving pool keeps the credentials it started with; a rotation
// that breaks it needs a redeploy (see the README runbook).
func (r *DBCredentialsResolver) Invalidate() {
	r.cache.Bust(r.secretName)
}

// parseCredentials extracts a username/password pair from the raw secret map.
func parseCredentials(m map[string]string) (pkgsecrets.Credentials, error) {
	creds := pkgsecrets.Credentials{
		Username: m["username"],
		Password: m["password"],
	}
	if creds.Username == "" {
		return pkgsecrets.Credentials{}, fmt.Errorf("missing required field 'username'")
	}
	if creds.Password == "" {
		return pkgsecrets.Credentials{}, fmt.Errorf("missing required field 'password'")
	}
	return creds, nil
}
