package secrets

import "context"

// Provider defines a generic secrets manager interface.
// Concrete implementations (AWS, GCP, etc.) can satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by name and returns a key-value map.
	GetSecret(ctx context.Context, name string) (map[string]string, error)

	// ListSecrets returns the names of all secrets whose name matches the given prefix.
	ListSecrets(ctx context.Context, prefix string) ([]string, error)

	// CreateSecret stores a new secret as a JSON map. It fails if a secret
	// with the same name already exists.
	CreateSecret(ctx context.Context, name string, values map[string]string) error
}
