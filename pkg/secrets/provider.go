// Package secrets reads service credentials from a secrets manager and keeps
// them in a short-lived in-memory cache.
package secrets

import "context"

// Provider defines a generic secrets manager interface.
type Provider interface {
	// GetSecret retrieves a secret by name and returns its key-value map.
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}
