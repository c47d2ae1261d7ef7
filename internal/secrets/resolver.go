package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/pkg/errs"
	pkgsecrets "github.com/Checker-Finance/refdata/pkg/secrets"
)

// Resolver resolves per-service credentials from a secrets provider and
// caches them locally. It is generic over the parsed credential type T.
//
// Secret naming convention: {env}/{namespace}/{service}
type Resolver[T any] struct {
	logger    *zap.Logger
	env       string
	namespace string
	provider  pkgsecrets.Provider
	cache     *pkgsecrets.Cache[T]
	parse     func(map[string]string) (T, error)
}

func NewResolver[T any](
	logger *zap.Logger,
	env string,
	namespace string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[T],
	parse func(map[string]string) (T, error),
) *Resolver[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver[T]{
		logger:    logger,
		env:       env,
		namespace: namespace,
		provider:  provider,
		cache:     cache,
		parse:     parse,
	}
}

// SecretName builds the secrets manager key for service.
func (r *Resolver[T]) SecretName(service string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, r.namespace, service))
}

// Resolve returns the cached value for service or fetches and parses it.
func (r *Resolver[T]) Resolve(ctx context.Context, service string) (T, error) {
	name := r.SecretName(service)
	v, hit, err := r.cache.GetOrLoad(strings.ToLower(service), func() (T, error) {
		var zero T
		raw, err := r.provider.GetSecret(ctx, name)
		if err != nil {
			r.logger.Warn("secrets.fetch_failed",
				zap.String("key", name),
				zap.Error(err))
			return zero, fmt.Errorf("resolve %s credentials: %w", service, err)
		}
		v, err := r.parse(raw)
		if err != nil {
			return zero, fmt.Errorf("parse secret %q: %w", name, err)
		}
		return v, nil
	})
	if err == nil && !hit {
		r.logger.Info("secrets.resolved", zap.String("service", service))
	}
	return v, err
}

// Invalidate drops the cached value for service so the next Resolve refetches.
func (r *Resolver[T]) Invalidate(service string) {
	r.cache.Bust(strings.ToLower(service))
}

// ParseAPIKey extracts the "api_key" field.
func ParseAPIKey(raw map[string]string) (string, error) {
	key := strings.TrimSpace(raw["api_key"])
	if key == "" {
		return "", &errs.ValidationError{Field: "api_key", Reason: "missing from secret"}
	}
	return key, nil
}

// APIKey returns override when set, otherwise the key resolved for service.
// A nil resolver with no override yields an empty key.
func APIKey(ctx context.Context, r *Resolver[string], service, override string) (string, error) {
	if override != "" || r == nil {
		return override, nil
	}
	return r.Resolve(ctx, service)
}
