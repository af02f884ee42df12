package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/okx"
	pkgsecrets "github.com/basketfy/dex-adapter/pkg/secrets"
)

// Secret map keys expected in the aggregator credentials secret.
const (
	keyAPIKey        = "api_key"
	keyAPISecret     = "api_secret"
	keyAPIPassphrase = "api_passphrase"
	keyProjectID     = "project_id"
)

// Resolver resolves aggregator API credentials from a secrets backend with
// an environment fallback, caching resolved values in memory.
type Resolver struct {
	logger     *zap.Logger
	provider   pkgsecrets.Provider
	cache      *pkgsecrets.Cache[okx.Credentials]
	secretName string
	envCreds   okx.Credentials
}

// NewResolver creates a credentials resolver. provider may be nil when only
// environment credentials are configured.
func NewResolver(logger *zap.Logger, provider pkgsecrets.Provider, cache *pkgsecrets.Cache[okx.Credentials], secretName string, envCreds okx.Credentials) *Resolver {
	return &Resolver{
		logger:     logger,
		provider:   provider,
		cache:      cache,
		secretName: secretName,
		envCreds:   envCreds,
	}
}

// Resolve returns a complete credential set, preferring the secrets backend
// over environment values.
func (r *Resolver) Resolve(ctx context.Context) (okx.Credentials, error) {
	if r.cache != nil && r.secretName != "" {
		if creds, ok := r.cache.Get(r.secretName); ok {
			return creds, nil
		}
	}

	if r.provider != nil && r.secretName != "" {
		values, err := r.provider.GetSecret(ctx, r.secretName)
		if err != nil {
			r.logger.Warn("secrets.backend_lookup_failed",
				zap.Error(err),
				zap.String("secret", r.secretName))
		} else {
			creds := okx.Credentials{
				APIKey:        values[keyAPIKey],
				APISecret:     values[keyAPISecret],
				APIPassphrase: values[keyAPIPassphrase],
				ProjectID:     values[keyProjectID],
			}
			if err := creds.Validate(); err != nil {
				r.logger.Warn("secrets.backend_secret_incomplete",
					zap.Error(err),
					zap.String("secret", r.secretName))
			} else {
				if r.cache != nil {
					r.cache.Put(r.secretName, creds)
				}
				return creds, nil
			}
		}
	}

	if err := r.envCreds.Validate(); err != nil {
		return okx.Credentials{}, fmt.Errorf("no usable credential source: %w", err)
	}
	return r.envCreds, nil
}
