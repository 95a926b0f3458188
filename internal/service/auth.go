package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/newscraft/capi-ingest/internal/domain"
)

var tracer = otel.Tracer("auth")

// AuthKeySource looks up the secret for an active webhook key by name.
type AuthKeySource interface {
	SecretByName(ctx context.Context, keyName string) (string, error)
}

// AuthService verifies inbound webhook keys against the stored secret. Lookups
// are cached in-process so the hot path does not hit the database per request.
type AuthService struct {
	source AuthKeySource
	cache  *cache.Cache
}

func NewAuthService(source AuthKeySource, ttl time.Duration) *AuthService {
	return &AuthService{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (s *AuthService) Verify(ctx context.Context, keyName, presented string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Verify")
	defer span.End()

	if presented == "" {
		return false, nil
	}

	secret, found := s.secretFromCache(keyName)
	if !found {
		var err error
		secret, err = s.source.SecretByName(ctx, keyName)
		if errors.Is(err, domain.ErrNotFound) {
			// An unknown or inactive key name can never match.
			span.RecordError(errors.Errorf("auth key %s not configured", keyName))
			return false, nil
		}
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthService.Verify: secret lookup failed"))
			return false, err
		}
		s.cache.Set(keyName, secret, cache.DefaultExpiration)
	}

	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1, nil
}

func (s *AuthService) secretFromCache(keyName string) (string, bool) {
	x, found := s.cache.Get(keyName)
	if !found {
		return "", false
	}
	secret, ok := x.(string)
	return secret, ok
}
