package authz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/astro-web3/recipebox/internal/domain/token"
	"github.com/astro-web3/recipebox/internal/infra/cache"
	"github.com/astro-web3/recipebox/pkg/logger"
)

type Service interface {
	// Authorize never fails: anything other than a valid token yields Deny.
	Authorize(ctx context.Context, rawToken, httpMethod, resource string) Decision
}

type service struct {
	validator token.Validator
	cache     cache.PrincipalCache
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewService(validator token.Validator) Service {
	return &service{
		validator: validator,
		now:       time.Now,
	}
}

// NewServiceWithCache remembers validated principals for up to cacheTTL, never
// past the token's own expiry.
func NewServiceWithCache(validator token.Validator, principalCache cache.PrincipalCache, cacheTTL time.Duration) Service {
	return &service{
		validator: validator,
		cache:     principalCache,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

func (s *service) Authorize(ctx context.Context, rawToken, httpMethod, resource string) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "authorizer panicked, denying",
				slog.String("panic", fmt.Sprint(r)),
				slog.String("method", httpMethod),
			)
			decision = deny(resource)
		}
	}()

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rawToken), "Bearer "))
	if raw == "" {
		logger.DebugContext(ctx, "no token supplied", slog.String("method", httpMethod))
		return deny(resource)
	}

	tokenHash := hashToken(raw)
	if p := s.cached(ctx, tokenHash); p != nil {
		return allow(p.UserID, p.Email, resource)
	}

	principal, err := s.validator.Validate(ctx, raw)
	if err != nil {
		if !errors.Is(err, token.ErrInvalidToken) {
			logger.ErrorContext(ctx, "validator failed unexpectedly, denying", slog.String("error", err.Error()))
		} else {
			logger.DebugContext(ctx, "token rejected", slog.String("method", httpMethod))
		}
		return deny(resource)
	}

	s.remember(ctx, tokenHash, principal)

	return allow(principal.UserID, principal.Email, resource)
}

func (s *service) cached(ctx context.Context, tokenHash string) *cache.CachedPrincipal {
	if s.cache == nil {
		return nil
	}

	p, err := s.cache.Get(ctx, tokenHash)
	if err != nil {
		logger.WarnContext(ctx, "failed to get from cache, will validate token", slog.String("error", err.Error()))
		return nil
	}
	if p == nil || p.UserID == "" || !s.now().Before(p.ExpiresAt) {
		return nil
	}

	return p
}

func (s *service) remember(ctx context.Context, tokenHash string, p token.Principal) {
	if s.cache == nil {
		return
	}

	ttl := s.cacheTTL
	if remaining := p.ExpiresAt.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	entry := &cache.CachedPrincipal{UserID: p.UserID, Email: p.Email, ExpiresAt: p.ExpiresAt}
	if err := s.cache.Set(ctx, tokenHash, entry, ttl); err != nil {
		logger.WarnContext(ctx, "failed to set cache", slog.String("error", err.Error()))
	}
}

func hashToken(raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}
