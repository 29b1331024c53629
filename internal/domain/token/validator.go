package token

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtPartsCount = 3

type Validator interface {
	Validate(ctx context.Context, raw string) (Principal, error)
}

type hs256Validator struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewHS256Validator validates tokens signed with the shared secret.
// Expiry is checked with zero leeway.
func NewHS256Validator(secret, issuer, audience string) Validator {
	return &hs256Validator{
		key:      []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

func (v *hs256Validator) Validate(_ context.Context, raw string) (Principal, error) {
	return parse(raw, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, v.parserOptions(jwt.SigningMethodHS256.Alg())...)
}

func (v *hs256Validator) parserOptions(methods ...string) []jwt.ParserOption {
	return parserOptions(v.issuer, v.audience, v.now, methods...)
}

func parserOptions(issuer, audience string, now func() time.Time, methods ...string) []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
}

func parse(raw string, keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}
	if len(strings.Split(raw, ".")) != jwtPartsCount {
		return Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, keyFunc, opts...)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	sub := claims.subject()
	if sub == "" || claims.ExpiresAt == nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:    sub,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
