package token

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
)

var jwksMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "PS256"}

type jwksValidator struct {
	jwks     keyfunc.Keyfunc
	issuer   string
	audience string
	now      func() time.Time
}

// NewJWKSValidator validates tokens issued by an external identity provider,
// resolving verification keys from its JWKS endpoint.
func NewJWKSValidator(ctx context.Context, jwksURL, issuer, audience string) (Validator, error) {
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks from %s: %w", jwksURL, err)
	}
	return newJWKSValidator(kf, issuer, audience), nil
}

func newJWKSValidator(kf keyfunc.Keyfunc, issuer, audience string) *jwksValidator {
	return &jwksValidator{
		jwks:     kf,
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

func (v *jwksValidator) Validate(_ context.Context, raw string) (Principal, error) {
	return parse(raw, v.jwks.Keyfunc, parserOptions(v.issuer, v.audience, v.now, jwksMethods...)...)
}
