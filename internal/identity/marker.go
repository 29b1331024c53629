package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const markerAudience = "recipebox-downstream"

var errMarkerMismatch = errors.New("marker subject does not match user id")

type markerClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ContextSigner produces and checks X-Authorizer-Context markers: short-lived
// HS256 tokens binding a user id to a gateway decision.
type ContextSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewContextSigner(key string, ttl time.Duration) *ContextSigner {
	return &ContextSigner{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

func (s *ContextSigner) Sign(userID, email string) (string, error) {
	now := s.now()
	claims := &markerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{markerAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign authorizer context: %w", err)
	}
	return signed, nil
}

// Verify checks the marker signature, expiry and that it was issued for userID.
func (s *ContextSigner) Verify(marker, userID string) error {
	claims := &markerClaims{}
	_, err := jwt.ParseWithClaims(marker, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(markerAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("verify authorizer context: %w", err)
	}

	if claims.Subject != userID {
		return errMarkerMismatch
	}
	return nil
}
