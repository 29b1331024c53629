package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error a Validator returns. Callers cannot tell
// a bad signature from an expired token.
var ErrInvalidToken = errors.New("invalid token")

// Principal is the identity extracted from a validated token.
type Principal struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Claims is the payload of access tokens and context markers.
type Claims struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	NameID string `json:"nameid,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) subject() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.NameID
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}
