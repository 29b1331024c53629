// Package identity resolves the calling user inside downstream services.
//
// A request is trusted when either the hosting platform attached an
// authorizer context to it, or the gateway forwarded X-User-Id together with
// an X-Authorizer-Context marker it signed for that same user.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderUserID            = "X-User-Id"
	HeaderUserEmail         = "X-User-Email"
	HeaderAuthorizerContext = "X-Authorizer-Context"
)

// ErrUnauthorized is returned for every identity failure; the cause is not exposed.
var ErrUnauthorized = errors.New("unauthorized")

// TrustedHeaders lists the headers only the gateway may set.
func TrustedHeaders() []string {
	return []string{HeaderUserID, HeaderUserEmail, HeaderAuthorizerContext}
}

// AuthorizerContext is the platform-native context produced by the authorizer.
type AuthorizerContext struct {
	UserID string
	Email  string
}

type authorizerContextKey struct{}

func WithAuthorizerContext(ctx context.Context, ac AuthorizerContext) context.Context {
	return context.WithValue(ctx, authorizerContextKey{}, ac)
}

func AuthorizerContextFrom(ctx context.Context) (AuthorizerContext, bool) {
	ac, ok := ctx.Value(authorizerContextKey{}).(AuthorizerContext)
	return ac, ok
}

type Resolver struct {
	verifier *ContextSigner
}

func NewResolver(verifier *ContextSigner) *Resolver {
	return &Resolver{verifier: verifier}
}

// CurrentUserID returns the authenticated user's id or ErrUnauthorized.
func (r *Resolver) CurrentUserID(req *http.Request) (uuid.UUID, error) {
	if ac, ok := AuthorizerContextFrom(req.Context()); ok {
		return parseUserID(ac.UserID)
	}

	userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
	marker := strings.TrimSpace(req.Header.Get(HeaderAuthorizerContext))
	if userID == "" || marker == "" {
		return uuid.Nil, ErrUnauthorized
	}

	if r.verifier == nil {
		return uuid.Nil, ErrUnauthorized
	}
	if err := r.verifier.Verify(marker, userID); err != nil {
		return uuid.Nil, ErrUnauthorized
	}

	return parseUserID(userID)
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}
