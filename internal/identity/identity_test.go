package identity_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const testKey = "context-signing-key-0123456789abcdef"

func newRequest(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestCurrentUserID_HeaderWithMarker(t *testing.T) {
	signer := identity.NewContextSigner(testKey, time.Minute)
	resolver := identity.NewResolver(signer)
	userID := uuid.New()

	marker, err := signer.Sign(userID.String(), "a@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := resolver.CurrentUserID(newRequest(map[string]string{
		identity.HeaderUserID:            userID.String(),
		identity.HeaderAuthorizerContext: marker,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("expected %s, got %s", userID, got)
	}
}

func TestCurrentUserID_Rejects(t *testing.T) {
	signer := identity.NewContextSigner(testKey, time.Minute)
	resolver := identity.NewResolver(signer)
	userID := uuid.New()
	other := uuid.New()

	markerFor := func(id string) string {
		m, err := signer.Sign(id, "")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return m
	}
	foreign, err := identity.NewContextSigner("another-signing-key-0123456789abcd", time.Minute).Sign(userID.String(), "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	expired, err := identity.NewContextSigner(testKey, -time.Minute).Sign(userID.String(), "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no headers"},
		{
			name:    "user id without marker",
			headers: map[string]string{identity.HeaderUserID: userID.String()},
		},
		{
			name: "marker for another user",
			headers: map[string]string{
				identity.HeaderUserID:            userID.String(),
				identity.HeaderAuthorizerContext: markerFor(other.String()),
			},
		},
		{
			name: "plain marker value",
			headers: map[string]string{
				identity.HeaderUserID:            userID.String(),
				identity.HeaderAuthorizerContext: "true",
			},
		},
		{
			name: "marker from foreign key",
			headers: map[string]string{
				identity.HeaderUserID:            userID.String(),
				identity.HeaderAuthorizerContext: foreign,
			},
		},
		{
			name: "expired marker",
			headers: map[string]string{
				identity.HeaderUserID:            userID.String(),
				identity.HeaderAuthorizerContext: expired,
			},
		},
		{
			name: "non uuid user id",
			headers: map[string]string{
				identity.HeaderUserID:            "not-a-uuid",
				identity.HeaderAuthorizerContext: markerFor("not-a-uuid"),
			},
		},
		{
			name: "nil uuid",
			headers: map[string]string{
				identity.HeaderUserID:            uuid.Nil.String(),
				identity.HeaderAuthorizerContext: markerFor(uuid.Nil.String()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.CurrentUserID(newRequest(tt.headers))
			if !errors.Is(err, identity.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestCurrentUserID_PlatformContextWins(t *testing.T) {
	resolver := identity.NewResolver(identity.NewContextSigner(testKey, time.Minute))
	userID := uuid.New()

	req := newRequest(map[string]string{identity.HeaderUserID: uuid.NewString()})
	req = req.WithContext(identity.WithAuthorizerContext(req.Context(), identity.AuthorizerContext{UserID: userID.String()}))

	got, err := resolver.CurrentUserID(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("expected platform user %s, got %s", userID, got)
	}
}

func TestCurrentUserID_PlatformContextInvalidID(t *testing.T) {
	resolver := identity.NewResolver(nil)

	req := newRequest(nil)
	req = req.WithContext(identity.WithAuthorizerContext(req.Context(), identity.AuthorizerContext{UserID: "bogus"}))

	if _, err := resolver.CurrentUserID(req); !errors.Is(err, identity.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)

	signer := identity.NewContextSigner(testKey, time.Minute)
	resolver := identity.NewResolver(signer)
	userID := uuid.New()

	router := gin.New()
	router.GET("/me", resolver.Require(), func(c *gin.Context) {
		c.String(http.StatusOK, identity.UserID(c).String())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	marker, err := signer.Sign(userID.String(), "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(identity.HeaderUserID, userID.String())
	req.Header.Set(identity.HeaderAuthorizerContext, marker)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != userID.String() {
		t.Errorf("expected %s, got %s", userID, w.Body.String())
	}
}
