package authorizer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authzapp "github.com/astro-web3/recipebox/internal/app/authz"
	authzdomain "github.com/astro-web3/recipebox/internal/domain/authz"
	"github.com/astro-web3/recipebox/internal/domain/token"
	"github.com/astro-web3/recipebox/internal/transport/http/authorizer"
	"github.com/gin-gonic/gin"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "RecipeApp"
	testAudience = "RecipeAppUsers"
	testUserID   = "8b0c6f0e-3f59-4c43-9d0a-2f6f4f3a1b2c"
)

type mockAppService struct {
	authorizeFunc func(ctx context.Context, rawToken, httpMethod, resource string) authzdomain.Decision
}

func (m *mockAppService) Authorize(ctx context.Context, rawToken, httpMethod, resource string) authzdomain.Decision {
	return m.authorizeFunc(ctx, rawToken, httpMethod, resource)
}

func newRouter(svc authzapp.Service, platform bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authorizer.NewHandler(svc).Register(router, platform)
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func realService(t *testing.T) (authzapp.Service, string) {
	t.Helper()
	issuer := token.NewIssuer(testSecret, testIssuer, testAudience, time.Hour)
	access, err := issuer.Issue(testUserID, "demo@example.com", "Demo")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	validator := token.NewHS256Validator(testSecret, testIssuer, testAudience)
	return authzapp.NewService(authzdomain.NewService(validator)), access.Token
}

func TestHandler_Authorize_Allow(t *testing.T) {
	svc, raw := realService(t)
	router := newRouter(svc, false)

	w := postJSON(t, router, "/authorize", authorizer.AuthorizeRequest{
		AuthorizationToken: "Bearer " + raw,
		MethodArn:          "GET /recipes",
		HTTPMethod:         http.MethodGet,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp authorizer.AuthorizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PrincipalID != testUserID {
		t.Errorf("expected principal %s, got %s", testUserID, resp.PrincipalID)
	}
	if len(resp.PolicyDocument.Statement) != 1 || resp.PolicyDocument.Statement[0].Effect != "Allow" {
		t.Fatalf("unexpected policy: %+v", resp.PolicyDocument)
	}
	if resp.PolicyDocument.Statement[0].Resource[0] != "GET /recipes" {
		t.Errorf("unexpected resource: %v", resp.PolicyDocument.Statement[0].Resource)
	}
	if resp.Context["userId"] != testUserID || resp.Context["email"] != "demo@example.com" {
		t.Errorf("unexpected context: %v", resp.Context)
	}
}

func TestHandler_Authorize_EmptyTokenDenies(t *testing.T) {
	svc, _ := realService(t)
	router := newRouter(svc, false)

	w := postJSON(t, router, "/authorize", authorizer.AuthorizeRequest{MethodArn: "GET /recipes"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp authorizer.AuthorizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PrincipalID != "anonymous" || resp.PolicyDocument.Statement[0].Effect != "Deny" {
		t.Errorf("expected anonymous deny, got %+v", resp)
	}
	if len(resp.Context) != 0 {
		t.Errorf("expected empty context, got %v", resp.Context)
	}
}

func TestHandler_Authorize_FallsBackToAuthorizationHeader(t *testing.T) {
	var gotToken string
	svc := &mockAppService{authorizeFunc: func(_ context.Context, raw, _, _ string) authzdomain.Decision {
		gotToken = raw
		return authzdomain.Decision{Effect: authzdomain.EffectDeny, PrincipalID: "anonymous"}
	}}
	router := newRouter(svc, false)

	postJSON(t, router, "/authorize", authorizer.AuthorizeRequest{
		Headers: map[string]string{"authorization": "Bearer from-header"},
	})
	if gotToken != "Bearer from-header" {
		t.Errorf("expected header token, got %q", gotToken)
	}
}

func TestHandler_Authorize_InvalidBody(t *testing.T) {
	svc := &mockAppService{authorizeFunc: func(context.Context, string, string, string) authzdomain.Decision {
		t.Fatal("service must not be called")
		return authzdomain.Decision{}
	}}
	router := newRouter(svc, false)

	req := httptest.NewRequest(http.MethodPost, "/authorize", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_Invoke_PlatformShape(t *testing.T) {
	var gotToken string
	svc := &mockAppService{authorizeFunc: func(_ context.Context, raw, _, resource string) authzdomain.Decision {
		gotToken = raw
		return authzdomain.Decision{
			Effect:      authzdomain.EffectAllow,
			PrincipalID: testUserID,
			Resource:    resource,
			Context:     map[string]string{"userId": testUserID},
		}
	}}
	router := newRouter(svc, true)

	w := postJSON(t, router, authorizer.PlatformInvocationPath, authorizer.TokenEvent{
		Type:               "TOKEN",
		AuthorizationToken: "Bearer from-event",
		MethodArn:          "arn:aws:execute-api:us-east-1:123:api/prod/GET/recipes",
		Headers:            map[string]string{"Authorization": "Bearer from-header"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotToken != "Bearer from-header" {
		t.Errorf("expected header token to win, got %q", gotToken)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	policy, ok := resp["policyDocument"].(map[string]any)
	if !ok || policy["Version"] != "2012-10-17" {
		t.Fatalf("expected platform-cased policy document, got %v", resp["policyDocument"])
	}
	statements, ok := policy["Statement"].([]any)
	if !ok || len(statements) != 1 {
		t.Fatalf("unexpected statements: %v", policy["Statement"])
	}
	if stmt := statements[0].(map[string]any); stmt["Effect"] != "Allow" {
		t.Errorf("unexpected statement: %v", stmt)
	}
}

func TestHandler_Invoke_DisabledByDefault(t *testing.T) {
	svc := &mockAppService{authorizeFunc: func(context.Context, string, string, string) authzdomain.Decision {
		return authzdomain.Decision{}
	}}
	router := newRouter(svc, false)

	w := postJSON(t, router, authorizer.PlatformInvocationPath, authorizer.TokenEvent{})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 when platform invocations are disabled, got %d", w.Code)
	}
}
