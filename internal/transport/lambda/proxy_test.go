package lambda_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/internal/transport/lambda"
	"github.com/gin-gonic/gin"
)

const invokePath = "/2015-03-31/functions/recipes/invocations"

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/recipes", func(c *gin.Context) {
		ac, ok := identity.AuthorizerContextFrom(c.Request.Context())
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusCreated, gin.H{
			"userId":      ac.UserID,
			"hasContext":  ok,
			"page":        c.Query("page"),
			"body":        string(body),
			"forgedUser":  c.GetHeader(identity.HeaderUserID),
			"contentType": c.GetHeader("Content-Type"),
		})
	})
	router.POST(invokePath, lambda.Handler(router))

	return router
}

func invoke(t *testing.T, router http.Handler, ev any) lambda.ProxyResponse {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, invokePath, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d: %s", w.Code, w.Body.String())
	}
	var resp lambda.ProxyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandler_ReplaysEventWithAuthorizerContext(t *testing.T) {
	router := newEngine()

	resp := invoke(t, router, lambda.ProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/recipes",
		Headers:               map[string]string{"Content-Type": "application/json", identity.HeaderUserID: "forged"},
		QueryStringParameters: map[string]string{"page": "2"},
		RequestContext: lambda.ProxyRequestContext{
			RequestID:  "req-1",
			Authorizer: map[string]any{"userId": "8b0c6f0e-3f59-4c43-9d0a-2f6f4f3a1b2c", "email": "demo@example.com"},
		},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"title":"Soup"}`)),
		IsBase64Encoded: true,
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d: %s", resp.StatusCode, resp.Body)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode inner body: %v", err)
	}
	if body["hasContext"] != true || body["userId"] != "8b0c6f0e-3f59-4c43-9d0a-2f6f4f3a1b2c" {
		t.Errorf("authorizer context not attached: %v", body)
	}
	if body["page"] != "2" || body["body"] != `{"title":"Soup"}` {
		t.Errorf("request not replayed faithfully: %v", body)
	}
	if body["forgedUser"] != "" {
		t.Errorf("trusted header must be dropped, got %v", body["forgedUser"])
	}
	if resp.Headers["Content-Type"] == "" {
		t.Errorf("expected response headers, got %v", resp.Headers)
	}
}

func TestHandler_NoAuthorizerContext(t *testing.T) {
	router := newEngine()

	resp := invoke(t, router, lambda.ProxyRequest{HTTPMethod: http.MethodPost, Path: "recipes"})

	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode inner body: %v", err)
	}
	if body["hasContext"] != false {
		t.Errorf("expected no authorizer context, got %v", body)
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	router := newEngine()

	resp := invoke(t, router, lambda.ProxyRequest{HTTPMethod: http.MethodGet, Path: "/nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestNewRequest_InvalidBase64(t *testing.T) {
	_, err := lambda.NewRequest(context.Background(), lambda.ProxyRequest{Body: "%%%", IsBase64Encoded: true})
	if err == nil {
		t.Fatal("expected error for invalid base64 body")
	}
}
