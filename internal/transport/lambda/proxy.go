// Package lambda adapts API Gateway proxy events, delivered to a service's
// invocation endpoint, onto the service's ordinary HTTP handler.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type ProxyRequestContext struct {
	RequestID  string         `json:"requestId"`
	Authorizer map[string]any `json:"authorizer"`
}

type ProxyRequest struct {
	HTTPMethod                      string              `json:"httpMethod"`
	Path                            string              `json:"path"`
	Headers                         map[string]string   `json:"headers"`
	MultiValueHeaders               map[string][]string `json:"multiValueHeaders"`
	QueryStringParameters           map[string]string   `json:"queryStringParameters"`
	MultiValueQueryStringParameters map[string][]string `json:"multiValueQueryStringParameters"`
	RequestContext                  ProxyRequestContext `json:"requestContext"`
	Body                            string              `json:"body"`
	IsBase64Encoded                 bool                `json:"isBase64Encoded"`
}

type ProxyResponse struct {
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders,omitempty"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

// Handler decodes a proxy event, replays it against next and answers with a
// proxy response. The event's authorizer context is attached to the replayed
// request so identity resolution uses it instead of headers.
func Handler(next http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "transport.lambda.Invoke")
		defer span.End()

		var ev ProxyRequest
		if err := c.ShouldBindJSON(&ev); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
			return
		}

		req, err := NewRequest(ctx, ev)
		if err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
			return
		}

		span.SetAttributes(
			attribute.String("lambda.method", req.Method),
			attribute.String("lambda.path", req.URL.Path),
		)

		rec := newRecorder()
		next.ServeHTTP(rec, req)

		c.JSON(http.StatusOK, rec.response())
	}
}

// NewRequest builds the HTTP request described by ev.
func NewRequest(ctx context.Context, ev ProxyRequest) (*http.Request, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	method := ev.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	path := ev.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := &url.URL{Path: path, RawQuery: query(ev).Encode()}

	if ev.RequestContext.RequestID != "" {
		ctx = logger.WithRequestID(ctx, ev.RequestContext.RequestID)
	}
	if ac, ok := authorizerContext(ev.RequestContext.Authorizer); ok {
		ctx = identity.WithAuthorizerContext(ctx, ac)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range ev.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range ev.Headers {
		if _, ok := ev.MultiValueHeaders[k]; !ok {
			req.Header.Set(k, v)
		}
	}
	// Identity comes from the authorizer context only.
	for _, h := range identity.TrustedHeaders() {
		req.Header.Del(h)
	}

	return req, nil
}

func query(ev ProxyRequest) url.Values {
	q := url.Values{}
	for k, vs := range ev.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range ev.QueryStringParameters {
		if _, ok := ev.MultiValueQueryStringParameters[k]; !ok {
			q.Set(k, v)
		}
	}
	return q
}

func authorizerContext(raw map[string]any) (identity.AuthorizerContext, bool) {
	userID, _ := raw["userId"].(string)
	if userID == "" {
		return identity.AuthorizerContext{}, false
	}
	email, _ := raw["email"].(string)
	return identity.AuthorizerContext{UserID: userID, Email: email}, true
}

// recorder is the minimal http.ResponseWriter needed to capture a replayed response.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *recorder) response() ProxyResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	resp := ProxyResponse{
		StatusCode: status,
		Headers:    make(map[string]string, len(r.header)),
	}
	for k, vs := range r.header {
		if len(vs) == 1 {
			resp.Headers[k] = vs[0]
			continue
		}
		if resp.MultiValueHeaders == nil {
			resp.MultiValueHeaders = make(map[string][]string)
		}
		resp.MultiValueHeaders[k] = vs
	}

	if utf8.Valid(r.body.Bytes()) {
		resp.Body = r.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(r.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}
