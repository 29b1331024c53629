package http

import (
	"context"
	"net/http"
	"time"

	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 60 * time.Second
	DefaultRetry   = 2
)

// Client is a JSON HTTP client that propagates trace context on every request.
type Client struct {
	resty *resty.Client
}

type ClientOption func(*resty.Client)

// WithTimeout bounds each attempt, including connection setup.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithRetryCount sets the number of retries after the first attempt; 0 means a
// single attempt.
func WithRetryCount(n int) ClientOption {
	return func(c *resty.Client) {
		c.SetRetryCount(n)
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *resty.Client) {
		c.SetBaseURL(url)
	}
}

func NewClient(opts ...ClientOption) *Client {
	rc := resty.New().
		SetTimeout(DefaultTimeout).
		SetRetryCount(DefaultRetry).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{resty: rc}
}

type RequestOption func(*resty.Request)

func WithAuthToken(token string) RequestOption {
	return func(r *resty.Request) {
		if token != "" {
			r.SetAuthToken(token)
		}
	}
}

func WithBody(body any) RequestOption {
	return func(r *resty.Request) {
		r.SetBody(body)
	}
}

// WithResult decodes 2xx bodies into result.
func WithResult(result any) RequestOption {
	return func(r *resty.Request) {
		if result != nil {
			r.SetResult(result)
		}
	}
}

// WithError decodes non-2xx bodies into errResult.
func WithError(errResult any) RequestOption {
	return func(r *resty.Request) {
		if errResult != nil {
			r.SetError(errResult)
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeader(key, value)
	}
}

func WithQueryParam(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetQueryParam(key, value)
	}
}

func (c *Client) Request(ctx context.Context, method, url string, opts ...RequestOption) (*resty.Response, error) {
	ctx, span := startClientSpan(ctx, "http.Request", method, url)
	defer span.End()

	request := c.resty.R().SetContext(ctx)

	for _, opt := range opts {
		opt(request)
	}

	injectTracingHeaders(ctx, request)

	resp, err := request.Execute(method, url)

	recordSpan(span, resp, err)
	return resp, err
}

func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodGet, url, opts...)
}

func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPost, url, opts...)
}

func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPut, url, opts...)
}

func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodDelete, url, opts...)
}

func startClientSpan(
	ctx context.Context,
	spanName string,
	method string,
	url string,
) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
		),
	)
}

func recordSpan(span trace.Span, resp *resty.Response, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if resp == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		return
	}
	span.SetStatus(codes.Ok, "")
}
