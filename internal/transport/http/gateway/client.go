package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astro-web3/recipebox/internal/transport/http/authorizer"
	pkghttp "github.com/astro-web3/recipebox/pkg/http"
)

// ErrUpstreamUnavailable covers timeouts, connection failures, non-2xx
// statuses and undecodable bodies from the authorizer.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

type AuthorizerClient interface {
	Authorize(ctx context.Context, req authorizer.AuthorizeRequest) (*authorizer.AuthorizeResponse, error)
}

type authorizerClient struct {
	client *pkghttp.Client
	url    string
}

// NewAuthorizerClient calls baseURL/authorize once per request, bounded by timeout.
func NewAuthorizerClient(baseURL string, timeout time.Duration) AuthorizerClient {
	return &authorizerClient{
		client: pkghttp.NewClient(
			pkghttp.WithTimeout(timeout),
			pkghttp.WithRetryCount(0),
		),
		url: strings.TrimSuffix(baseURL, "/") + "/authorize",
	}
}

func (c *authorizerClient) Authorize(ctx context.Context, req authorizer.AuthorizeRequest) (*authorizer.AuthorizeResponse, error) {
	var out authorizer.AuthorizeResponse

	resp, err := c.client.Post(ctx, c.url,
		pkghttp.WithBody(req),
		pkghttp.WithResult(&out),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: authorizer returned %d", ErrUpstreamUnavailable, resp.StatusCode())
	}
	if len(out.PolicyDocument.Statement) == 0 {
		return nil, fmt.Errorf("%w: authorizer response has no policy", ErrUpstreamUnavailable)
	}

	return &out, nil
}

// allowed reports whether every statement allows the call.
func allowed(resp *authorizer.AuthorizeResponse) bool {
	if len(resp.PolicyDocument.Statement) == 0 {
		return false
	}
	for _, s := range resp.PolicyDocument.Statement {
		if !strings.EqualFold(s.Effect, "Allow") {
			return false
		}
	}
	return true
}
