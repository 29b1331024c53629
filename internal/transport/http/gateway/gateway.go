// Package gateway routes inbound requests by path prefix, asks the authorizer
// about protected routes and proxies allowed requests downstream with the
// caller's identity attached.
package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/astro-web3/recipebox/internal/config"
	authzdomain "github.com/astro-web3/recipebox/internal/domain/authz"
	"github.com/astro-web3/recipebox/internal/identity"
	"github.com/astro-web3/recipebox/internal/transport/http/authorizer"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const headerRequestID = "X-Request-ID"

type route struct {
	config.Route
	proxy *httputil.ReverseProxy
}

type Gateway struct {
	routes     []*route
	authorizer AuthorizerClient
	signer     *identity.ContextSigner
	now        func() time.Time
}

func New(routes []config.Route, authorizerClient AuthorizerClient, signer *identity.ContextSigner) (*Gateway, error) {
	g := &Gateway{
		authorizer: authorizerClient,
		signer:     signer,
		now:        time.Now,
	}

	for _, r := range routes {
		target, err := url.Parse(r.Upstream)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("route %s: invalid upstream %q", r.Prefix, r.Upstream)
		}
		r.Prefix = strings.TrimSuffix(r.Prefix, "/")
		if r.Service == "" {
			r.Service = strings.TrimPrefix(r.Prefix, "/")
		}
		g.routes = append(g.routes, &route{Route: r, proxy: newProxy(r.Service, target)})
	}

	// Longest prefix first so /auth/profile wins over /auth.
	sort.SliceStable(g.routes, func(i, j int) bool {
		return len(g.routes[i].Prefix) > len(g.routes[j].Prefix)
	})

	return g, nil
}

func newProxy(service string, target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			otel.GetTextMapPropagator().Inject(pr.In.Context(), propagation.HeaderCarrier(pr.Out.Header))
		},
		// The gateway already answers with its own request id.
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Del(headerRequestID)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "upstream request failed",
				slog.String("service", service),
				slog.String("upstream", target.String()),
				slog.String("error", err.Error()),
			)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, `{"error":%q}`, service+" service unavailable")
		},
	}
}

// Register mounts the health check and sends every other request through Handle.
func (g *Gateway) Register(r *gin.Engine) {
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.GET("/health", g.Health)
	r.NoRoute(g.Handle)
}

func (g *Gateway) match(path string) *route {
	for _, r := range g.routes {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r
		}
	}
	return nil
}

func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.gateway.Handle")
	defer span.End()

	for _, h := range identity.TrustedHeaders() {
		c.Request.Header.Del(h)
	}

	rt := g.match(c.Request.URL.Path)
	if rt == nil {
		logger.WarnContext(ctx, "unmatched route",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}

	span.SetAttributes(
		attribute.String("gateway.service", rt.Service),
		attribute.Bool("gateway.public", rt.Public),
	)

	if !rt.Public {
		resp, err := g.authorizer.Authorize(ctx, authorizer.AuthorizeRequest{
			AuthorizationToken: bearerToken(c.GetHeader("Authorization")),
			MethodArn:          c.Request.Method + " " + c.Request.URL.Path,
			HTTPMethod:         c.Request.Method,
		})
		if err != nil {
			span.RecordError(err)
			logger.ErrorContext(ctx, "authorizer call failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "authorizer unavailable"})
			return
		}

		userID := resp.Context[authzdomain.ContextUserID]
		if !allowed(resp) || userID == "" {
			span.SetAttributes(attribute.Bool("gateway.allowed", false))
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		span.SetAttributes(attribute.Bool("gateway.allowed", true))

		email := resp.Context[authzdomain.ContextEmail]
		marker, err := g.signer.Sign(userID, email)
		if err != nil {
			span.RecordError(err)
			logger.ErrorContext(ctx, "failed to sign authorizer context", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Request.Header.Set(identity.HeaderUserID, userID)
		if email != "" {
			c.Request.Header.Set(identity.HeaderUserEmail, email)
		}
		c.Request.Header.Set(identity.HeaderAuthorizerContext, marker)
	}

	rt.proxy.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
}

func (g *Gateway) Health(c *gin.Context) {
	services := make(map[string]string, len(g.routes))
	for _, r := range g.routes {
		services[r.Service] = r.Upstream
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": g.now().UTC(),
		"services":  services,
	})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

