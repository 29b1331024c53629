package authorizer

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/astro-web3/recipebox/internal/app/authz"
	authzdomain "github.com/astro-web3/recipebox/internal/domain/authz"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const PlatformInvocationPath = "/2015-03-31/functions/authorizer/invocations"

type Handler struct {
	appService authz.Service
}

func NewHandler(appService authz.Service) *Handler {
	return &Handler{
		appService: appService,
	}
}

// Register mounts POST /authorize, and the platform event endpoint when
// platformInvocations is set.
func (h *Handler) Register(r gin.IRouter, platformInvocations bool) {
	r.POST("/authorize", h.Authorize)
	if platformInvocations {
		r.POST(PlatformInvocationPath, h.Invoke)
	}
}

func (h *Handler) Authorize(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.authorizer.Authorize")
	defer span.End()

	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	raw := req.AuthorizationToken
	if raw == "" {
		raw = headerValue(req.Headers, "Authorization")
	}

	decision := h.appService.Authorize(ctx, raw, req.HTTPMethod, req.MethodArn)
	span.SetAttributes(attribute.String("authz.effect", string(decision.Effect)))

	c.JSON(http.StatusOK, toResponse(decision))
}

// Invoke answers a platform custom authorizer event. A token in the event
// headers takes precedence over authorizationToken.
func (h *Handler) Invoke(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.authorizer.Invoke")
	defer span.End()

	var ev TokenEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	raw := headerValue(ev.Headers, "Authorization")
	if raw == "" {
		raw = ev.AuthorizationToken
	}

	logger.DebugContext(ctx, "platform authorizer event",
		slog.String("type", ev.Type),
		slog.String("method_arn", ev.MethodArn),
	)

	decision := h.appService.Authorize(ctx, raw, ev.HTTPMethod, ev.MethodArn)
	span.SetAttributes(attribute.String("authz.effect", string(decision.Effect)))

	c.JSON(http.StatusOK, toPlatformResponse(decision))
}

func toResponse(d authzdomain.Decision) AuthorizeResponse {
	policy := d.Policy()
	statements := make([]Statement, 0, len(policy.Statement))
	for _, s := range policy.Statement {
		statements = append(statements, Statement{
			Effect:   string(s.Effect),
			Action:   s.Action,
			Resource: s.Resource,
		})
	}

	return AuthorizeResponse{
		PrincipalID: d.PrincipalID,
		PolicyDocument: PolicyDocument{
			Version:   policy.Version,
			Statement: statements,
		},
		Context: contextOf(d),
	}
}

func toPlatformResponse(d authzdomain.Decision) platformResponse {
	policy := d.Policy()
	statements := make([]platformStatement, 0, len(policy.Statement))
	for _, s := range policy.Statement {
		statements = append(statements, platformStatement{
			Action:   s.Action,
			Effect:   string(s.Effect),
			Resource: s.Resource,
		})
	}

	return platformResponse{
		PrincipalID: d.PrincipalID,
		PolicyDocument: platformPolicy{
			Version:   policy.Version,
			Statement: statements,
		},
		Context: contextOf(d),
	}
}

func contextOf(d authzdomain.Decision) map[string]string {
	if d.Context == nil {
		return map[string]string{}
	}
	return d.Context
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
