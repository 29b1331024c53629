package authz

import (
	"context"

	"github.com/astro-web3/recipebox/internal/domain/authz"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	Authorize(ctx context.Context, rawToken, httpMethod, resource string) authz.Decision
}

type service struct {
	domainService authz.Service
}

func NewService(domainService authz.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) Authorize(ctx context.Context, rawToken, httpMethod, resource string) authz.Decision {
	ctx, span := tracer.Start(ctx, "app.authz.Authorize")
	defer span.End()

	span.SetAttributes(
		attribute.String("authz.method", httpMethod),
		attribute.String("authz.resource", resource),
		attribute.Bool("authz.token_present", rawToken != ""),
	)

	decision := s.domainService.Authorize(ctx, rawToken, httpMethod, resource)

	span.SetAttributes(attribute.String("authz.effect", string(decision.Effect)))
	if decision.Allowed() {
		span.SetAttributes(attribute.String("authz.principal_id", decision.PrincipalID))
	}

	return decision
}
