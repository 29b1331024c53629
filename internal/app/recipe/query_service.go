package recipe

import (
	"context"

	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type QueryService struct {
	domainService recipedomain.Service
}

func NewQueryService(domainService recipedomain.Service) *QueryService {
	return &QueryService{
		domainService: domainService,
	}
}

func (s *QueryService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*recipedomain.Recipe, error) {
	ctx, span := tracer.Start(ctx, "app.recipe.GetRecipe")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.id", id.String()),
	)

	r, err := s.domainService.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return r, nil
}

func (s *QueryService) ListRecipes(ctx context.Context, userID uuid.UUID, q recipedomain.ListQuery) (*recipedomain.Page, error) {
	ctx, span := tracer.Start(ctx, "app.recipe.ListRecipes")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.category", q.Category),
		attribute.Int("recipe.page", q.Page),
	)

	page, err := s.domainService.List(ctx, userID, q)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("recipe.count", len(page.Recipes)),
		attribute.Int("recipe.total", page.Total),
	)
	return page, nil
}
