package recipe

import (
	"context"
	"log/slog"

	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/astro-web3/recipebox/pkg/tracer"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type CommandService struct {
	domainService recipedomain.Service
}

func NewCommandService(domainService recipedomain.Service) *CommandService {
	return &CommandService{
		domainService: domainService,
	}
}

func (s *CommandService) CreateRecipe(ctx context.Context, userID uuid.UUID, in recipedomain.Input) (*recipedomain.Recipe, error) {
	ctx, span := tracer.Start(ctx, "app.recipe.CreateRecipe")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.Int("recipe.ingredients", len(in.Ingredients)),
		attribute.Int("recipe.steps", len(in.Steps)),
	)

	r, err := s.domainService.Create(ctx, userID, in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("recipe.id", r.ID.String()))
	logger.InfoContext(ctx, "recipe created",
		slog.String("recipe_id", r.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return r, nil
}

func (s *CommandService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, in recipedomain.Input) (*recipedomain.Recipe, error) {
	ctx, span := tracer.Start(ctx, "app.recipe.UpdateRecipe")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.id", id.String()),
	)

	r, err := s.domainService.Update(ctx, userID, id, in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.InfoContext(ctx, "recipe updated", slog.String("recipe_id", id.String()))
	return r, nil
}

func (s *CommandService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "app.recipe.DeleteRecipe")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.id", id.String()),
	)

	if err := s.domainService.Delete(ctx, userID, id); err != nil {
		span.RecordError(err)
		return err
	}

	logger.InfoContext(ctx, "recipe deleted", slog.String("recipe_id", id.String()))
	return nil
}

func (s *CommandService) AddFavorite(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "app.recipe.AddFavorite")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.id", id.String()),
	)

	if err := s.domainService.AddFavorite(ctx, userID, id); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *CommandService) RemoveFavorite(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "app.recipe.RemoveFavorite")
	defer span.End()

	span.SetAttributes(
		attribute.String("recipe.user_id", userID.String()),
		attribute.String("recipe.id", id.String()),
	)

	if err := s.domainService.RemoveFavorite(ctx, userID, id); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
