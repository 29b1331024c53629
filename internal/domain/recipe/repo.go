package recipe

import (
	"context"

	"github.com/google/uuid"
)

// Repository returns ErrNotFound when a recipe does not exist.
type Repository interface {
	Create(ctx context.Context, r *Recipe) error
	// Update rewrites the recipe row and replaces its ingredients and steps.
	Update(ctx context.Context, r *Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	List(ctx context.Context, filter ListFilter) ([]*Recipe, int, error)

	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	FavoriteIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ImageStorage persists recipe photos and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, base64Data, name string) (string, error)
	Delete(ctx context.Context, url string) error
}
