package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, in Input) (*Recipe, error)
	Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Recipe, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Recipe, error)
	List(ctx context.Context, userID uuid.UUID, q ListQuery) (*Page, error)
	AddFavorite(ctx context.Context, userID, id uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo    Repository
	storage ImageStorage
	now     func() time.Time
}

func NewService(repo Repository, storage ImageStorage) Service {
	return &service{
		repo:    repo,
		storage: storage,
		now:     time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, in Input) (*Recipe, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	r := &Recipe{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	apply(r, in, now)

	if strings.TrimSpace(in.Photo) != "" {
		url, err := s.storage.Upload(ctx, in.Photo, photoName())
		if err != nil {
			return nil, err
		}
		r.PhotoURL = &url
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	return r, nil
}

// Update checks ownership before validating the payload, so a non-owner
// always sees ErrForbidden.
func (s *service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (*Recipe, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(userID) {
		return nil, ErrForbidden
	}

	if err := validate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	apply(r, in, now)

	var replacedPhoto *string
	if strings.TrimSpace(in.Photo) != "" {
		url, err := s.storage.Upload(ctx, in.Photo, photoName())
		if err != nil {
			return nil, err
		}
		replacedPhoto = r.PhotoURL
		r.PhotoURL = &url
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if replacedPhoto != nil {
		s.deletePhoto(ctx, *replacedPhoto)
	}

	return s.withFavorite(ctx, userID, r)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.IsOwnedBy(userID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	if r.PhotoURL != nil {
		s.deletePhoto(ctx, *r.PhotoURL)
	}

	return nil
}

// Get returns any recipe to any authenticated user.
func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*Recipe, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withFavorite(ctx, userID, r)
}

// List returns only the caller's own recipes, newest first.
func (s *service) List(ctx context.Context, userID uuid.UUID, q ListQuery) (*Page, error) {
	page := max(DefaultPage, q.Page)
	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	limit = min(MaxLimit, max(1, limit))
	if page-1 > math.MaxInt/limit {
		return nil, &ValidationError{Message: "Page is out of range"}
	}

	recipes, total, err := s.repo.List(ctx, ListFilter{
		UserID:   userID,
		Category: strings.ToLower(strings.TrimSpace(q.Category)),
		Search:   strings.ToLower(strings.TrimSpace(q.Search)),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	favorites, err := s.repo.FavoriteIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	for _, r := range recipes {
		r.IsFavorite = favorites[r.ID]
	}

	return &Page{
		Recipes:    recipes,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *service) AddFavorite(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.AddFavorite(ctx, userID, id)
}

func (s *service) RemoveFavorite(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.RemoveFavorite(ctx, userID, id)
}

func (s *service) withFavorite(ctx context.Context, userID uuid.UUID, r *Recipe) (*Recipe, error) {
	favorites, err := s.repo.FavoriteIDs(ctx, userID, []uuid.UUID{r.ID})
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	r.IsFavorite = favorites[r.ID]
	return r, nil
}

func (s *service) deletePhoto(ctx context.Context, url string) {
	if err := s.storage.Delete(ctx, url); err != nil {
		logger.WarnContext(ctx, "failed to delete recipe photo",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

func validate(in Input) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return &ValidationError{Message: "Title is required"}
	case strings.TrimSpace(in.Category) == "":
		return &ValidationError{Message: "Category is required"}
	case len(in.Ingredients) == 0:
		return &ValidationError{Message: "At least one ingredient is required"}
	case len(in.Steps) == 0:
		return &ValidationError{Message: "At least one step is required"}
	}

	for _, ing := range in.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return &ValidationError{Message: "Ingredient name is required"}
		}
	}
	for _, st := range in.Steps {
		if strings.TrimSpace(st.InstructionText) == "" {
			return &ValidationError{Message: "Step instruction is required"}
		}
	}

	return nil
}

// apply copies the trimmed input onto r, replacing all children.
func apply(r *Recipe, in Input, now time.Time) {
	r.Title = strings.TrimSpace(in.Title)
	r.Description = strings.TrimSpace(in.Description)
	r.Category = strings.TrimSpace(in.Category)
	r.UpdatedAt = now

	r.Ingredients = make([]Ingredient, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, Ingredient{
			ID:        uuid.New(),
			RecipeID:  r.ID,
			Name:      strings.TrimSpace(ing.Name),
			Quantity:  strings.TrimSpace(ing.Quantity),
			Unit:      strings.TrimSpace(ing.Unit),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	steps := make([]StepInput, len(in.Steps))
	copy(steps, in.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })

	r.Steps = make([]Step, 0, len(steps))
	for _, st := range steps {
		r.Steps = append(r.Steps, Step{
			ID:              uuid.New(),
			RecipeID:        r.ID,
			StepNumber:      st.StepNumber,
			InstructionText: strings.TrimSpace(st.InstructionText),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
}

func photoName() string {
	return "recipe_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
