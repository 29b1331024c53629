// Package seed fills an empty database with a demo account and sample recipes.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	accountdomain "github.com/astro-web3/recipebox/internal/domain/account"
	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/astro-web3/recipebox/internal/infra/storage"
	"github.com/astro-web3/recipebox/internal/infra/store"
	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Email    string
	Password string
	Name     string
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// Run creates the demo user and its recipes unless any user already exists.
// It reports whether anything was written.
func Run(ctx context.Context, db *store.DB, opts Options) (bool, error) {
	users := store.NewUserRepository(db)

	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		logger.InfoContext(ctx, "database already seeded", slog.Int("users", n))
		return false, nil
	}

	email, err := accountdomain.NormalizeEmail(opts.Email)
	if err != nil {
		return false, fmt.Errorf("seed email: %w", err)
	}

	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), cost)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	user := &accountdomain.User{
		ID:              uuid.New(),
		Name:            opts.Name,
		Email:           email,
		PasswordHash:    string(hash),
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create seed user: %w", err)
	}

	recipes := recipedomain.NewService(store.NewRecipeRepository(db), storage.LogStorage{})
	for _, in := range sampleRecipes() {
		if _, err := recipes.Create(ctx, user.ID, in); err != nil {
			return false, fmt.Errorf("create seed recipe %q: %w", in.Title, err)
		}
	}

	logger.InfoContext(ctx, "database seeded",
		slog.String("email", email),
		slog.Int("recipes", len(sampleRecipes())),
	)
	return true, nil
}

func sampleRecipes() []recipedomain.Input {
	return []recipedomain.Input{
		{
			Title:       "Classic Pancakes",
			Description: "Fluffy pancakes for a weekend breakfast.",
			Category:    "Breakfast",
			Ingredients: []recipedomain.IngredientInput{
				{Name: "Flour", Quantity: "200", Unit: "g"},
				{Name: "Milk", Quantity: "300", Unit: "ml"},
				{Name: "Egg", Quantity: "2", Unit: "pcs"},
			},
			Steps: []recipedomain.StepInput{
				{StepNumber: 1, InstructionText: "Whisk flour, milk and eggs into a smooth batter."},
				{StepNumber: 2, InstructionText: "Rest the batter for 10 minutes."},
				{StepNumber: 3, InstructionText: "Cook ladlefuls on a hot buttered pan until golden."},
			},
		},
		{
			Title:       "Tomato Basil Soup",
			Description: "A quick soup from pantry staples.",
			Category:    "Lunch",
			Ingredients: []recipedomain.IngredientInput{
				{Name: "Canned tomatoes", Quantity: "800", Unit: "g"},
				{Name: "Onion", Quantity: "1", Unit: "pcs"},
				{Name: "Basil", Quantity: "1", Unit: "handful"},
			},
			Steps: []recipedomain.StepInput{
				{StepNumber: 1, InstructionText: "Soften the chopped onion in olive oil."},
				{StepNumber: 2, InstructionText: "Add tomatoes and simmer for 20 minutes."},
				{StepNumber: 3, InstructionText: "Blend with basil and season to taste."},
			},
		},
		{
			Title:       "Garlic Butter Pasta",
			Description: "Weeknight pasta in fifteen minutes.",
			Category:    "Dinner",
			Ingredients: []recipedomain.IngredientInput{
				{Name: "Spaghetti", Quantity: "250", Unit: "g"},
				{Name: "Butter", Quantity: "50", Unit: "g"},
				{Name: "Garlic", Quantity: "4", Unit: "cloves"},
			},
			Steps: []recipedomain.StepInput{
				{StepNumber: 1, InstructionText: "Boil the spaghetti in salted water."},
				{StepNumber: 2, InstructionText: "Melt butter and gently fry sliced garlic."},
				{StepNumber: 3, InstructionText: "Toss the drained pasta in the garlic butter."},
			},
		},
	}
}
