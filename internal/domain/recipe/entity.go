package recipe

import (
	"time"

	"github.com/google/uuid"
)

type Ingredient struct {
	ID        uuid.UUID
	RecipeID  uuid.UUID
	Name      string
	Quantity  string
	Unit      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Step struct {
	ID              uuid.UUID
	RecipeID        uuid.UUID
	StepNumber      int
	InstructionText string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Recipe struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    string
	PhotoURL    *string
	UserID      uuid.UUID
	Ingredients []Ingredient
	Steps       []Step
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// IsFavorite is computed for the requesting user and never stored.
	IsFavorite bool
}

func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
