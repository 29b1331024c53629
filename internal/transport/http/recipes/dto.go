package recipes

import (
	"time"

	recipedomain "github.com/astro-web3/recipebox/internal/domain/recipe"
)

type ingredientRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type stepRequest struct {
	StepNumber      int    `json:"stepNumber"`
	InstructionText string `json:"instructionText"`
}

type recipeRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Photo       string              `json:"photo"`
	Ingredients []ingredientRequest `json:"ingredients"`
	Steps       []stepRequest       `json:"steps"`
}

func (r recipeRequest) toInput() recipedomain.Input {
	in := recipedomain.Input{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Photo:       r.Photo,
		Ingredients: make([]recipedomain.IngredientInput, 0, len(r.Ingredients)),
		Steps:       make([]recipedomain.StepInput, 0, len(r.Steps)),
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, recipedomain.IngredientInput{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	for i, st := range r.Steps {
		n := st.StepNumber
		if n == 0 {
			n = i + 1
		}
		in.Steps = append(in.Steps, recipedomain.StepInput{
			StepNumber:      n,
			InstructionText: st.InstructionText,
		})
	}
	return in
}

type ingredientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type stepResponse struct {
	ID              string `json:"id"`
	StepNumber      int    `json:"stepNumber"`
	InstructionText string `json:"instructionText"`
}

type recipeResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Category        string               `json:"category"`
	PhotoURL        *string              `json:"photoUrl"`
	Ingredients     []ingredientResponse `json:"ingredients"`
	Steps           []stepResponse       `json:"steps"`
	IsFavorite      bool                 `json:"isFavorite"`
	CreatedByUserID string               `json:"createdByUserId"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type listResponse struct {
	Recipes    []recipeResponse   `json:"recipes"`
	Pagination paginationResponse `json:"pagination"`
}

func toRecipeResponse(r *recipedomain.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:              r.ID.String(),
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		PhotoURL:        r.PhotoURL,
		Ingredients:     make([]ingredientResponse, 0, len(r.Ingredients)),
		Steps:           make([]stepResponse, 0, len(r.Steps)),
		IsFavorite:      r.IsFavorite,
		CreatedByUserID: r.UserID.String(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, ingredientResponse{
			ID:       ing.ID.String(),
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	for _, st := range r.Steps {
		resp.Steps = append(resp.Steps, stepResponse{
			ID:              st.ID.String(),
			StepNumber:      st.StepNumber,
			InstructionText: st.InstructionText,
		})
	}
	return resp
}

func toListResponse(p *recipedomain.Page) listResponse {
	resp := listResponse{
		Recipes: make([]recipeResponse, 0, len(p.Recipes)),
		Pagination: paginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	}
	for _, r := range p.Recipes {
		resp.Recipes = append(resp.Recipes, toRecipeResponse(r))
	}
	return resp
}
