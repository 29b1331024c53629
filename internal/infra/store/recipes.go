package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/google/uuid"
)

const recipeColumns = `id, title, description, category, photo_url, user_id, created_at, updated_at`

type RecipeRepository struct {
	db *DB
}

func NewRecipeRepository(db *DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

var _ recipe.Repository = (*RecipeRepository)(nil)

func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.rebind(`
			INSERT INTO recipes (`+recipeColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.ID, rec.Title, rec.Description, rec.Category, nullString(rec.PhotoURL),
			rec.UserID, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return r.insertChildren(ctx, tx, rec)
	})
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.db.rebind(`
			UPDATE recipes
			SET title = ?, description = ?, category = ?, photo_url = ?, updated_at = ?
			WHERE id = ?`),
			rec.Title, rec.Description, rec.Category, nullString(rec.PhotoURL), rec.UpdatedAt, rec.ID,
		)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return recipe.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, r.db.rebind(`DELETE FROM ingredients WHERE recipe_id = ?`), rec.ID); err != nil {
			return fmt.Errorf("delete ingredients: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.db.rebind(`DELETE FROM steps WHERE recipe_id = ?`), rec.ID); err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		return r.insertChildren(ctx, tx, rec)
	})
}

func (r *RecipeRepository) insertChildren(ctx context.Context, tx *sql.Tx, rec *recipe.Recipe) error {
	for i, ing := range rec.Ingredients {
		_, err := tx.ExecContext(ctx, r.db.rebind(`
			INSERT INTO ingredients (id, recipe_id, position, name, quantity, unit, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			ing.ID, rec.ID, i, ing.Name, ing.Quantity, ing.Unit, ing.CreatedAt, ing.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}

	for _, st := range rec.Steps {
		_, err := tx.ExecContext(ctx, r.db.rebind(`
			INSERT INTO steps (id, recipe_id, step_number, instruction_text, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			st.ID, rec.ID, st.StepNumber, st.InstructionText, st.CreatedAt, st.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	return nil
}

// Delete removes the recipe; children and favorites go with it through
// ON DELETE CASCADE.
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`DELETE FROM recipes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return recipe.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`), id)

	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recipe.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	if err := r.loadChildren(ctx, []*recipe.Recipe{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecipeRepository) List(ctx context.Context, f recipe.ListFilter) ([]*recipe.Recipe, int, error) {
	where := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Category != "" {
		where = append(where, "LOWER(category) = ?")
		args = append(args, strings.ToLower(f.Category))
	}
	if f.Search != "" {
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT COUNT(*) FROM recipes WHERE `+clause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT `+recipeColumns+` FROM recipes
		WHERE `+clause+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`), append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*recipe.Recipe, 0, f.Limit)
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate recipes: %w", err)
	}

	if err := r.loadChildren(ctx, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RecipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO user_recipe_favorites (id, user_id, recipe_id, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, recipe_id) DO NOTHING`),
		uuid.New(), userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *RecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		DELETE FROM user_recipe_favorites WHERE user_id = ? AND recipe_id = ?`),
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (r *RecipeRepository) FavoriteIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(recipeIDs)+1)
	args = append(args, userID)
	for _, id := range recipeIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT recipe_id FROM user_recipe_favorites
		WHERE user_id = ? AND recipe_id IN (`+placeholders(len(recipeIDs))+`)`), args...)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// Count returns the number of recipes owned by userID.
func (r *RecipeRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT COUNT(*) FROM recipes WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

func (r *RecipeRepository) loadChildren(ctx context.Context, recipes []*recipe.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*recipe.Recipe, len(recipes))
	args := make([]any, 0, len(recipes))
	for _, rec := range recipes {
		rec.Ingredients = []recipe.Ingredient{}
		rec.Steps = []recipe.Step{}
		byID[rec.ID] = rec
		args = append(args, rec.ID)
	}
	in := placeholders(len(recipes))

	ingRows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, recipe_id, name, quantity, unit, created_at, updated_at
		FROM ingredients WHERE recipe_id IN (`+in+`)
		ORDER BY recipe_id, position`), args...)
	if err != nil {
		return fmt.Errorf("query ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var ing recipe.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &ing.Unit, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return fmt.Errorf("scan ingredient: %w", err)
		}
		if rec := byID[ing.RecipeID]; rec != nil {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}
	if err := ingRows.Err(); err != nil {
		return fmt.Errorf("iterate ingredients: %w", err)
	}

	stepRows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, recipe_id, step_number, instruction_text, created_at, updated_at
		FROM steps WHERE recipe_id IN (`+in+`)
		ORDER BY recipe_id, step_number`), args...)
	if err != nil {
		return fmt.Errorf("query steps: %w", err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var st recipe.Step
		if err := stepRows.Scan(&st.ID, &st.RecipeID, &st.StepNumber, &st.InstructionText, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		if rec := byID[st.RecipeID]; rec != nil {
			rec.Steps = append(rec.Steps, st)
		}
	}
	return stepRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*recipe.Recipe, error) {
	var (
		rec      recipe.Recipe
		photoURL sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Category, &photoURL, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if photoURL.Valid {
		rec.PhotoURL = &photoURL.String
	}
	return &rec, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
