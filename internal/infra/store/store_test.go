package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/astro-web3/recipebox/internal/config"
	"github.com/astro-web3/recipebox/internal/domain/account"
	"github.com/astro-web3/recipebox/internal/domain/recipe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &DB{driver: config.DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)", pg.rebind("SELECT * FROM t WHERE a = ? AND b IN (?, ?)"))

	lite := &DB{driver: config.DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	require.Error(t, err)
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(config.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))

	return db
}

func seedUser(t *testing.T, repo *UserRepository, email string) *account.User {
	t.Helper()
	now := time.Now().UTC()
	u := &account.User{
		ID:           uuid.New(),
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, repo, "alice@example.com")

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.PasswordResetToken)

	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, account.ErrUserNotFound)

	token := "reset-token"
	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	got.PasswordResetToken = &token
	got.PasswordResetExpiry = &expiry
	require.NoError(t, repo.Update(ctx, got))

	byToken, err := repo.GetByResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)
	require.NotNil(t, byToken.PasswordResetExpiry)
	assert.True(t, expiry.Equal(*byToken.PasswordResetExpiry))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	missing := &account.User{ID: uuid.New()}
	assert.ErrorIs(t, repo.Update(ctx, missing), account.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	first := seedUser(t, repo, "dup@example.com")

	now := time.Now().UTC()
	err := repo.Create(ctx, &account.User{
		ID: uuid.New(), Name: "Dup", Email: "dup@example.com", PasswordHash: "hash",
		CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, account.ErrEmailExists)

	other := seedUser(t, repo, "other@example.com")
	other.Email = first.Email
	assert.ErrorIs(t, repo.Update(ctx, other), account.ErrEmailExists)
}

func newRecipe(owner uuid.UUID, title, category string, createdAt time.Time) *recipe.Recipe {
	id := uuid.New()
	return &recipe.Recipe{
		ID:          id,
		Title:       title,
		Description: "A " + title + " recipe",
		Category:    category,
		UserID:      owner,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Ingredients: []recipe.Ingredient{
			{ID: uuid.New(), RecipeID: id, Name: "Salt", Quantity: "1", Unit: "tsp", CreatedAt: createdAt, UpdatedAt: createdAt},
			{ID: uuid.New(), RecipeID: id, Name: "Water", Quantity: "1", Unit: "l", CreatedAt: createdAt, UpdatedAt: createdAt},
		},
		Steps: []recipe.Step{
			{ID: uuid.New(), RecipeID: id, StepNumber: 1, InstructionText: "Boil", CreatedAt: createdAt, UpdatedAt: createdAt},
			{ID: uuid.New(), RecipeID: id, StepNumber: 2, InstructionText: "Season", CreatedAt: createdAt, UpdatedAt: createdAt},
		},
	}
}

func TestRecipeRepository_CRUD(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")
	rec := newRecipe(owner.ID, "Soup", "Dinner", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Title)
	assert.Equal(t, owner.ID, got.UserID)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "Salt", got.Ingredients[0].Name)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 1, got.Steps[0].StepNumber)
	assert.Nil(t, got.PhotoURL)

	photo := "https://storage.example.com/images/x.jpg"
	got.Title = "Better Soup"
	got.PhotoURL = &photo
	got.Ingredients = got.Ingredients[:1]
	got.Steps = []recipe.Step{{ID: uuid.New(), RecipeID: got.ID, StepNumber: 1, InstructionText: "Heat", CreatedAt: got.CreatedAt, UpdatedAt: got.CreatedAt}}
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", got.Title)
	require.NotNil(t, got.PhotoURL)
	assert.Equal(t, photo, *got.PhotoURL)
	assert.Len(t, got.Ingredients, 1)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "Heat", got.Steps[0].InstructionText)

	require.NoError(t, repo.AddFavorite(ctx, owner.ID, rec.ID))
	require.NoError(t, repo.Delete(ctx, rec.ID))

	_, err = repo.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, recipe.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), recipe.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, rec), recipe.ErrNotFound)
}

func TestRecipeRepository_List(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")
	other := seedUser(t, users, "other@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "Pancakes", "Breakfast", base)))
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "Omelette", "breakfast", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "Lasagna", "Dinner", base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, newRecipe(other.ID, "Waffles", "Breakfast", base.Add(3*time.Minute))))

	all, total, err := repo.List(ctx, recipe.ListFilter{UserID: owner.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "Lasagna", all[0].Title, "newest first")
	assert.Len(t, all[0].Steps, 2)

	breakfast, total, err := repo.List(ctx, recipe.ListFilter{UserID: owner.ID, Category: "breakfast", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, breakfast, 2)

	search, total, err := repo.List(ctx, recipe.ListFilter{UserID: owner.ID, Search: "omel", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, search, 1)
	assert.Equal(t, "Omelette", search[0].Title)

	page2, total, err := repo.List(ctx, recipe.ListFilter{UserID: owner.ID, Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Pancakes", page2[0].Title)
}

func TestRecipeRepository_SearchWildcardsAreLiteral(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	owner := seedUser(t, NewUserRepository(db), "owner@example.com")
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "100% Rye", "Bread", now)))
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "Plain_Loaf", "Bread", now.Add(time.Second))))
	require.NoError(t, repo.Create(ctx, newRecipe(owner.ID, "Sourdough", "Bread", now.Add(2*time.Second))))

	for search, want := range map[string]string{"%": "100% Rye", "_": "Plain_Loaf", `0% r`: "100% Rye"} {
		found, total, err := repo.List(ctx, recipe.ListFilter{UserID: owner.ID, Search: search, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, 1, total, "search %q", search)
		assert.Equal(t, want, found[0].Title)
	}
}

func TestRecipeRepository_Favorites(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")
	fan := seedUser(t, users, "fan@example.com")
	a := newRecipe(owner.ID, "A", "X", time.Now().UTC())
	b := newRecipe(owner.ID, "B", "X", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.AddFavorite(ctx, fan.ID, a.ID))
	require.NoError(t, repo.AddFavorite(ctx, fan.ID, a.ID), "adding twice is a no-op")

	favs, err := repo.FavoriteIDs(ctx, fan.ID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, favs[a.ID])
	assert.False(t, favs[b.ID])

	favs, err = repo.FavoriteIDs(ctx, owner.ID, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Empty(t, favs)

	require.NoError(t, repo.RemoveFavorite(ctx, fan.ID, a.ID))
	require.NoError(t, repo.RemoveFavorite(ctx, fan.ID, a.ID))

	favs, err = repo.FavoriteIDs(ctx, fan.ID, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Empty(t, favs)
}
