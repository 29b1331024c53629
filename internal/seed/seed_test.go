package seed_test

import (
	"context"
	"testing"

	"github.com/astro-web3/recipebox/internal/infra/store"
	"github.com/astro-web3/recipebox/internal/infra/store/storetest"
	"github.com/astro-web3/recipebox/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := storetest.OpenSQLite(t)
	opts := seed.Options{
		Email:    "Demo@Example.com",
		Password: "DemoPassword123!",
		Name:     "Demo User",
		HashCost: bcrypt.MinCost,
	}

	seeded, err := seed.Run(ctx, db, opts)
	require.NoError(t, err)
	assert.True(t, seeded)

	user, err := store.NewUserRepository(db).GetByEmail(ctx, "demo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Demo User", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(opts.Password)))

	count, err := store.NewRecipeRepository(db).Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	seeded, err = seed.Run(ctx, db, opts)
	require.NoError(t, err)
	assert.False(t, seeded, "second run must be a no-op")
}
