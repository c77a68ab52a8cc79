package database_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := database.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_init.sql", migrations[0].Name)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Name, migrations[i].Name)
	}
}

func TestSQLiteConstraints(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, database.HealthCheck(ctx, db))

	user := testutil.CreateUser(t, db)
	err := db.Create(&models.Subscription{UserID: user.ID, AuthorID: user.ID}).Error
	assert.True(t, apperr.IsCheckViolation(err), "self follow: %v", err)

	recipe := testutil.CreateRecipe(t, db, user, "Tea", nil)
	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err = db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.True(t, apperr.IsUniqueViolation(err), "duplicate favorite: %v", err)
}

func TestPostgresMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := testutil.NewPostgresDB(t)
	ctx := context.Background()
	log := testutil.DiscardLogger()

	require.NoError(t, database.RunMigrations(ctx, db, log))
	// A second run only skips recorded files.
	require.NoError(t, database.RunMigrations(ctx, db, log))

	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	migrations, err := database.Migrations()
	require.NoError(t, err)
	assert.Equal(t, int64(len(migrations)), applied)

	user := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	require.NoError(t, db.Create(&models.Subscription{UserID: user.ID, AuthorID: other.ID}).Error)

	err = db.Create(&models.Subscription{UserID: user.ID, AuthorID: other.ID}).Error
	assert.True(t, apperr.IsUniqueViolation(err), "duplicate subscription: %v", err)

	err = db.Create(&models.Subscription{UserID: user.ID, AuthorID: user.ID}).Error
	assert.True(t, apperr.IsCheckViolation(err), "self follow: %v", err)

	recipe := testutil.CreateRecipe(t, db, user, "Porridge", nil)
	err = db.Model(recipe).Update("cooking_time", 0).Error
	assert.True(t, apperr.IsCheckViolation(err), "zero cooking time: %v", err)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)
	var remaining int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("author_id = ?", user.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
