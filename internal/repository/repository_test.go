package repository

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientUniquePerUnit(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "g"}))
	require.NoError(t, repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "cup"}))

	err := repo.Create(ctx, &models.Ingredient{Name: "flour", MeasurementUnit: "g"})
	assert.True(t, apperr.IsUniqueViolation(err), err)
}

func TestIngredientPrefixSearch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Sugar", "sugar syrup", "brown sugar", "Salt", "100%_cocoa"} {
		testutil.CreateIngredient(t, db, name, "g")
	}

	found, err := repo.List(ctx, "SUG")
	require.NoError(t, err)
	names := make([]string, len(found))
	for i, ing := range found {
		names[i] = ing.Name
	}
	assert.Equal(t, []string{"Sugar", "sugar syrup"}, names)

	found, err = repo.List(ctx, "100%_")
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestIngredientPrefixSearchUnicode(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	testutil.CreateIngredient(t, db, "Мука", "г")
	testutil.CreateIngredient(t, db, "Flour", "g")

	for _, prefix := range []string{"мук", "МУК", "Му"} {
		found, err := repo.List(ctx, prefix)
		require.NoError(t, err)
		require.Len(t, found, 1, prefix)
		assert.Equal(t, "Мука", found[0].Name)
	}

	found, err := repo.List(ctx, "fl")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Flour", found[0].Name)
}

func TestDatabaseConstraints(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	tag := testutil.CreateTag(t, db, "")
	flour := testutil.CreateIngredient(t, db, "flour", "g")
	recipe := testutil.CreateRecipe(t, db, author, "Bread", []*models.Tag{tag}, testutil.Amount{Ingredient: flour, Amount: 100})

	t.Run("recipe name unique per author", func(t *testing.T) {
		err := db.Omit("Author", "Tags", "Ingredients").Create(&models.Recipe{
			Name: "Bread", AuthorID: author.ID, Image: "x", Text: "y", CookingTime: 5,
		}).Error
		assert.True(t, apperr.IsUniqueViolation(err), err)
	})

	t.Run("cooking time at least one", func(t *testing.T) {
		err := db.Omit("Author", "Tags", "Ingredients").Create(&models.Recipe{
			Name: "Raw", AuthorID: author.ID, Image: "x", Text: "y", CookingTime: 0,
		}).Error
		assert.True(t, apperr.IsCheckViolation(err), err)
	})

	t.Run("amount at least one", func(t *testing.T) {
		sugar := testutil.CreateIngredient(t, db, "sugar", "g")
		err := db.Omit("Ingredient").Create(&models.IngredientAmount{RecipeID: recipe.ID, IngredientID: sugar.ID, Amount: 0}).Error
		assert.True(t, apperr.IsCheckViolation(err), err)
	})

	t.Run("ingredient once per recipe", func(t *testing.T) {
		err := db.Omit("Ingredient").Create(&models.IngredientAmount{RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 3}).Error
		assert.True(t, apperr.IsUniqueViolation(err), err)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		err := NewSubscriptionRepository(db).Create(ctx, author.ID, author.ID)
		assert.True(t, apperr.IsCheckViolation(err), err)
	})

	t.Run("marker unique per user", func(t *testing.T) {
		favorites := NewMarkerRepository(db, models.FavoriteMarker)
		require.NoError(t, favorites.Add(ctx, author.ID, recipe.ID))
		assert.True(t, apperr.IsUniqueViolation(favorites.Add(ctx, author.ID, recipe.ID)))

		cart := NewMarkerRepository(db, models.ShoppingCartMarker)
		assert.NoError(t, cart.Add(ctx, author.ID, recipe.ID))
	})
}

func TestRecipeDeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db)
	reader := testutil.CreateUser(t, db)
	tag := testutil.CreateTag(t, db, "")
	flour := testutil.CreateIngredient(t, db, "flour", "g")
	recipe := testutil.CreateRecipe(t, db, author, "", []*models.Tag{tag}, testutil.Amount{Ingredient: flour, Amount: 100})

	require.NoError(t, NewMarkerRepository(db, models.FavoriteMarker).Add(ctx, reader.ID, recipe.ID))
	require.NoError(t, NewMarkerRepository(db, models.ShoppingCartMarker).Add(ctx, reader.ID, recipe.ID))

	require.NoError(t, NewRecipeRepository(db).Delete(ctx, recipe.ID))

	for _, table := range []string{"ingredient_amounts", "recipe_tags", "favorites", "shopping_cart_entries"} {
		var count int64
		require.NoError(t, db.Table(table).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
		assert.Zero(t, count, table)
	}

	var tags, ingredients int64
	db.Model(&models.Tag{}).Count(&tags)
	db.Model(&models.Ingredient{}).Count(&ingredients)
	assert.EqualValues(t, 1, tags)
	assert.EqualValues(t, 1, ingredients)
}

func TestRecipeListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)
	breakfast := testutil.CreateTag(t, db, "breakfast")
	lunch := testutil.CreateTag(t, db, "lunch")
	dinner := testutil.CreateTag(t, db, "dinner")

	r1 := testutil.CreateRecipe(t, db, alice, "Porridge", []*models.Tag{breakfast})
	r2 := testutil.CreateRecipe(t, db, bob, "Salad", []*models.Tag{lunch, breakfast})
	r3 := testutil.CreateRecipe(t, db, bob, "Steak", []*models.Tag{dinner})

	ids := func(recipes []models.Recipe) []uint {
		out := make([]uint, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}

	all, total, err := repo.List(ctx, RecipeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uint{r3.ID, r2.ID, r1.ID}, ids(all))

	union, _, err := repo.List(ctx, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r1.ID, r2.ID, r3.ID}, ids(union))

	lunchOnly, _, err := repo.List(ctx, RecipeFilter{TagSlugs: []string{"lunch"}})
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, ids(lunchOnly))
	require.Len(t, lunchOnly[0].Tags, 2)
	assert.Equal(t, "breakfast", lunchOnly[0].Tags[0].Slug)

	byBob, total, err := repo.List(ctx, RecipeFilter{AuthorID: bob.ID, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uint{r3.ID}, ids(byBob))

	require.NoError(t, NewMarkerRepository(db, models.FavoriteMarker).Add(ctx, alice.ID, r2.ID))
	require.NoError(t, NewMarkerRepository(db, models.ShoppingCartMarker).Add(ctx, alice.ID, r3.ID))

	favorited, _, err := repo.List(ctx, RecipeFilter{FavoritedBy: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{r2.ID}, ids(favorited))

	inCart, _, err := repo.List(ctx, RecipeFilter{InCartOf: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{r3.ID}, ids(inCart))

	counts, err := repo.CountByAuthors(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{alice.ID: 1, bob.ID: 2}, counts)
}

func TestShoppingListTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	cook := testutil.CreateUser(t, db)
	tag := testutil.CreateTag(t, db, "")
	flour := testutil.CreateIngredient(t, db, "flour", "g")
	eggs := testutil.CreateIngredient(t, db, "eggs", "pcs")
	milk := testutil.CreateIngredient(t, db, "milk", "ml")

	bread := testutil.CreateRecipe(t, db, cook, "Bread", []*models.Tag{tag}, testutil.Amount{Ingredient: flour, Amount: 200})
	cake := testutil.CreateRecipe(t, db, cook, "Cake", []*models.Tag{tag},
		testutil.Amount{Ingredient: flour, Amount: 300}, testutil.Amount{Ingredient: eggs, Amount: 3})
	testutil.CreateRecipe(t, db, cook, "Latte", []*models.Tag{tag}, testutil.Amount{Ingredient: milk, Amount: 250})

	cart := NewMarkerRepository(db, models.ShoppingCartMarker)
	require.NoError(t, cart.Add(ctx, cook.ID, bread.ID))
	require.NoError(t, cart.Add(ctx, cook.ID, cake.ID))

	totals, err := NewIngredientRepository(db).ShoppingListTotals(ctx, cook.ID)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, models.IngredientTotal{IngredientID: eggs.ID, Name: "eggs", MeasurementUnit: "pcs", Total: 3}, totals[0])
	assert.Equal(t, models.IngredientTotal{IngredientID: flour.ID, Name: "flour", MeasurementUnit: "g", Total: 500}, totals[1])
}

func TestMissingIDsKeepsRequestOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	tag := testutil.CreateTag(t, db, "")

	missing, err := NewTagRepository(db).MissingIDs(context.Background(), []uint{42, tag.ID, 7})
	require.NoError(t, err)
	assert.Equal(t, []uint{42, 7}, missing)
}

func TestSubscriptionListAuthors(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()
	fan := testutil.CreateUser(t, db)
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	testutil.CreateUser(t, db)

	require.NoError(t, repo.Create(ctx, fan.ID, a.ID))
	require.NoError(t, repo.Create(ctx, fan.ID, b.ID))

	authors, total, err := repo.ListAuthors(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 2)
	assert.Equal(t, b.ID, authors[0].ID)

	removed, err := repo.Delete(ctx, fan.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, fan.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
