package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// 1x1 transparent PNG used as every seeded recipe's image.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

const seedPassword = "testpassword123"

var seedTags = []types.CreateTagRequest{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

var seedIngredients = []types.CreateIngredientRequest{
	{Name: "eggs", MeasurementUnit: "pcs"},
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "g"},
	{Name: "potatoes", MeasurementUnit: "g"},
	{Name: "chicken breast", MeasurementUnit: "g"},
	{Name: "rice", MeasurementUnit: "g"},
	{Name: "tomatoes", MeasurementUnit: "pcs"},
}

func main() {
	numUsers := flag.Int("users", 5, "Number of demo users to create")
	recipesPerUser := flag.Int("recipes", 3, "Number of recipes per demo user")
	seed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(config.IsProduction(), cfg.LogLevel)
	gofakeit.Seed(*seed)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db, log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	projector := service.NewProjector(
		recipeRepo,
		repository.NewMarkerRepository(db, models.FavoriteMarker),
		repository.NewMarkerRepository(db, models.ShoppingCartMarker),
		repository.NewSubscriptionRepository(db),
	)
	users := service.NewUserService(userRepo, projector, cfg.ForbiddenUsernameList(), log)
	catalog := service.NewCatalogService(tagRepo, ingredientRepo, nil, log)
	recipes := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo,
		storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), projector, log)

	var tagIDs []uint
	for _, req := range seedTags {
		tag, err := catalog.CreateTag(ctx, &req)
		if apperr.Is(err, apperr.DuplicateEntity) {
			existing, _ := tagRepo.List(ctx)
			for _, t := range existing {
				if t.Slug == req.Slug {
					tagIDs = append(tagIDs, t.ID)
				}
			}
			continue
		}
		if err != nil {
			log.Error("failed to create tag", "slug", req.Slug, "error", err)
			os.Exit(1)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	var ingredientIDs []uint
	for _, req := range seedIngredients {
		ing, err := catalog.CreateIngredient(ctx, &req)
		if apperr.Is(err, apperr.DuplicateEntity) {
			found, _ := ingredientRepo.List(ctx, req.Name)
			for _, f := range found {
				if f.Name == req.Name && f.MeasurementUnit == req.MeasurementUnit {
					ingredientIDs = append(ingredientIDs, f.ID)
				}
			}
			continue
		}
		if err != nil {
			log.Error("failed to create ingredient", "name", req.Name, "error", err)
			os.Exit(1)
		}
		ingredientIDs = append(ingredientIDs, ing.ID)
	}

	created := 0
	for i := 0; i < *numUsers; i++ {
		first, last := gofakeit.FirstName(), gofakeit.LastName()
		username := strings.ToLower(first + "." + last)
		user, err := users.CreateUser(ctx, &types.CreateUserRequest{
			Email:     username + "@example.com",
			Username:  username,
			FirstName: first,
			LastName:  last,
			Password:  seedPassword,
		})
		if err != nil {
			log.Warn("skipping user", "username", username, "error", err)
			continue
		}

		for j := 0; j < *recipesPerUser; j++ {
			req := &types.RecipeRequest{
				Name:        gofakeit.Dinner(),
				Text:        gofakeit.Paragraph(2, 3, 12, " "),
				CookingTime: gofakeit.Number(5, 180),
				Image:       placeholderImage,
				Tags:        pick(tagIDs, gofakeit.Number(1, len(tagIDs))),
			}
			for _, id := range pick(ingredientIDs, gofakeit.Number(2, 5)) {
				req.Ingredients = append(req.Ingredients, types.IngredientAmountRequest{ID: id, Amount: gofakeit.Number(1, 500)})
			}
			if _, err := recipes.CreateRecipe(ctx, user, req); err != nil {
				log.Warn("skipping recipe", "name", req.Name, "error", err)
				continue
			}
			created++
		}
		log.Info("seeded user", "username", username)
	}

	log.Info("seed complete", "recipes", created, "password", seedPassword)
}

// pick returns n distinct ids in random order.
func pick(ids []uint, n int) []uint {
	shuffled := append([]uint(nil), ids...)
	gofakeit.ShuffleAnySlice(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
