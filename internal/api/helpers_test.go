package api

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/auth"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPageSize = 2

func init() {
	gin.SetMode(gin.TestMode)
}

type registrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func newEngine(tokens middleware.TokenValidator, users middleware.UserLoader, handlers ...registrar) *gin.Engine {
	log := testutil.DiscardLogger()
	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	api := r.Group("/api")
	api.Use(middleware.Authenticate(tokens, users))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return r
}

// newTestAPI wires every handler to services over a fresh sqlite database.
func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	require.NoError(t, RegisterValidators())

	db := testutil.NewTestDB(t)
	log := testutil.DiscardLogger()

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewMarkerRepository(db, models.FavoriteMarker)
	cartRepo := repository.NewMarkerRepository(db, models.ShoppingCartMarker)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	projector := service.NewProjector(recipeRepo, favoriteRepo, cartRepo, subscriptionRepo)

	users := service.NewUserService(userRepo, projector, []string{"me"}, log).WithHashCost(bcrypt.MinCost)
	subscriptions := service.NewSubscriptionService(subscriptionRepo, userRepo, projector, log)

	engine := newEngine(auth.NewTokenService(testutil.JWTSecret), userRepo,
		NewUserHandler(users, subscriptions, testPageSize),
		NewCatalogHandler(service.NewCatalogService(tagRepo, ingredientRepo, nil, log)),
		NewRecipeHandler(
			service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, storage.NewLocalStore(t.TempDir(), "/media/"), projector, log),
			service.NewMarkerService(favoriteRepo, recipeRepo, log),
			service.NewMarkerService(cartRepo, recipeRepo, log),
			service.NewShoppingListService(ingredientRepo),
			nil,
			testPageSize,
		),
	)
	return engine, db
}
