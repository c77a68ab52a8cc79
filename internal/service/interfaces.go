package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IUserService defines the interface for user account operations
type IUserService interface {
	CreateUser(ctx context.Context, req *types.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uint, viewer *models.User) (*types.UserView, error)
	ListUsers(ctx context.Context, viewer *models.User, limit, offset int) ([]types.UserView, int64, error)
	SetPassword(ctx context.Context, user *models.User, req *types.SetPasswordRequest) error
}

// ICatalogService defines the interface for tag and ingredient operations
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, author *models.User, req *types.RecipeRequest) (*types.RecipeView, error)
	UpdateRecipe(ctx context.Context, actor *models.User, id uint, req *types.RecipeRequest) (*types.RecipeView, error)
	DeleteRecipe(ctx context.Context, actor *models.User, id uint) error
	GetRecipe(ctx context.Context, id uint, viewer *models.User) (*types.RecipeView, error)
	ListRecipes(ctx context.Context, query RecipeQuery, viewer *models.User) ([]types.RecipeView, int64, error)
}

// IMarkerService toggles one kind of per-user recipe marker
type IMarkerService interface {
	Add(ctx context.Context, user *models.User, recipeID uint) (*types.ShortRecipeView, error)
	Remove(ctx context.Context, user *models.User, recipeID uint) error
}

// IShoppingListService aggregates a user's shopping cart
type IShoppingListService interface {
	BuildShoppingList(ctx context.Context, user *models.User) ([]ShoppingListLine, error)
	Render(lines []ShoppingListLine) string
}

// ISubscriptionService defines the interface for follow operations
type ISubscriptionService interface {
	Follow(ctx context.Context, user *models.User, authorID uint, recipesLimit int) (*types.SubscriptionView, error)
	Unfollow(ctx context.Context, user *models.User, authorID uint) error
	ListFollowing(ctx context.Context, user *models.User, limit, offset, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

// TagCache is an optional cache of the tag list
type TagCache interface {
	Get(ctx context.Context) ([]models.Tag, bool, error)
	Set(ctx context.Context, tags []models.Tag) error
	Invalidate(ctx context.Context) error
}
