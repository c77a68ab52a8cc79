package mocks

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, author *models.User, req *types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, actor *models.User, id uint, req *types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, actor *models.User, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id uint, viewer *models.User) (*types.RecipeView, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, query service.RecipeQuery, viewer *models.User) ([]types.RecipeView, int64, error) {
	args := m.Called(ctx, query, viewer)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeView), args.Get(1).(int64), args.Error(2)
}

// MockMarkerService is a mock implementation of service.IMarkerService
type MockMarkerService struct {
	mock.Mock
}

func (m *MockMarkerService) Add(ctx context.Context, user *models.User, recipeID uint) (*types.ShortRecipeView, error) {
	args := m.Called(ctx, user, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShortRecipeView), args.Error(1)
}

func (m *MockMarkerService) Remove(ctx context.Context, user *models.User, recipeID uint) error {
	args := m.Called(ctx, user, recipeID)
	return args.Error(0)
}

// MockShoppingListService is a mock implementation of service.IShoppingListService
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) BuildShoppingList(ctx context.Context, user *models.User) ([]service.ShoppingListLine, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingListLine), args.Error(1)
}

func (m *MockShoppingListService) Render(lines []service.ShoppingListLine) string {
	args := m.Called(lines)
	return args.String(0)
}
