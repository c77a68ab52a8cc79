package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// MarkerService adds and removes one kind of marker, favorites or
// shopping-cart entries, for the acting user.
type MarkerService struct {
	markers repository.MarkerRepository
	recipes repository.RecipeRepository
	log     *slog.Logger
}

func NewMarkerService(markers repository.MarkerRepository, recipes repository.RecipeRepository, log *slog.Logger) *MarkerService {
	return &MarkerService{markers: markers, recipes: recipes, log: log}
}

// Add marks the recipe and returns its short view.
func (s *MarkerService) Add(ctx context.Context, user *models.User, recipeID uint) (*types.ShortRecipeView, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("recipe", recipeID)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}

	kind := s.markers.Kind()
	exists, err := s.markers.Exists(ctx, user.ID, recipeID)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if exists {
		return nil, apperr.New(apperr.AlreadyExists, "recipe is already in %s", kind)
	}
	if err := s.markers.Add(ctx, user.ID, recipeID); err != nil {
		return nil, apperr.FromDB(err, apperr.AlreadyExists, "recipe is already in "+kind.String())
	}

	s.log.InfoContext(ctx, "recipe marked", "marker", kind.String(), "recipe_id", recipeID, "user_id", user.ID)
	view := types.NewShortRecipeView(recipe)
	return &view, nil
}

func (s *MarkerService) Remove(ctx context.Context, user *models.User, recipeID uint) error {
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return apperr.NewInternalError(err)
	}
	if !exists {
		return apperr.NewNotFoundError("recipe", recipeID)
	}

	kind := s.markers.Kind()
	removed, err := s.markers.Remove(ctx, user.ID, recipeID)
	if err != nil {
		return apperr.NewInternalError(err)
	}
	if !removed {
		return apperr.New(apperr.NotPresent, "recipe is not in %s", kind)
	}
	s.log.InfoContext(ctx, "recipe unmarked", "marker", kind.String(), "recipe_id", recipeID, "user_id", user.ID)
	return nil
}
