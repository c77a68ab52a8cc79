package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// RecipeQuery selects recipes for a listing. The favorited and cart flags
// are ignored for anonymous viewers.
type RecipeQuery struct {
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorID         uint
	TagSlugs         []string
	Limit            int
	Offset           int
}

// RecipeService handles recipe operations
type RecipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	images      storage.ImageStore
	projector   *Projector
	log         *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(
	recipes repository.RecipeRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	images storage.ImageStore,
	projector *Projector,
	log *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		projector:   projector,
		log:         log,
	}
}

// CreateRecipe validates the request and stores the recipe with its tags
// and ingredient amounts in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, author *models.User, req *types.RecipeRequest) (*types.RecipeView, error) {
	if req.Image == "" {
		return nil, apperr.NewValidationError("image", "image is required")
	}
	amounts, err := s.validate(ctx, author.ID, 0, req)
	if err != nil {
		return nil, err
	}
	image, key, err := s.storeImage(ctx, req.Image, "")
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        req.Name,
		AuthorID:    author.ID,
		Image:       image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, req.Tags, amounts); err != nil {
		s.discardImage(ctx, key)
		return nil, s.writeError(err)
	}
	s.log.InfoContext(ctx, "recipe created", "recipe_id", recipe.ID, "author_id", author.ID)
	return s.view(ctx, recipe.ID, author)
}

// UpdateRecipe rewrites a recipe owned by actor, or any recipe when actor
// is staff. Tags and ingredient amounts are replaced wholesale.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor *models.User, id uint, req *types.RecipeRequest) (*types.RecipeView, error) {
	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	amounts, err := s.validate(ctx, current.AuthorID, id, req)
	if err != nil {
		return nil, err
	}
	image, key, err := s.storeImage(ctx, req.Image, current.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:          id,
		Name:        req.Name,
		AuthorID:    current.AuthorID,
		Image:       image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipes.Update(ctx, recipe, req.Tags, amounts); err != nil {
		s.discardImage(ctx, key)
		return nil, s.writeError(err)
	}
	s.log.InfoContext(ctx, "recipe updated", "recipe_id", id, "actor_id", actor.ID)
	return s.view(ctx, id, actor)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, actor *models.User, id uint) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	err := s.recipes.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NewNotFoundError("recipe", id)
	}
	if err != nil {
		return apperr.NewInternalError(err)
	}
	s.log.InfoContext(ctx, "recipe deleted", "recipe_id", id, "actor_id", actor.ID)
	return nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint, viewer *models.User) (*types.RecipeView, error) {
	return s.view(ctx, id, viewer)
}

// ListRecipes returns one page of recipes, newest first, and the number of
// recipes matching the query.
func (s *RecipeService) ListRecipes(ctx context.Context, q RecipeQuery, viewer *models.User) ([]types.RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if viewer != nil {
		if q.IsFavorited {
			filter.FavoritedBy = viewer.ID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = viewer.ID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	views, err := s.projector.Recipes(ctx, recipes, viewer)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	return views, total, nil
}

func (s *RecipeService) view(ctx context.Context, id uint, viewer *models.User) (*types.RecipeView, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("recipe", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	view, err := s.projector.Recipe(ctx, recipe, viewer)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return view, nil
}

func (s *RecipeService) authorize(ctx context.Context, actor *models.User, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("recipe", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if recipe.AuthorID != actor.ID && !actor.IsStaff {
		return nil, apperr.NewForbiddenError("only the author can change this recipe")
	}
	return recipe, nil
}

// validate checks the request in a fixed order so that the first failing
// rule determines the error.
func (s *RecipeService) validate(ctx context.Context, authorID, recipeID uint, req *types.RecipeRequest) ([]models.IngredientAmount, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.NewValidationError("name", "name is required")
	}
	if len([]rune(req.Name)) > maxCatalogLength {
		return nil, apperr.NewValidationError("name", "name must be at most 200 characters")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.NewValidationError("text", "text is required")
	}
	if req.CookingTime < 1 {
		return nil, apperr.NewField(apperr.InvalidValue, "cooking_time", "cooking time must be at least 1 minute")
	}

	if err := s.checkReferences(ctx, "tags", "tag", req.Tags, s.tags.MissingIDs); err != nil {
		return nil, err
	}

	ids := make([]uint, len(req.Ingredients))
	for i, in := range req.Ingredients {
		ids[i] = in.ID
	}
	if err := s.checkReferences(ctx, "ingredients", "ingredient", ids, s.ingredients.MissingIDs); err != nil {
		return nil, err
	}
	amounts := make([]models.IngredientAmount, len(req.Ingredients))
	for i, in := range req.Ingredients {
		if in.Amount < 1 {
			return nil, apperr.NewField(apperr.InvalidValue, "ingredients", "amount of ingredient %d must be at least 1", in.ID)
		}
		amounts[i] = models.IngredientAmount{IngredientID: in.ID, Amount: in.Amount}
	}

	taken, err := s.recipes.NameTaken(ctx, authorID, req.Name, recipeID)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if taken {
		return nil, apperr.NewField(apperr.DuplicateEntity, "name", "you already have a recipe named %q", req.Name)
	}
	return amounts, nil
}

func (s *RecipeService) checkReferences(
	ctx context.Context,
	field, noun string,
	ids []uint,
	missing func(context.Context, []uint) ([]uint, error),
) error {
	if len(ids) == 0 {
		return apperr.NewField(apperr.Validation, field, "a recipe must have at least one %s", noun)
	}
	absent, err := missing(ctx, ids)
	if err != nil {
		return apperr.NewInternalError(err)
	}
	if len(absent) > 0 {
		return apperr.NewField(apperr.InvalidReference, field, "no %s with id %d", noun, absent[0])
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.NewField(apperr.DuplicateInInput, field, "%s %d is repeated", noun, id)
		}
		seen[id] = true
	}
	return nil
}

// storeImage saves an inline upload and returns its URL and object key.
// An empty payload, or the recipe's current URL sent back unchanged, keeps
// current and returns no key.
func (s *RecipeService) storeImage(ctx context.Context, payload, current string) (string, string, error) {
	if current != "" && (payload == "" || payload == current) {
		return current, "", nil
	}
	if !storage.IsDataURI(payload) {
		return "", "", apperr.NewValidationError("image", storage.ErrInvalidImage.Error())
	}
	url, key, err := storage.SaveDataURI(ctx, s.images, payload)
	if errors.Is(err, storage.ErrInvalidImage) {
		return "", "", apperr.NewValidationError("image", err.Error())
	}
	if err != nil {
		return "", "", apperr.NewInternalError(err)
	}
	return url, key, nil
}

// discardImage removes an upload whose recipe write failed.
func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "failed to delete orphaned image", "key", key, "error", err)
	}
}

// writeError translates a failed recipe write. The only unique constraint
// a validated request can still hit is (author, name), lost to a
// concurrent write.
func (s *RecipeService) writeError(err error) error {
	switch {
	case apperr.IsUniqueViolation(err):
		return &apperr.Error{Kind: apperr.DuplicateEntity, Field: "name", Message: "you already have a recipe with this name", Err: err}
	case apperr.IsCheckViolation(err):
		return &apperr.Error{Kind: apperr.InvalidValue, Message: "recipe values are out of range", Err: err}
	}
	return apperr.FromDB(err, apperr.DuplicateEntity, "recipe write failed")
}
