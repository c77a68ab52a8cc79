package repository

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. Zero values disable a predicate.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
	Limit       int
	Offset      int
}

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	NameTaken(ctx context.Context, authorID uint, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, recipe *models.Recipe, tagIDs []uint, amounts []models.IngredientAmount) error
	Update(ctx context.Context, recipe *models.Recipe, tagIDs []uint, amounts []models.IngredientAmount) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id ASC") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// NameTaken reports whether the author already has a recipe called name,
// ignoring the recipe excludeID.
func (r *recipeRepository) NameTaken(ctx context.Context, authorID uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// Create inserts the recipe with its tag links and ingredient amounts in
// one transaction.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs []uint, amounts []models.IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return insertComponents(tx, recipe.ID, tagIDs, amounts)
	})
}

// Update rewrites the recipe's fields and replaces its tag links and
// ingredient amounts in one transaction.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, tagIDs []uint, amounts []models.IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]any{
			"name":         recipe.Name,
			"image":        recipe.Image,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		return insertComponents(tx, recipe.ID, tagIDs, amounts)
	})
}

func insertComponents(tx *gorm.DB, recipeID uint, tagIDs []uint, amounts []models.IngredientAmount) error {
	if len(tagIDs) > 0 {
		links := make([]models.RecipeTag, len(tagIDs))
		for i, id := range tagIDs {
			links[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
	}
	if len(amounts) > 0 {
		rows := make([]models.IngredientAmount, len(amounts))
		for i, a := range amounts {
			rows[i] = models.IngredientAmount{RecipeID: recipeID, IngredientID: a.IngredientID, Amount: a.Amount}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the recipe; its amounts, tag links and markers go with it
// through ON DELETE CASCADE.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Recipe{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of recipes matching the filter, newest first, and
// the number of matching recipes.
func (r *recipeRepository) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", markedBy(r.db, models.FavoriteMarker, f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", markedBy(r.db, models.ShoppingCartMarker, f.InCartOf))
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := paginate(withDetails(base).Order("recipes.pub_date DESC").Order("recipes.id DESC"), f.Limit, f.Offset).
		Find(&recipes).Error
	return recipes, total, err
}

func markedBy(db *gorm.DB, kind models.MarkerKind, userID uint) *gorm.DB {
	return db.Table(kind.Table()).Select("recipe_id").Where("user_id = ?", userID)
}

// ListByAuthor returns the author's newest recipes; limit <= 0 returns all.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Count
	}
	return counts, nil
}
