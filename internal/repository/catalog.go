package repository

import (
	"context"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByID(ctx context.Context, id uint) (*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	MissingIDs(ctx context.Context, ids []uint) ([]uint, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) FindByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(ctx, r.db, "tags", ids)
}

// IngredientRepository defines the interface for ingredient data operations
type IngredientRepository interface {
	List(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	FindByID(ctx context.Context, id uint) (*models.Ingredient, error)
	Create(ctx context.Context, ingredient *models.Ingredient) error
	MissingIDs(ctx context.Context, ids []uint) ([]uint, error)
	ShoppingListTotals(ctx context.Context, userID uint) ([]models.IngredientTotal, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns ingredients ordered by name. A non-empty prefix keeps only
// names starting with it, ignoring case.
func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&models.Ingredient{})
	// SQLite's LOWER only folds ASCII, so the prefix is matched in Go there.
	foldInGo := namePrefix != "" && r.db.Dialector.Name() == "sqlite"
	if namePrefix != "" && !foldInGo {
		pattern := likeEscaper.Replace(strings.ToLower(namePrefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	var ingredients []models.Ingredient
	if err := q.Order("name ASC").Order("measurement_unit ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	if foldInGo {
		ingredients = filterByPrefix(ingredients, namePrefix)
	}
	return ingredients, nil
}

func filterByPrefix(ingredients []models.Ingredient, prefix string) []models.Ingredient {
	prefix = strings.ToLower(prefix)
	out := ingredients[:0]
	for _, ing := range ingredients {
		if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
			out = append(out, ing)
		}
	}
	return out
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}

func (r *ingredientRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(ctx, r.db, "ingredients", ids)
}

// ShoppingListTotals sums the ingredient amounts of every recipe in the
// user's shopping cart, one row per ingredient, ordered by name.
func (r *ingredientRepository) ShoppingListTotals(ctx context.Context, userID uint) ([]models.IngredientTotal, error) {
	var totals []models.IngredientTotal
	err := r.db.WithContext(ctx).
		Table("ingredient_amounts").
		Select("ingredients.id AS ingredient_id, ingredients.name AS name, " +
			"ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = ingredient_amounts.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Order("ingredients.measurement_unit ASC").
		Scan(&totals).Error
	return totals, err
}
