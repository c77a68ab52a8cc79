package repository

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkerRepository manages one kind of per-user recipe marker: favorites or
// shopping-cart entries.
type MarkerRepository interface {
	Kind() models.MarkerKind
	Add(ctx context.Context, userID, recipeID uint) error
	Remove(ctx context.Context, userID, recipeID uint) (bool, error)
	Exists(ctx context.Context, userID, recipeID uint) (bool, error)
	MarkedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
	CountForRecipe(ctx context.Context, recipeID uint) (int64, error)
}

type markerRepository struct {
	db   *gorm.DB
	kind models.MarkerKind
}

// NewMarkerRepository creates a repository over the table of kind.
func NewMarkerRepository(db *gorm.DB, kind models.MarkerKind) MarkerRepository {
	return &markerRepository{db: db, kind: kind}
}

func (r *markerRepository) Kind() models.MarkerKind {
	return r.kind
}

func (r *markerRepository) Add(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(r.kind.New(userID, recipeID)).Error
}

// Remove deletes the marker and reports whether one existed.
func (r *markerRepository) Remove(ctx context.Context, userID, recipeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(r.kind.New(0, 0))
	return res.RowsAffected > 0, res.Error
}

func (r *markerRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// MarkedRecipeIDs returns the subset of recipeIDs the user has marked.
func (r *markerRepository) MarkedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Table(r.kind.Table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *markerRepository) CountForRecipe(ctx context.Context, recipeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.kind.Table()).Where("recipe_id = ?", recipeID).Count(&count).Error
	return count, err
}
