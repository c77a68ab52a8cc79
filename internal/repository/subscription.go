package repository

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines the interface for follow edges
type SubscriptionRepository interface {
	Create(ctx context.Context, userID, authorID uint) error
	Delete(ctx context.Context, userID, authorID uint) (bool, error)
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) ([]uint, error)
	ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).
		Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error
}

// Delete removes the edge and reports whether one existed.
func (r *subscriptionRepository) Delete(ctx context.Context, userID, authorID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	return res.RowsAffected > 0, res.Error
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FollowedAmong returns the subset of authorIDs the user follows.
func (r *subscriptionRepository) FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) ([]uint, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	return ids, err
}

// ListAuthors returns a page of the users followed by userID, newest
// account first, with the total count.
func (r *subscriptionRepository) ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id IN (?)", r.db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := paginate(base.Order("users.id DESC"), limit, offset).Find(&users).Error
	return users, total, err
}
