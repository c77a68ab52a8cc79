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

type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	projector     *Projector
	log           *slog.Logger
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	projector *Projector,
	log *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users, projector: projector, log: log}
}

// Follow subscribes user to the author and returns the author's
// subscription view.
func (s *SubscriptionService) Follow(ctx context.Context, user *models.User, authorID uint, recipesLimit int) (*types.SubscriptionView, error) {
	author, err := s.findAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == user.ID {
		return nil, apperr.New(apperr.SelfFollow, "you cannot subscribe to yourself")
	}
	exists, err := s.subscriptions.Exists(ctx, user.ID, author.ID)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if exists {
		return nil, apperr.New(apperr.AlreadyFollowing, "you are already subscribed to this user")
	}

	if err := s.subscriptions.Create(ctx, user.ID, author.ID); err != nil {
		if apperr.IsCheckViolation(err) {
			return nil, &apperr.Error{Kind: apperr.SelfReference, Message: "a user cannot follow themselves", Err: err}
		}
		return nil, apperr.FromDB(err, apperr.AlreadyFollowing, "you are already subscribed to this user")
	}
	s.log.InfoContext(ctx, "subscribed", "user_id", user.ID, "author_id", author.ID)

	views, err := s.projector.Subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return &views[0], nil
}

func (s *SubscriptionService) Unfollow(ctx context.Context, user *models.User, authorID uint) error {
	if _, err := s.findAuthor(ctx, authorID); err != nil {
		return err
	}
	removed, err := s.subscriptions.Delete(ctx, user.ID, authorID)
	if err != nil {
		return apperr.NewInternalError(err)
	}
	if !removed {
		return apperr.New(apperr.NotFollowing, "you are not subscribed to this user")
	}
	s.log.InfoContext(ctx, "unsubscribed", "user_id", user.ID, "author_id", authorID)
	return nil
}

// ListFollowing returns a page of the authors user follows.
func (s *SubscriptionService) ListFollowing(ctx context.Context, user *models.User, limit, offset, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	authors, total, err := s.subscriptions.ListAuthors(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	views, err := s.projector.Subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	return views, total, nil
}

func (s *SubscriptionService) findAuthor(ctx context.Context, id uint) (*models.User, error) {
	author, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return author, nil
}
