package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxNameLength = 150

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_.@+-]+$`)
	usernameChar    = regexp.MustCompile(`[\p{L}\p{M}\p{N}_.@+-]`)
)

// ValidUsername reports whether s consists only of letters, digits and
// the characters . @ + - _.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

type UserService struct {
	users     repository.UserRepository
	projector *Projector
	forbidden []string
	validate  *validator.Validate
	hashCost  int
	log       *slog.Logger
}

// NewUserService creates a user service; forbidden lists usernames that
// cannot be registered.
func NewUserService(users repository.UserRepository, projector *Projector, forbidden []string, log *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		projector: projector,
		forbidden: forbidden,
		validate:  validator.New(),
		hashCost:  bcrypt.DefaultCost,
		log:       log,
	}
}

// WithHashCost overrides the bcrypt cost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func (s *UserService) checkUsername(username string) error {
	switch {
	case username == "":
		return apperr.NewValidationError("username", "username is required")
	case utf8.RuneCountInString(username) > maxNameLength:
		return apperr.NewValidationError("username", "username must be at most 150 characters")
	case slices.Contains(s.forbidden, username):
		return apperr.NewField(apperr.Validation, "username", "username %q is not allowed", username)
	case !ValidUsername(username):
		invalid := usernameChar.ReplaceAllString(username, "")
		return apperr.NewField(apperr.Validation, "username", "username contains invalid characters: %s", invalid)
	}
	return nil
}

func (s *UserService) checkRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		return apperr.NewValidationError(field, field+" must be at most 150 characters")
	}
	return nil
}

// CreateUser registers a new account.
func (s *UserService) CreateUser(ctx context.Context, req *types.CreateUserRequest) (*models.User, error) {
	if err := s.checkUsername(req.Username); err != nil {
		return nil, err
	}
	if err := s.validate.Var(req.Email, "required,email,max=254"); err != nil {
		return nil, apperr.NewValidationError("email", "enter a valid email address")
	}
	for _, f := range []struct{ name, value string }{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"password", req.Password},
	} {
		if err := s.checkRequired(f.name, f.value); err != nil {
			return nil, err
		}
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if taken {
		return nil, apperr.NewField(apperr.DuplicateEntity, "username", "a user with that username already exists")
	}
	taken, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if taken {
		return nil, apperr.NewField(apperr.DuplicateEntity, "email", "a user with that email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.FromDB(err, apperr.DuplicateEntity, "a user with that username or email already exists")
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint, viewer *models.User) (*types.UserView, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	view, err := s.projector.User(ctx, user, viewer)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return &view, nil
}

// ListUsers returns a page of users, newest account first.
func (s *UserService) ListUsers(ctx context.Context, viewer *models.User, limit, offset int) ([]types.UserView, int64, error) {
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	views, err := s.projector.Users(ctx, users, viewer)
	if err != nil {
		return nil, 0, apperr.NewInternalError(err)
	}
	return views, total, nil
}

// SetPassword replaces the user's password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, user *models.User, req *types.SetPasswordRequest) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.NewValidationError("current_password", "current password is incorrect")
	}
	if err := s.checkRequired("new_password", req.NewPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return apperr.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return apperr.NewInternalError(err)
	}
	user.PasswordHash = string(hash)
	s.log.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}
