package service

import (
	"context"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validUser() *types.CreateUserRequest {
	return &types.CreateUserRequest{
		Email:     "chef@example.com",
		Username:  "chef",
		FirstName: "Julia",
		LastName:  "Child",
		Password:  "bon-appetit",
	}
}

func TestCreateUser(t *testing.T) {
	s := newServices(t, nil)

	user, err := s.users.CreateUser(context.Background(), validUser())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "bon-appetit", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("bon-appetit")))
	assert.False(t, user.IsStaff)
}

func TestCreateUserValidation(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	_, err := s.users.CreateUser(ctx, validUser())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*types.CreateUserRequest)
		kind   apperr.Kind
		field  string
	}{
		{"empty username", func(r *types.CreateUserRequest) { r.Username = "" }, apperr.Validation, "username"},
		{"long username", func(r *types.CreateUserRequest) { r.Username = strings.Repeat("a", 151) }, apperr.Validation, "username"},
		{"forbidden username", func(r *types.CreateUserRequest) { r.Username = "me" }, apperr.Validation, "username"},
		{"invalid characters", func(r *types.CreateUserRequest) { r.Username = "chef #1" }, apperr.Validation, "username"},
		{"invalid email", func(r *types.CreateUserRequest) { r.Username = "cook"; r.Email = "not-an-email" }, apperr.Validation, "email"},
		{"missing first name", func(r *types.CreateUserRequest) { r.Username = "cook"; r.Email = "c@example.com"; r.FirstName = " " }, apperr.Validation, "first_name"},
		{"missing password", func(r *types.CreateUserRequest) { r.Username = "cook"; r.Email = "c@example.com"; r.Password = "" }, apperr.Validation, "password"},
		{"taken username", func(r *types.CreateUserRequest) { r.Email = "other@example.com" }, apperr.DuplicateEntity, "username"},
		{"taken email", func(r *types.CreateUserRequest) { r.Username = "cook" }, apperr.DuplicateEntity, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUser()
			tt.mutate(req)
			_, err := s.users.CreateUser(ctx, req)
			assertKind(t, err, tt.kind)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	// Forbidden names match exactly.
	req := validUser()
	req.Username, req.Email = "meme", "meme@example.com"
	_, err = s.users.CreateUser(ctx, req)
	require.NoError(t, err)
}

func TestListAndGetUsers(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	first := testutil.CreateUser(t, s.db)
	second := testutil.CreateUser(t, s.db)

	_, err := s.subscriptions.Follow(ctx, first, second.ID, 0)
	require.NoError(t, err)

	views, total, err := s.users.ListUsers(ctx, first, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.True(t, views[0].IsSubscribed)
	assert.False(t, views[1].IsSubscribed)

	view, err := s.users.GetUser(ctx, second.ID, nil)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)
	assert.Equal(t, second.Email, view.Email)

	_, err = s.users.GetUser(ctx, 999, nil)
	assertKind(t, err, apperr.NotFound)
}

func TestSetPassword(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db)

	err := s.users.SetPassword(ctx, user, &types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "fresh-pass"})
	assertKind(t, err, apperr.Validation)

	err = s.users.SetPassword(ctx, user, &types.SetPasswordRequest{CurrentPassword: testutil.Password, NewPassword: "fresh-pass"})
	require.NoError(t, err)

	var hash string
	require.NoError(t, s.db.Table("users").Select("password_hash").Where("id = ?", user.ID).Scan(&hash).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("fresh-pass")))
}
