package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const userKey = "user"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// UserLoader resolves the user a token was issued for.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate resolves the bearer token, if any, to a user. Requests
// without an Authorization header continue anonymously; a malformed or
// invalid token is rejected.
func Authenticate(validator TokenValidator, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, apperr.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			abort(c, apperr.NewUnauthorizedError("invalid or expired token"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, apperr.NewUnauthorizedError("user not found"))
			return
		}
		if err != nil {
			abort(c, apperr.NewInternalError(err))
			return
		}

		c.Set(userKey, user)
		c.Request = c.Request.WithContext(logging.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abort(c, apperr.NewUnauthorizedError("authentication credentials were not provided"))
			return
		}
		c.Next()
	}
}

// RequireStaff rejects requests not made by a staff user.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, apperr.NewUnauthorizedError("authentication credentials were not provided"))
			return
		}
		if !user.IsStaff {
			abort(c, apperr.NewForbiddenError("staff access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
