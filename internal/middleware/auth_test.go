package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if claims := args.Get(0); claims != nil {
		return claims.(*types.TokenClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func newAuthRouter(v TokenValidator, u UserLoader, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(testutil.DiscardLogger()), Authenticate(v, u))
	handlers := append(guards, func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/", handlers...)
	return r
}

func request(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	v := &mockValidator{}
	u := &mockUsers{}
	v.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: 1}, nil)
	v.On("ValidateToken", "ghost").Return(&types.TokenClaims{UserID: 2}, nil)
	v.On("ValidateToken", "bad").Return(nil, errors.New("signature is invalid"))
	u.On("FindByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "chef"}, nil)
	u.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)

	r := newAuthRouter(v, u)

	w := request(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = request(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef", w.Body.String())

	for _, header := range []string{"Bearer bad", "Bearer ghost", "Token good", "Bearer"} {
		w = request(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
	v.AssertExpectations(t)
}

func TestRequireAuthAndStaff(t *testing.T) {
	v := &mockValidator{}
	u := &mockUsers{}
	v.On("ValidateToken", "user").Return(&types.TokenClaims{UserID: 1}, nil)
	v.On("ValidateToken", "staff").Return(&types.TokenClaims{UserID: 2}, nil)
	u.On("FindByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "chef"}, nil)
	u.On("FindByID", mock.Anything, uint(2)).Return(&models.User{ID: 2, Username: "admin", IsStaff: true}, nil)

	authed := newAuthRouter(v, u, RequireAuth())
	assert.Equal(t, http.StatusUnauthorized, request(authed, "").Code)
	assert.Equal(t, http.StatusOK, request(authed, "Bearer user").Code)

	staff := newAuthRouter(v, u, RequireStaff())
	assert.Equal(t, http.StatusUnauthorized, request(staff, "").Code)
	assert.Equal(t, http.StatusForbidden, request(staff, "Bearer user").Code)
	w := request(staff, "Bearer staff")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
