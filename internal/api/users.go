package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts and subscriptions.
type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	pageSize      int
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, pageSize int) *UserHandler {
	return &UserHandler{users: users, subscriptions: subscriptions, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/me", middleware.RequireAuth(), h.Me)
		users.POST("/set_password", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions", middleware.RequireAuth(), h.ListSubscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p, err := parsePagination(c, h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	views, total, err := h.users.ListUsers(c.Request.Context(), middleware.CurrentUser(c), p.limit, p.offset())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, views, total))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewCreatedUserView(user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := idParam(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.users.GetUser(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, types.NewUserView(user, false))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), middleware.CurrentUser(c), &req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	p, err := parsePagination(c, h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	recipesLimit, err := optionalInt(c, "recipes_limit")
	if err != nil {
		fail(c, err)
		return
	}
	views, total, err := h.subscriptions.ListFollowing(c.Request.Context(), middleware.CurrentUser(c), p.limit, p.offset(), recipesLimit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, views, total))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := idParam(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}
	recipesLimit, err := optionalInt(c, "recipes_limit")
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.subscriptions.Follow(c.Request.Context(), middleware.CurrentUser(c), id, recipesLimit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := idParam(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.subscriptions.Unfollow(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
