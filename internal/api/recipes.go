package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_cart.txt"

// RecipeHandler serves recipes, their markers and the shopping list.
type RecipeHandler struct {
	recipes      service.IRecipeService
	favorites    service.IMarkerService
	cart         service.IMarkerService
	shoppingList service.IShoppingListService
	createLimit  gin.HandlerFunc
	pageSize     int
}

// NewRecipeHandler creates the handler. createLimit, when non-nil, guards
// recipe creation.
func NewRecipeHandler(
	recipes service.IRecipeService,
	favorites service.IMarkerService,
	cart service.IMarkerService,
	shoppingList service.IShoppingListService,
	createLimit gin.HandlerFunc,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
		createLimit:  createLimit,
		pageSize:     pageSize,
	}
}

// maxRecipeBody fits a base64 image of storage.MaxImageBytes plus the
// rest of the recipe.
const maxRecipeBody = int64(storage.MaxImageBytes)*4/3 + 1<<20

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.createLimit != nil {
		create = append(create, h.createLimit)
	}
	create = append(create, middleware.BodyLimit(maxRecipeBody), h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", middleware.RequireAuth(), middleware.BodyLimit(maxRecipeBody), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.RequireAuth(), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.RequireAuth(), h.mark(h.favorites))
		recipes.DELETE("/:id/favorite", middleware.RequireAuth(), h.unmark(h.favorites))
		recipes.POST("/:id/shopping_cart", middleware.RequireAuth(), h.mark(h.cart))
		recipes.DELETE("/:id/shopping_cart", middleware.RequireAuth(), h.unmark(h.cart))
	}
}

// ListRecipes supports ?is_favorited, ?is_in_shopping_cart, ?author and
// repeated ?tags= slugs.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, err := parsePagination(c, h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	q := service.RecipeQuery{
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		TagSlugs:         c.QueryArray("tags"),
		Limit:            p.limit,
		Offset:           p.offset(),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, apperr.NewValidationError("author", "author must be a user id"))
			return
		}
		q.AuthorID = uint(author)
	}

	views, total, err := h.recipes.ListRecipes(c.Request.Context(), q, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, views, total))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipes.CreateRecipe(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := idParam(c, "id", "recipe")
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.recipes.GetRecipe(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := idParam(c, "id", "recipe")
	if err != nil {
		fail(c, err)
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipes.UpdateRecipe(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := idParam(c, "id", "recipe")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) mark(markers service.IMarkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id", "recipe")
		if err != nil {
			fail(c, err)
			return
		}
		view, err := markers.Add(c.Request.Context(), middleware.CurrentUser(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func (h *RecipeHandler) unmark(markers service.IMarkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id", "recipe")
		if err != nil {
			fail(c, err)
			return
		}
		if err := markers.Remove(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart returns the summed ingredients of the cart as a text
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	lines, err := h.shoppingList.BuildShoppingList(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.shoppingList.Render(lines)))
}
