package types

import "github.com/pageza/foodgram/backend/internal/models"

// RecipeIngredient is an ingredient line of a recipe view.
type RecipeIngredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full read representation of a recipe for one viewer.
type RecipeView struct {
	ID               uint               `json:"id"`
	Tags             []models.Tag       `json:"tags"`
	Author           UserView           `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	FavoritesCount   *int64             `json:"favorites_count,omitempty"`
}

// ShortRecipeView is returned by marker operations and embedded in
// subscription views.
type ShortRecipeView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// NewShortRecipeView projects a recipe onto its short view.
func NewShortRecipeView(r *models.Recipe) ShortRecipeView {
	return ShortRecipeView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}
