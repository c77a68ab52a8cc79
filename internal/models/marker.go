package models

import "time"

// MarkerKind selects one of the per-user recipe marker tables.
type MarkerKind int

const (
	FavoriteMarker MarkerKind = iota
	ShoppingCartMarker
)

// Table returns the junction table backing the marker kind.
func (k MarkerKind) Table() string {
	if k == ShoppingCartMarker {
		return "shopping_cart_entries"
	}
	return "favorites"
}

func (k MarkerKind) String() string {
	if k == ShoppingCartMarker {
		return "shopping cart"
	}
	return "favorites"
}

// New returns a row of the marker's table for (userID, recipeID).
func (k MarkerKind) New(userID, recipeID uint) any {
	if k == ShoppingCartMarker {
		return &ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	}
	return &Favorite{UserID: userID, RecipeID: recipeID}
}

type Favorite struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorites_user_recipe,priority:1"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_favorites_user_recipe,priority:2"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type ShoppingCartEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_shopping_cart_entries_user_recipe,priority:1"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	RecipeID  uint   `gorm:"not null;index;uniqueIndex:idx_shopping_cart_entries_user_recipe,priority:2"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// All lists the models in migration order.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&IngredientAmount{},
		&Favorite{},
		&ShoppingCartEntry{},
		&Subscription{},
	}
}
