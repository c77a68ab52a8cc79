package models

import "time"

type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	Name        string             `gorm:"size:200;not null;uniqueIndex:idx_recipes_author_name,priority:2"`
	AuthorID    uint               `gorm:"not null;index;uniqueIndex:idx_recipes_author_name,priority:1"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE"`
	Image       string             `gorm:"size:255;not null"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	PubDate     time.Time          `gorm:"not null;index;autoCreateTime"`
	Ingredients []IngredientAmount `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

// IngredientAmount links a recipe to an ingredient with a quantity.
type IngredientAmount struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_ingredient_amounts_recipe_ingredient,priority:1"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_ingredient_amounts_recipe_ingredient,priority:2"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_ingredient_amounts_amount,amount >= 1"`
}

// RecipeTag is a row of the recipe_tags join table.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// IngredientTotal is one aggregated line of a shopping list.
type IngredientTotal struct {
	IngredientID    uint
	Name            string
	MeasurementUnit string
	Total           int64
}
