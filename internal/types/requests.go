package types

// IngredientAmountRequest references an ingredient by id with a quantity.
type IngredientAmountRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update requests. Tags and
// ingredients are checked by the recipe service so that their errors carry
// the domain kinds.
type RecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=150"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=150"`
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor"`
	Slug  string `json:"slug" binding:"required,max=200,slug"`
}

type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}
