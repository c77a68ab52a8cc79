package types

import "github.com/pageza/foodgram/backend/internal/models"

// UserView is the public representation of a user for one viewer.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// CreatedUserView is returned on registration.
type CreatedUserView struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SubscriptionView describes a followed author with a sample of recipes.
type SubscriptionView struct {
	UserView
	Recipes      []ShortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// NewUserView projects a user with a precomputed subscription flag.
func NewUserView(u *models.User, subscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func NewCreatedUserView(u *models.User) CreatedUserView {
	return CreatedUserView{Email: u.Email, ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}
