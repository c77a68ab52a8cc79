package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture user.
const Password = "s3cret-pass"

var passwordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// CreateUser inserts a user with fake profile data.
func CreateUser(t *testing.T, db *gorm.DB, opts ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{
		Email:        strings.ToLower(gofakeit.Username()) + fmt.Sprint(gofakeit.Number(1000, 999999)) + "@example.com",
		Username:     strings.ToLower(gofakeit.Username()) + fmt.Sprint(gofakeit.Number(1000, 999999)),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		PasswordHash: passwordHash,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Staff marks a fixture user as staff.
func Staff(u *models.User) { u.IsStaff = true }

// CreateTag inserts a tag; the slug defaults to a unique fake word.
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	if slug == "" {
		slug = strings.ToLower(gofakeit.Noun()) + fmt.Sprint(gofakeit.Number(1000, 999999))
	}
	tag := &models.Tag{Name: strings.ToUpper(slug[:1]) + slug[1:], Color: gofakeit.HexColor(), Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateIngredient inserts an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its tag and ingredient rows.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()
	if name == "" {
		name = gofakeit.Dessert()
	}
	r := &models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		Image:       "/media/recipes/images/" + gofakeit.UUID() + ".png",
		Text:        gofakeit.Sentence(12),
		CookingTime: gofakeit.Number(1, 120),
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(r).Error)
	for _, tag := range tags {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: r.ID, TagID: tag.ID}).Error)
	}
	for _, a := range amounts {
		require.NoError(t, db.Omit("Ingredient").Create(&models.IngredientAmount{
			RecipeID:     r.ID,
			IngredientID: a.Ingredient.ID,
			Amount:       a.Amount,
		}).Error)
	}
	return r
}

// PNGDataURI is a minimal inline image upload.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgo="
