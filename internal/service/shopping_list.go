package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
)

// ShoppingListHeader is the first line of a rendered shopping list.
const ShoppingListHeader = "Shopping list:"

// ShoppingListLine is the summed amount of one ingredient across the cart.
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

type ShoppingListService struct {
	ingredients repository.IngredientRepository
}

func NewShoppingListService(ingredients repository.IngredientRepository) *ShoppingListService {
	return &ShoppingListService{ingredients: ingredients}
}

// BuildShoppingList sums the ingredient amounts of every recipe in the
// user's cart, one line per ingredient ordered by name.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, user *models.User) ([]ShoppingListLine, error) {
	totals, err := s.ingredients.ShoppingListTotals(ctx, user.ID)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	lines := make([]ShoppingListLine, len(totals))
	for i, t := range totals {
		lines[i] = ShoppingListLine{Name: capitalize(t.Name), MeasurementUnit: t.MeasurementUnit, Total: t.Total}
	}
	return lines, nil
}

func (s *ShoppingListService) Render(lines []ShoppingListLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteByte('\n')
	for _, l := range lines {
		fmt.Fprintf(&b, "%s: %d %s\n", l.Name, l.Total, l.MeasurementUnit)
	}
	return b.String()
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
