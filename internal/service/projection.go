package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Projector builds read views for a viewer. A nil viewer is anonymous and
// sees every per-viewer flag as false.
type Projector struct {
	recipes       repository.RecipeRepository
	favorites     repository.MarkerRepository
	cart          repository.MarkerRepository
	subscriptions repository.SubscriptionRepository
}

func NewProjector(
	recipes repository.RecipeRepository,
	favorites repository.MarkerRepository,
	cart repository.MarkerRepository,
	subscriptions repository.SubscriptionRepository,
) *Projector {
	return &Projector{recipes: recipes, favorites: favorites, cart: cart, subscriptions: subscriptions}
}

// Users projects users, resolving is_subscribed with one query.
func (p *Projector) Users(ctx context.Context, users []models.User, viewer *models.User) ([]types.UserView, error) {
	followed, err := p.followedSet(ctx, users, viewer)
	if err != nil {
		return nil, err
	}
	views := make([]types.UserView, len(users))
	for i := range users {
		views[i] = types.NewUserView(&users[i], followed[users[i].ID])
	}
	return views, nil
}

func (p *Projector) User(ctx context.Context, user *models.User, viewer *models.User) (types.UserView, error) {
	views, err := p.Users(ctx, []models.User{*user}, viewer)
	if err != nil {
		return types.UserView{}, err
	}
	return views[0], nil
}

func (p *Projector) followedSet(ctx context.Context, users []models.User, viewer *models.User) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if viewer == nil {
		return set, nil
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		if u.ID != viewer.ID {
			ids = append(ids, u.ID)
		}
	}
	followed, err := p.subscriptions.FollowedAmong(ctx, viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		set[id] = true
	}
	return set, nil
}

// Recipes projects recipes loaded with their details.
func (p *Projector) Recipes(ctx context.Context, recipes []models.Recipe, viewer *models.User) ([]types.RecipeView, error) {
	authors := make([]models.User, 0, len(recipes))
	seen := make(map[uint]bool)
	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authors = append(authors, r.Author)
		}
	}

	followed, err := p.followedSet(ctx, authors, viewer)
	if err != nil {
		return nil, err
	}
	favorited, err := p.markedSet(ctx, p.favorites, ids, viewer)
	if err != nil {
		return nil, err
	}
	inCart, err := p.markedSet(ctx, p.cart, ids, viewer)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		ingredients := make([]types.RecipeIngredient, len(r.Ingredients))
		for j, a := range r.Ingredients {
			ingredients[j] = types.RecipeIngredient{
				ID:              a.IngredientID,
				Name:            a.Ingredient.Name,
				MeasurementUnit: a.Ingredient.MeasurementUnit,
				Amount:          a.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		views[i] = types.RecipeView{
			ID:               r.ID,
			Tags:             tags,
			Author:           types.NewUserView(&r.Author, followed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return views, nil
}

// Recipe projects a single recipe and attaches its favorites count.
func (p *Projector) Recipe(ctx context.Context, recipe *models.Recipe, viewer *models.User) (*types.RecipeView, error) {
	views, err := p.Recipes(ctx, []models.Recipe{*recipe}, viewer)
	if err != nil {
		return nil, err
	}
	count, err := p.favorites.CountForRecipe(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	views[0].FavoritesCount = &count
	return &views[0], nil
}

func (p *Projector) markedSet(ctx context.Context, repo repository.MarkerRepository, ids []uint, viewer *models.User) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if viewer == nil || len(ids) == 0 {
		return set, nil
	}
	marked, err := repo.MarkedRecipeIDs(ctx, viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range marked {
		set[id] = true
	}
	return set, nil
}

// Subscriptions projects followed authors with up to recipesLimit of their
// newest recipes; recipesLimit <= 0 includes all of them.
func (p *Projector) Subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := p.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.SubscriptionView, len(authors))
	for i := range authors {
		recipes, err := p.recipes.ListByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		short := make([]types.ShortRecipeView, len(recipes))
		for j := range recipes {
			short[j] = types.NewShortRecipeView(&recipes[j])
		}
		views[i] = types.SubscriptionView{
			UserView:     types.NewUserView(&authors[i], true),
			Recipes:      short,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return views, nil
}
