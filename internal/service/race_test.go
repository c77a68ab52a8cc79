package service

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The wrappers below make a pre-check miss a row that a concurrent request
// already wrote, so the insert is the first to notice.

type staleMarkers struct {
	repository.MarkerRepository
}

func (staleMarkers) Exists(context.Context, uint, uint) (bool, error) { return false, nil }

type staleSubscriptions struct {
	repository.SubscriptionRepository
}

func (staleSubscriptions) Exists(context.Context, uint, uint) (bool, error) { return false, nil }

// selfSubscriptions writes the follower as its own author.
type selfSubscriptions struct {
	staleSubscriptions
}

func (s selfSubscriptions) Create(ctx context.Context, userID, _ uint) error {
	return s.SubscriptionRepository.Create(ctx, userID, userID)
}

type staleRecipeNames struct {
	repository.RecipeRepository
}

func (staleRecipeNames) NameTaken(context.Context, uint, string, uint) (bool, error) { return false, nil }

type mockMarkers struct {
	repository.MarkerRepository
	mock.Mock
}

func (m *mockMarkers) Kind() models.MarkerKind { return models.FavoriteMarker }

func (m *mockMarkers) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMarkers) Add(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func TestMarkerAddLosesRace(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db)
	recipe := testutil.CreateRecipe(t, s.db, user, "Soup", nil)
	recipes := repository.NewRecipeRepository(s.db)

	_, err := s.favorites.Add(ctx, user, recipe.ID)
	require.NoError(t, err)

	racing := NewMarkerService(staleMarkers{repository.NewMarkerRepository(s.db, models.FavoriteMarker)}, recipes, testutil.DiscardLogger())
	_, err = racing.Add(ctx, user, recipe.ID)
	assertKind(t, err, apperr.AlreadyExists)

	markers := &mockMarkers{}
	markers.On("Exists", mock.Anything, user.ID, recipe.ID).Return(false, nil)
	markers.On("Add", mock.Anything, user.ID, recipe.ID).Return(gorm.ErrDuplicatedKey)
	_, err = NewMarkerService(markers, recipes, testutil.DiscardLogger()).Add(ctx, user, recipe.ID)
	assertKind(t, err, apperr.AlreadyExists)
	markers.AssertExpectations(t)
}

func TestFollowLosesRace(t *testing.T) {
	s := newServices(t, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db)
	author := testutil.CreateUser(t, s.db)
	users := repository.NewUserRepository(s.db)
	subs := repository.NewSubscriptionRepository(s.db)
	projector := NewProjector(
		repository.NewRecipeRepository(s.db),
		repository.NewMarkerRepository(s.db, models.FavoriteMarker),
		repository.NewMarkerRepository(s.db, models.ShoppingCartMarker),
		subs,
	)

	_, err := s.subscriptions.Follow(ctx, user, author.ID, 0)
	require.NoError(t, err)

	racing := NewSubscriptionService(staleSubscriptions{subs}, users, projector, testutil.DiscardLogger())
	_, err = racing.Follow(ctx, user, author.ID, 0)
	assertKind(t, err, apperr.AlreadyFollowing)

	self := NewSubscriptionService(selfSubscriptions{staleSubscriptions{subs}}, users, projector, testutil.DiscardLogger())
	_, err = self.Follow(ctx, author, user.ID, 0)
	assertKind(t, err, apperr.SelfReference)
}

func TestCreateRecipeLosesNameRace(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	_, err := f.recipes.CreateRecipe(ctx, f.author, f.request("Pie"))
	require.NoError(t, err)

	mediaRoot := t.TempDir()
	racing := NewRecipeService(
		staleRecipeNames{repository.NewRecipeRepository(f.db)},
		repository.NewTagRepository(f.db),
		repository.NewIngredientRepository(f.db),
		storage.NewLocalStore(mediaRoot, "/media/"),
		f.recipes.projector,
		testutil.DiscardLogger(),
	)
	_, err = racing.CreateRecipe(ctx, f.author, f.request("Pie"))
	assertKind(t, err, apperr.DuplicateEntity)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "name", appErr.Field)

	var files []string
	require.NoError(t, filepath.WalkDir(mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return err
	}))
	assert.Empty(t, files, "the upload of a failed write is removed")
}
