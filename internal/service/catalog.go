package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const maxCatalogLength = 200

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s is a URL slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// CatalogService serves the tag and ingredient reference data.
type CatalogService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	cache       TagCache
	validate    *validator.Validate
	log         *slog.Logger
}

// NewCatalogService creates a catalog service. cache may be nil.
func NewCatalogService(tags repository.TagRepository, ingredients repository.IngredientRepository, cache TagCache, log *slog.Logger) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients, cache: cache, validate: validator.New(), log: log}
}

// ListTags returns every tag ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if s.cache != nil {
		tags, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "tag cache read failed", "error", err)
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, tags); err != nil {
			s.log.WarnContext(ctx, "tag cache write failed", "error", err)
		}
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tags.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("tag", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	if err := checkCatalogName("name", req.Name); err != nil {
		return nil, err
	}
	if err := s.validate.Var(req.Color, "required,hexcolor,max=7"); err != nil {
		return nil, apperr.NewValidationError("color", "color must be a hex color such as #49B64E")
	}
	if !ValidSlug(req.Slug) || len(req.Slug) > maxCatalogLength {
		return nil, apperr.NewValidationError("slug", "slug may contain only letters, digits, hyphens and underscores")
	}

	tag := &models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, apperr.FromDB(err, apperr.DuplicateEntity, "a tag with this slug already exists")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WarnContext(ctx, "tag cache invalidation failed", "error", err)
		}
	}
	return tag, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	ingredients, err := s.ingredients.List(ctx, namePrefix)
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := s.ingredients.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFoundError("ingredient", id)
	}
	if err != nil {
		return nil, apperr.NewInternalError(err)
	}
	return ingredient, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	if err := checkCatalogName("name", req.Name); err != nil {
		return nil, err
	}
	if err := checkCatalogName("measurement_unit", req.MeasurementUnit); err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.ingredients.Create(ctx, ingredient); err != nil {
		return nil, apperr.FromDB(err, apperr.DuplicateEntity, "this ingredient already exists with that measurement unit")
	}
	return ingredient, nil
}

func checkCatalogName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > maxCatalogLength {
		return apperr.NewValidationError(field, field+" must be at most 200 characters")
	}
	return nil
}
