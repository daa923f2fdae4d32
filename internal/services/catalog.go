package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/utils"
	"github.com/harentsoaR/medlab-api/internal/validation"
)

type CategoryInput struct {
	Name         string `json:"name" binding:"required,max=50"`
	Icon         string `json:"icon" binding:"required"`
	Description  string `json:"description" binding:"max=500"`
	IsFeatured   bool   `json:"isFeatured"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder int    `json:"displayOrder" binding:"gte=0"`
}

type TestInput struct {
	Name           string        `json:"name" binding:"required,max=100"`
	Description    string        `json:"description" binding:"required,max=500"`
	Preparation    string        `json:"preparation" binding:"max=500"`
	TurnaroundTime string        `json:"turnaroundTime" binding:"required,max=50"`
	WhyToTake      string        `json:"whyToTake" binding:"max=500"`
	TotalCost      models.Amount `json:"totalCost" binding:"gt=0"`
	IsActive       *bool         `json:"isActive"`
}

func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

// Normalize rounds the cost to cents so the positive-cost rule sees the
// stored value.
func (in *TestInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.TotalCost = in.TotalCost.Rounded()
}

type CatalogService struct {
	categories CategoryRepository
	now        func() time.Time
}

func NewCatalogService(categories CategoryRepository) *CatalogService {
	return &CatalogService{categories: categories, now: time.Now}
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput, by *utils.Claims) (*models.Category, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.categories.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Category already exists")
	}

	now := s.now().UTC()
	author := principalID(by)
	c := &models.Category{
		ID:           primitive.NewObjectID(),
		Name:         in.Name,
		Icon:         in.Icon,
		Description:  in.Description,
		IsFeatured:   in.IsFeatured,
		IsActive:     boolOr(in.IsActive, true),
		DisplayOrder: in.DisplayOrder,
		Tests:        []models.Test{},
		CreatedBy:    author,
		UpdatedBy:    author,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Str("categoryId", c.ID.Hex()).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, p pagination.Params) ([]models.Category, pagination.Meta, error) {
	categories, total, err := s.categories.List(ctx, search, p)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	for i := range categories {
		categories[i].Normalize()
	}
	return categories, p.Meta(total), nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("categoryId", id.Hex()).Msg("category deleted")
	return nil
}

func (s *CatalogService) ListTests(ctx context.Context, categoryID primitive.ObjectID) ([]models.Test, error) {
	c, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return c.Tests, nil
}

// AddTest validates in, then appends it to the category. The name check
// against the loaded category gives the usual conflict message early; the
// store repeats it atomically.
func (s *CatalogService) AddTest(ctx context.Context, categoryID primitive.ObjectID, in TestInput, by *utils.Claims) (*models.Test, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c.HasTestNamed(in.Name) {
		return nil, apperr.Conflict("Test with this name already exists in this category")
	}

	now := s.now().UTC()
	author := principalID(by)
	t := &models.Test{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		Description:    in.Description,
		Preparation:    in.Preparation,
		TurnaroundTime: in.TurnaroundTime,
		WhyToTake:      in.WhyToTake,
		TotalCost:      in.TotalCost,
		IsActive:       boolOr(in.IsActive, true),
		CreatedBy:      author,
		UpdatedBy:      author,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.categories.AppendTest(ctx, categoryID, t); err != nil {
		return nil, err
	}
	log.Info().Str("categoryId", categoryID.Hex()).Str("testId", t.ID.Hex()).Msg("test added")
	return t, nil
}

func (s *CatalogService) DeleteTest(ctx context.Context, categoryID, testID primitive.ObjectID, by *utils.Claims) error {
	if err := s.categories.RemoveTest(ctx, categoryID, testID, principalID(by)); err != nil {
		return err
	}
	log.Info().Str("categoryId", categoryID.Hex()).Str("testId", testID.Hex()).Msg("test deleted")
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
