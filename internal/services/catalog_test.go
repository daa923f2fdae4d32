package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/services/servicetest"
	"github.com/harentsoaR/medlab-api/internal/utils"
)

func newCatalog(t *testing.T) (*CatalogService, *servicetest.CategoryRepo, *models.Category) {
	t.Helper()
	repo := servicetest.NewCategoryRepo()
	svc := NewCatalogService(repo)
	c, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Blood Tests", Icon: "flask"}, nil)
	require.NoError(t, err)
	return svc, repo, c
}

func validTest(name string) TestInput {
	return TestInput{
		Name:           name,
		Description:    "Complete blood count",
		TurnaroundTime: "24h",
		TotalCost:      499.995,
	}
}

func TestCreateCategory_Defaults(t *testing.T) {
	_, _, c := newCatalog(t)

	assert.False(t, c.ID.IsZero())
	assert.Equal(t, "Blood Tests", c.Name)
	assert.True(t, c.IsActive)
	assert.False(t, c.IsFeatured)
	assert.Equal(t, 0, c.DisplayOrder)
	assert.NotNil(t, c.Tests)
	assert.Empty(t, c.Tests)
	assert.Nil(t, c.CreatedBy)
}

func TestCreateCategory_DuplicateNameAnyCase(t *testing.T) {
	svc, repo, _ := newCatalog(t)

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "blood TESTS", Icon: "drop"}, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "Category already exists")
	assert.Equal(t, 1, repo.Len())
}

func TestCreateCategory_ValidationListsEveryField(t *testing.T) {
	svc := NewCatalogService(servicetest.NewCategoryRepo())

	_, err := svc.CreateCategory(context.Background(), CategoryInput{DisplayOrder: -1}, nil)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["icon"])
	assert.True(t, fields["displayOrder"])
}

func TestCreateCategory_StampsAuthor(t *testing.T) {
	svc := NewCatalogService(servicetest.NewCategoryRepo())
	author := primitive.NewObjectID()

	c, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Thyroid", Icon: "t"}, &utils.Claims{UserID: author.Hex()})
	require.NoError(t, err)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, author, *c.CreatedBy)
	assert.Equal(t, author, *c.UpdatedBy)
}

func TestAddTest_RoundsCost(t *testing.T) {
	svc, repo, c := newCatalog(t)

	test, err := svc.AddTest(context.Background(), c.ID, validTest("CBC"), nil)
	require.NoError(t, err)
	assert.False(t, test.ID.IsZero())
	assert.Equal(t, models.Amount(500), test.TotalCost)
	assert.True(t, test.IsActive)

	in := validTest("Lipid")
	in.TotalCost = 19.999
	test, err = svc.AddTest(context.Background(), c.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(20), test.TotalCost)
	assert.Len(t, repo.Tests(c.ID), 2)
}

func TestAddTest_RejectsNonPositiveCost(t *testing.T) {
	svc, repo, c := newCatalog(t)

	in := validTest("CBC")
	for _, cost := range []models.Amount{-1, 0, 0.004} {
		in.TotalCost = cost
		_, err := svc.AddTest(context.Background(), c.ID, in, nil)
		require.Error(t, err, "cost %v", cost)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	}
	assert.Empty(t, repo.Tests(c.ID))

	in.TotalCost = 0.005
	test, err := svc.AddTest(context.Background(), c.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(0.01), test.TotalCost)
}

func TestAddTest_ValidatesBeforeLookup(t *testing.T) {
	svc := NewCatalogService(servicetest.NewCategoryRepo())

	_, err := svc.AddTest(context.Background(), primitive.NewObjectID(), TestInput{}, nil)
	require.Error(t, err)
	appErr, _ := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Fields, 4)
}

func TestAddTest_DuplicateNameAnyCase(t *testing.T) {
	svc, repo, c := newCatalog(t)

	_, err := svc.AddTest(context.Background(), c.ID, validTest("CBC"), nil)
	require.NoError(t, err)

	_, err = svc.AddTest(context.Background(), c.ID, validTest("  cbc "), nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, repo.Tests(c.ID), 1)
}

func TestAddTest_MissingCategory(t *testing.T) {
	svc, _, _ := newCatalog(t)

	_, err := svc.AddTest(context.Background(), primitive.NewObjectID(), validTest("CBC"), nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteTest_PreservesOrder(t *testing.T) {
	svc, _, c := newCatalog(t)
	ctx := context.Background()

	var ids []primitive.ObjectID
	for _, name := range []string{"A", "B", "C"} {
		test, err := svc.AddTest(ctx, c.ID, validTest(name), nil)
		require.NoError(t, err)
		ids = append(ids, test.ID)
	}

	require.NoError(t, svc.DeleteTest(ctx, c.ID, ids[1], nil))

	tests, err := svc.ListTests(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, "A", tests[0].Name)
	assert.Equal(t, "C", tests[1].Name)
}

func TestDeleteTest_UnknownTest(t *testing.T) {
	svc, _, c := newCatalog(t)
	ctx := context.Background()
	_, err := svc.AddTest(ctx, c.ID, validTest("CBC"), nil)
	require.NoError(t, err)

	err = svc.DeleteTest(ctx, c.ID, primitive.NewObjectID(), nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	tests, err := svc.ListTests(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, tests, 1)
}

func TestListTests_EmptyCategory(t *testing.T) {
	svc, _, c := newCatalog(t)

	tests, err := svc.ListTests(context.Background(), c.ID)
	require.NoError(t, err)
	assert.NotNil(t, tests)
	assert.Empty(t, tests)

	_, err = svc.ListTests(context.Background(), primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListCategories_Meta(t *testing.T) {
	svc, _, _ := newCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"Thyroid", "Diabetes"} {
		_, err := svc.CreateCategory(ctx, CategoryInput{Name: name, Icon: "i"}, nil)
		require.NoError(t, err)
	}

	categories, meta, err := svc.ListCategories(ctx, "", pagination.New(1, 2))
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, pagination.Meta{Total: 3, Page: 1, Limit: 2, Pages: 2}, meta)

	categories, meta, err = svc.ListCategories(ctx, "nothing-matches", pagination.New(1, 10))
	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.Equal(t, int64(0), meta.Total)
}

func TestListCategories_RanksByMatchedField(t *testing.T) {
	svc, _, _ := newCatalog(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		at = at.Add(time.Minute)
		return at
	}

	_, err := svc.CreateCategory(ctx, CategoryInput{Name: "Lipid Clinic", Icon: "i"}, nil)
	require.NoError(t, err)
	cardiac, err := svc.CreateCategory(ctx, CategoryInput{Name: "Cardiac", Icon: "i"}, nil)
	require.NoError(t, err)
	_, err = svc.AddTest(ctx, cardiac.ID, validTest("Lipid Profile"), nil)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Wellness", Icon: "i", Description: "Yearly lipid screening"}, nil)
	require.NoError(t, err)

	names := func(categories []models.Category) []string {
		out := make([]string, len(categories))
		for i, c := range categories {
			out[i] = c.Name
		}
		return out
	}

	categories, meta, err := svc.ListCategories(ctx, "LIPID", pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lipid Clinic", "Cardiac", "Wellness"}, names(categories))
	assert.Equal(t, int64(3), meta.Total)

	categories, _, err = svc.ListCategories(ctx, "prof", pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiac"}, names(categories))
}

func TestDeleteCategory(t *testing.T) {
	svc, _, c := newCatalog(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	_, err := svc.GetCategory(ctx, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.DeleteCategory(ctx, c.ID), apperr.KindNotFound))
}
