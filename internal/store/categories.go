package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
)

const (
	msgCategoryExists   = "Category already exists"
	msgCategoryNotFound = "Category not found"
	msgTestExists       = "Test with this name already exists in this category"
	msgTestNotFound     = "Test not found"
)

type CategoryStore struct {
	coll *mongo.Collection
}

func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{coll: db.Collection(CategoriesCollection)}
}

func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return writeError(err, msgCategoryExists, "insert category")
	}
	return nil
}

// ExistsByName looks the name up with the same collation as the unique index.
func (s *CategoryStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	opts := options.Count().SetCollation(caseInsensitive).SetLimit(1)
	n, err := s.coll.CountDocuments(ctx, bson.M{"name": strings.TrimSpace(name)}, opts)
	if err != nil {
		return false, apperr.Unexpected("count categories by name", err)
	}
	return n > 0, nil
}

// List returns one page of categories. Without a search term the newest
// categories come first; with one, results are ordered by relevance.
func (s *CategoryStore) List(ctx context.Context, search string, p pagination.Params) ([]models.Category, int64, error) {
	filter := searchFilter(search)
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Unexpected("count categories", err)
	}

	var cursor *mongo.Cursor
	if strings.TrimSpace(search) == "" {
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(p.Skip()).
			SetLimit(int64(p.Limit))
		cursor, err = s.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = s.coll.Aggregate(ctx, searchPipeline(search, p))
	}
	if err != nil {
		return nil, 0, apperr.Unexpected("query categories", err)
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, 0, apperr.Unexpected("decode categories", err)
	}
	return categories, total, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, findError(err, msgCategoryNotFound, "find category")
	}
	return &c, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Unexpected("delete category", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(msgCategoryNotFound)
	}
	return nil
}

// AppendTest pushes t onto the category's test list in a single update
// whose filter excludes categories already holding a test with the same
// name, ignoring case.
func (s *CategoryStore) AppendTest(ctx context.Context, categoryID primitive.ObjectID, t *models.Test) error {
	nameRx := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(t.Name)) + "$", Options: "i"}
	filter := bson.M{
		"_id":   categoryID,
		"tests": bson.M{"$not": bson.M{"$elemMatch": bson.M{"name": nameRx}}},
	}
	set := bson.M{"updatedAt": t.CreatedAt}
	if t.CreatedBy != nil {
		set["updatedBy"] = t.CreatedBy
	}
	update := bson.M{"$push": bson.M{"tests": t}, "$set": set}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperr.Unexpected("append test", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missingOr(ctx, categoryID, apperr.Conflict(msgTestExists))
}

// RemoveTest pulls the test with testID, keeping the order of the rest.
func (s *CategoryStore) RemoveTest(ctx context.Context, categoryID, testID primitive.ObjectID, updatedBy *primitive.ObjectID) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if updatedBy != nil {
		set["updatedBy"] = updatedBy
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": categoryID, "tests._id": testID},
		bson.M{"$pull": bson.M{"tests": bson.M{"_id": testID}}, "$set": set},
	)
	if err != nil {
		return apperr.Unexpected("remove test", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missingOr(ctx, categoryID, apperr.NotFound(msgTestNotFound))
}

// missingOr returns a category NotFound when the category is gone and
// fallback otherwise.
func (s *CategoryStore) missingOr(ctx context.Context, categoryID primitive.ObjectID, fallback error) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": categoryID}, options.Count().SetLimit(1))
	if err != nil {
		return apperr.Unexpected("count category", err)
	}
	if n == 0 {
		return apperr.NotFound(msgCategoryNotFound)
	}
	return fallback
}
