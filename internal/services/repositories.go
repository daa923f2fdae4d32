package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/utils"
)

// The repository interfaces are satisfied by the MongoDB stores in
// internal/store.

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, search string, p pagination.Params) ([]models.Category, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendTest(ctx context.Context, categoryID primitive.ObjectID, t *models.Test) error
	RemoveTest(ctx context.Context, categoryID, testID primitive.ObjectID, updatedBy *primitive.ObjectID) error
}

type OrderRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter, p pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, u models.OrderStatusUpdate, at time.Time) (*models.Order, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	GetByPhone(ctx context.Context, phone string) (*models.Patient, error)
	Update(ctx context.Context, p *models.Patient) error
}

type LaboratoryRepository interface {
	Create(ctx context.Context, lab *models.Laboratory) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Laboratory, error)
	GetByEmail(ctx context.Context, email string) (*models.Laboratory, error)
	Update(ctx context.Context, lab *models.Laboratory) error
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(principalID string, opts utils.IssueOptions) (string, error)
}

// Hasher hashes and compares passwords.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, password, hash string) (bool, error)
}

// principalID returns the object id carried by claims, or nil when the
// request is anonymous or the id is not an object id.
func principalID(claims *utils.Claims) *primitive.ObjectID {
	if claims == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil
	}
	return &id
}
