package store

import (
	"context"
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
	msgOrderExists   = "Order number already exists"
	msgOrderNotFound = "Order not found"
)

type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(OrdersCollection)}
}

func (s *OrderStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Unexpected("count orders", err)
	}
	return n, nil
}

func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return writeError(err, msgOrderExists, "insert order")
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, findError(err, msgOrderNotFound, "find order")
	}
	return &o, nil
}

func (s *OrderStore) List(ctx context.Context, f models.OrderFilter, p pagination.Params) ([]models.Order, int64, error) {
	filter := bson.M{}
	if f.PatientID != nil {
		filter["patientId"] = *f.PatientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Unexpected("count orders", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Unexpected("query orders", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, apperr.Unexpected("decode orders", err)
	}
	return orders, total, nil
}

// UpdateStatus sets the lifecycle fields and returns the updated order.
// The order number is never part of the update.
func (s *OrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, u models.OrderStatusUpdate, at time.Time) (*models.Order, error) {
	set := bson.M{"status": u.Status, "updatedAt": at}
	if u.Payment != "" {
		set["payment"] = u.Payment
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		return nil, findError(err, msgOrderNotFound, "update order status")
	}
	return &o, nil
}
