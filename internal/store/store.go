// Package store holds the MongoDB repositories. Unique indexes are the
// source of truth for uniqueness; duplicate-key errors surface as
// apperr conflicts.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/medlab-api/internal/apperr"
)

const (
	PatientsCollection     = "patients"
	LaboratoriesCollection = "laboratories"
	CategoriesCollection   = "categories"
	OrdersCollection       = "orders"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

// Pinger reports database reachability for the health endpoint.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// writeError maps a write failure to the application taxonomy.
func writeError(err error, conflictMessage, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict(conflictMessage)
	}
	return apperr.Unexpected(op, err)
}

// findError maps a single-document read failure.
func findError(err error, notFoundMessage, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFoundMessage)
	}
	return apperr.Unexpected(op, err)
}
