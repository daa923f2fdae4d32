package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Laboratory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`   // unique, lowercase
	Password  string             `bson:"password" json:"-"`    // bcrypt hash
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
