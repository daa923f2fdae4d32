package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Phone             string             `bson:"phone" json:"phone"` // unique
	Email             string             `bson:"email,omitempty" json:"email,omitempty"`
	Gender            string             `bson:"gender,omitempty" json:"gender,omitempty"`
	DateOfBirth       *time.Time         `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Addresses         []Address          `bson:"addresses" json:"addresses"`
	EmergencyContacts []EmergencyContact `bson:"emergencyContacts" json:"emergencyContacts"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type EmergencyContact struct {
	Name         string `bson:"name" json:"name" binding:"required,max=100"`
	Relationship string `bson:"relationship" json:"relationship" binding:"max=50"`
	Phone        string `bson:"phone" json:"phone" binding:"required,len=10,numeric"`
}

// Normalize replaces absent nested lists with empty ones so clients always
// receive arrays.
func (p *Patient) Normalize() {
	if p.Addresses == nil {
		p.Addresses = []Address{}
	}
	if p.EmergencyContacts == nil {
		p.EmergencyContacts = []EmergencyContact{}
	}
}
