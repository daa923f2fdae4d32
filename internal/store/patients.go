package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
)

const (
	msgPhoneExists      = "An account with this phone number already exists"
	msgPatientNotFound  = "Patient not found"
	msgLaboratoryExists = "An account with this email already exists"
	msgLabNotFound      = "Laboratory not found"
)

type PatientStore struct {
	coll *mongo.Collection
}

func NewPatientStore(db *mongo.Database) *PatientStore {
	return &PatientStore{coll: db.Collection(PatientsCollection)}
}

func (s *PatientStore) Create(ctx context.Context, p *models.Patient) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return writeError(err, msgPhoneExists, "insert patient")
	}
	return nil
}

func (s *PatientStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *PatientStore) GetByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	return s.findOne(ctx, bson.M{"phone": phone})
}

func (s *PatientStore) findOne(ctx context.Context, filter bson.M) (*models.Patient, error) {
	var p models.Patient
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, findError(err, msgPatientNotFound, "find patient")
	}
	return &p, nil
}

// Update writes the profile fields. Phone is the natural key and is not
// part of the update.
func (s *PatientStore) Update(ctx context.Context, p *models.Patient) error {
	set := bson.M{
		"name":              p.Name,
		"email":             p.Email,
		"gender":            p.Gender,
		"dateOfBirth":       p.DateOfBirth,
		"addresses":         p.Addresses,
		"emergencyContacts": p.EmergencyContacts,
		"updatedAt":         p.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		return apperr.Unexpected("update patient", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(msgPatientNotFound)
	}
	return nil
}

type LaboratoryStore struct {
	coll *mongo.Collection
}

func NewLaboratoryStore(db *mongo.Database) *LaboratoryStore {
	return &LaboratoryStore{coll: db.Collection(LaboratoriesCollection)}
}

func (s *LaboratoryStore) Create(ctx context.Context, lab *models.Laboratory) error {
	if _, err := s.coll.InsertOne(ctx, lab); err != nil {
		return writeError(err, msgLaboratoryExists, "insert laboratory")
	}
	return nil
}

func (s *LaboratoryStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Laboratory, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *LaboratoryStore) GetByEmail(ctx context.Context, email string) (*models.Laboratory, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *LaboratoryStore) findOne(ctx context.Context, filter bson.M) (*models.Laboratory, error) {
	var lab models.Laboratory
	if err := s.coll.FindOne(ctx, filter).Decode(&lab); err != nil {
		return nil, findError(err, msgLabNotFound, "find laboratory")
	}
	return &lab, nil
}

func (s *LaboratoryStore) Update(ctx context.Context, lab *models.Laboratory) error {
	set := bson.M{
		"name":      lab.Name,
		"email":     lab.Email,
		"password":  lab.Password,
		"updatedAt": lab.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": lab.ID}, bson.M{"$set": set})
	if err != nil {
		return writeError(err, msgLaboratoryExists, "update laboratory")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(msgLabNotFound)
	}
	return nil
}
