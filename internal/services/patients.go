package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/utils"
	"github.com/harentsoaR/medlab-api/internal/validation"
)

type PatientRegisterInput struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Phone string `json:"phone" binding:"required,len=10,numeric"`
}

type PatientLoginInput struct {
	Phone string `json:"phone" binding:"required,len=10,numeric"`
}

// PatientUpdateInput holds the editable profile fields. Nil fields are
// left unchanged; an empty list clears the stored one.
type PatientUpdateInput struct {
	Name              *string                   `json:"name" binding:"omitempty,min=1,max=100"`
	Email             *string                   `json:"email" binding:"omitempty,email"`
	Gender            *string                   `json:"gender" binding:"omitempty,oneof=male female other prefer-not-to-say"`
	DateOfBirth       *time.Time                `json:"dateOfBirth"`
	Addresses         []models.Address          `json:"addresses" binding:"omitempty,dive"`
	EmergencyContacts []models.EmergencyContact `json:"emergencyContacts" binding:"omitempty,dive"`
}

func (in *PatientRegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in *PatientLoginInput) Normalize() {
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in *PatientUpdateInput) Normalize() {
	in.Name = mapOptional(in.Name, strings.TrimSpace)
	in.Email = mapOptional(in.Email, normalizeEmail)
}

// mapOptional applies fn to a present value.
func mapOptional(v *string, fn func(string) string) *string {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}

type PatientAuth struct {
	Token   string          `json:"token"`
	Patient *models.Patient `json:"patient"`
}

type PatientService struct {
	patients PatientRepository
	tokens   TokenIssuer
	ttl      time.Duration
	now      func() time.Time
}

func NewPatientService(patients PatientRepository, tokens TokenIssuer, ttl time.Duration) *PatientService {
	return &PatientService{patients: patients, tokens: tokens, ttl: ttl, now: time.Now}
}

func (s *PatientService) Register(ctx context.Context, in PatientRegisterInput) (*PatientAuth, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.patients.GetByPhone(ctx, in.Phone)
	switch {
	case err == nil:
		return nil, apperr.Conflict("An account with this phone number already exists")
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Patient{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Normalize()
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("patientId", p.ID.Hex()).Msg("patient registered")
	return s.authenticate(p)
}

func (s *PatientService) Login(ctx context.Context, in PatientLoginInput) (*PatientAuth, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByPhone(ctx, in.Phone)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return s.authenticate(p)
}

func (s *PatientService) authenticate(p *models.Patient) (*PatientAuth, error) {
	token, err := s.tokens.Issue(p.ID.Hex(), utils.IssueOptions{Role: utils.RolePatient, TTL: s.ttl})
	if err != nil {
		return nil, apperr.Unexpected("issue patient token", err)
	}
	return &PatientAuth{Token: token, Patient: p}, nil
}

func (s *PatientService) Profile(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

func (s *PatientService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in PatientUpdateInput) (*models.Patient, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if in.Addresses != nil {
		p.Addresses = in.Addresses
	}
	if in.EmergencyContacts != nil {
		p.EmergencyContacts = in.EmergencyContacts
	}
	p.Normalize()
	p.UpdatedAt = s.now().UTC()

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
