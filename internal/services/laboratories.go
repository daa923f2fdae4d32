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

const msgBadLabCredentials = "Invalid email or password"

type LabRegisterInput struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type LabLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LabUpdateInput holds the editable laboratory fields. A new password
// must be repeated in confirmPassword.
type LabUpdateInput struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Password        *string `json:"password" binding:"omitempty,min=8"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (in *LabRegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
}

func (in *LabLoginInput) Normalize() {
	in.Email = normalizeEmail(in.Email)
}

func (in *LabUpdateInput) Normalize() {
	in.Name = mapOptional(in.Name, strings.TrimSpace)
	in.Email = mapOptional(in.Email, normalizeEmail)
}

type LabAuth struct {
	Token      string             `json:"token"`
	Laboratory *models.Laboratory `json:"laboratory"`
}

type LaboratoryService struct {
	labs   LaboratoryRepository
	hasher Hasher
	tokens TokenIssuer
	ttl    time.Duration
	now    func() time.Time
}

func NewLaboratoryService(labs LaboratoryRepository, hasher Hasher, tokens TokenIssuer, ttl time.Duration) *LaboratoryService {
	return &LaboratoryService{labs: labs, hasher: hasher, tokens: tokens, ttl: ttl, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *LaboratoryService) Register(ctx context.Context, in LabRegisterInput) (*LabAuth, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.labs.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("An account with this email already exists")
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, apperr.Unexpected("hash laboratory password", err)
	}

	now := s.now().UTC()
	lab := &models.Laboratory{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.labs.Create(ctx, lab); err != nil {
		return nil, err
	}
	log.Info().Str("labId", lab.ID.Hex()).Msg("laboratory registered")
	return s.authenticate(lab)
}

// Login reports an unknown email and a wrong password the same way.
func (s *LaboratoryService) Login(ctx context.Context, in LabLoginInput) (*LabAuth, error) {
	in.Normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	lab, err := s.labs.GetByEmail(ctx, in.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized(msgBadLabCredentials)
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Compare(ctx, in.Password, lab.Password)
	if err != nil {
		return nil, apperr.Unexpected("compare laboratory password", err)
	}
	if !ok {
		return nil, apperr.Unauthorized(msgBadLabCredentials)
	}
	return s.authenticate(lab)
}

func (s *LaboratoryService) authenticate(lab *models.Laboratory) (*LabAuth, error) {
	id := lab.ID.Hex()
	token, err := s.tokens.Issue(id, utils.IssueOptions{Role: utils.RoleLab, LabID: id, TTL: s.ttl})
	if err != nil {
		return nil, apperr.Unexpected("issue laboratory token", err)
	}
	return &LabAuth{Token: token, Laboratory: lab}, nil
}

func (s *LaboratoryService) Profile(ctx context.Context, id primitive.ObjectID) (*models.Laboratory, error) {
	return s.labs.GetByID(ctx, id)
}

// Update applies in to the laboratory. The password is re-hashed only when
// a new one is supplied.
func (s *LaboratoryService) Update(ctx context.Context, id primitive.ObjectID, in LabUpdateInput) (*models.Laboratory, error) {
	in.Normalize()
	var extra []apperr.FieldError
	if in.Password != nil && (in.ConfirmPassword == nil || *in.ConfirmPassword != *in.Password) {
		extra = append(extra, apperr.FieldError{Field: "confirmPassword", Message: "must match password"})
	}
	if err := validation.Merge(validation.Struct(in), extra...); err != nil {
		return nil, err
	}

	lab, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		lab.Name = *in.Name
	}
	if in.Email != nil {
		lab.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, apperr.Unexpected("hash laboratory password", err)
		}
		lab.Password = hash
	}
	lab.UpdatedAt = s.now().UTC()

	if err := s.labs.Update(ctx, lab); err != nil {
		return nil, err
	}
	return lab, nil
}
