package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/middleware"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
	"github.com/harentsoaR/medlab-api/internal/utils"
	"github.com/harentsoaR/medlab-api/internal/validation"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services every route handler needs.
type Handler struct {
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Patients *services.PatientService
	Labs     *services.LaboratoryService
	DB       Pinger
}

func NewHandler(
	catalog *services.CatalogService,
	orders *services.OrderService,
	patients *services.PatientService,
	labs *services.LaboratoryService,
	db Pinger,
) *Handler {
	return &Handler{
		Catalog:  catalog,
		Orders:   orders,
		Patients: patients,
		Labs:     labs,
		DB:       db,
	}
}

// bind decodes and validates the JSON body, rendering a 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.Error(c, validation.Translate(err))
		return false
	}
	return true
}

// objectIDParam parses the named path parameter, rendering a 400 when it
// is not a valid ObjectID.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.Error(c, apperr.Validation("Invalid id",
			apperr.FieldError{Field: name, Message: "must be a valid id"}))
		return primitive.NilObjectID, false
	}
	return id, true
}

// principal returns the authenticated caller's id.
func principal(c *gin.Context) (*utils.Claims, primitive.ObjectID, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, apperr.Unauthorized("User not authenticated"))
		return nil, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		response.Error(c, apperr.Unauthorized("Invalid token subject"))
		return nil, primitive.NilObjectID, false
	}
	return claims, id, true
}
