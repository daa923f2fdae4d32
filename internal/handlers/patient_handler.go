package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
	"github.com/harentsoaR/medlab-api/internal/utils"
)

// GetCurrentPatient retrieves the profile of the authenticated patient.
func (h *Handler) GetCurrentPatient(c *gin.Context) {
	patientID, ok := currentPatient(c)
	if !ok {
		return
	}

	patient, err := h.Patients.Profile(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, patient)
}

// UpdateCurrentPatient changes only the fields present in the body.
func (h *Handler) UpdateCurrentPatient(c *gin.Context) {
	patientID, ok := currentPatient(c)
	if !ok {
		return
	}
	var req services.PatientUpdateInput
	if !bind(c, &req) {
		return
	}

	patient, err := h.Patients.UpdateProfile(c.Request.Context(), patientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, patient)
}

func currentPatient(c *gin.Context) (primitive.ObjectID, bool) {
	claims, id, ok := principal(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	if claims.Role == utils.RoleLab {
		response.Error(c, apperr.Forbidden("Invalid access level"))
		return primitive.NilObjectID, false
	}
	return id, true
}
